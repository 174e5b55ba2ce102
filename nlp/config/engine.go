package config

import (
	"log/slog"

	"github.com/oarkflow/oracle/nlp/lemmatizer"
	"github.com/oarkflow/oracle/nlp/normalizer"
	"github.com/oarkflow/oracle/nlp/oracle"
	"github.com/oarkflow/oracle/nlp/segmenter"
	"github.com/oarkflow/oracle/nlp/stopwords"
	"github.com/oarkflow/oracle/nlp/tokenizer"
)

// NewNormalizer loads the configured lemma and stopword lists.
func (c *Config) NewNormalizer() (*normalizer.Normalizer, error) {
	n := &normalizer.Normalizer{Stem: c.Text.Stem}
	if c.Text.Lemmas != "" {
		dict, err := lemmatizer.Load(c.Text.Lemmas)
		if err != nil {
			return nil, err
		}
		n.Lemmas = dict
	}
	switch {
	case c.Text.Stopwords != "":
		set, err := stopwords.Load(c.Text.Stopwords)
		if err != nil {
			return nil, err
		}
		n.Stopwords = set
	case c.Text.DropStopwords:
		n.Stopwords = stopwords.English()
	}
	return n, nil
}

func (c *Config) NewSegmenter() *segmenter.Segmenter {
	var s *segmenter.Segmenter
	if c.Text.Abbreviations {
		s = segmenter.New(segmenter.LegalAbbreviations)
	} else {
		s = segmenter.New(nil)
	}
	if c.Text.Clean {
		s.WithClean()
	}
	return s
}

// NewEngine assembles an engine from the scorer, oracle and text sections. documents are
// the raw texts a tfidf scorer is fitted on.
func (c *Config) NewEngine(logger *slog.Logger, documents ...string) (*oracle.Engine, error) {
	var fit [][]string
	if c.Scorer.Variant == "tfidf" {
		seg := c.NewSegmenter()
		for _, doc := range documents {
			for _, sentence := range seg.Segment(doc) {
				fit = append(fit, tokenizer.Words(sentence))
			}
		}
	}
	scorer, err := c.NewScorer(fit)
	if err != nil {
		return nil, err
	}
	norm, err := c.NewNormalizer()
	if err != nil {
		return nil, err
	}
	e, err := oracle.NewEngine(scorer, c.OracleOptions())
	if err != nil {
		return nil, err
	}
	return e.WithNormalizer(norm).WithSegmenter(c.NewSegmenter()).WithLogger(logger), nil
}

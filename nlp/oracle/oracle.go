// Package oracle builds extractive-summarization training targets: for a document and its
// reference summary it searches for the document sentences that best reconstruct the
// summary under a pluggable similarity metric.
package oracle

import (
	"log/slog"
	"strings"
)

// Document is an ordered, index-addressable list of sentences.
type Document []string

// Summary is the reference summary split into sentences.
type Summary []string

// Indices are document sentence positions chosen as oracle sentences.
type Indices []int

// Scorer measures how well hypothesis reconstructs reference. Implementations must be pure
// and deterministic; the engine's determinism relies on it.
type Scorer interface {
	Score(hypothesis, reference string) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(hypothesis, reference string) float64

func (f ScorerFunc) Score(hypothesis, reference string) float64 {
	return f(hypothesis, reference)
}

// Normalizer maps a sentence to its canonical (lemmatized, lowercased) form.
type Normalizer interface {
	Normalize(sentence string) string
}

// Segmenter splits raw text into sentences.
type Segmenter interface {
	Segment(text string) []string
}

// DocumentSegmenter is implemented by segmenters that treat source documents differently
// from summaries, for instance by dropping boilerplate.
type DocumentSegmenter interface {
	SegmentDocument(text string) []string
}

type identity struct{}

func (identity) Normalize(sentence string) string { return sentence }

func (identity) Segment(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []string{text}
}

// EligibilityPolicy selects which document sentences beam search may pick.
type EligibilityPolicy int

const (
	// SkipLeading excludes the first |Summary| document sentences. Documents in the
	// training corpus open with a header whose length tracks the summary length.
	SkipLeading EligibilityPolicy = iota
	// AllSentences makes every document sentence eligible.
	AllSentences
)

const (
	DefaultBeamWidth     = 15
	DefaultMaxRefineSize = 9
)

// Options tunes the search. Zero values select the defaults.
type Options struct {
	BeamWidth     int `json:"beam_width" yaml:"beam_width"`
	MaxRefineSize int `json:"max_refine_size" yaml:"max_refine_size"`
	// MaxEvaluations caps scorer calls per beam search; 0 disables the cap.
	MaxEvaluations int               `json:"max_evaluations" yaml:"max_evaluations"`
	Eligibility    EligibilityPolicy `json:"eligibility" yaml:"eligibility"`
}

func (o Options) withDefaults() Options {
	if o.BeamWidth == 0 {
		o.BeamWidth = DefaultBeamWidth
	}
	if o.MaxRefineSize == 0 {
		o.MaxRefineSize = DefaultMaxRefineSize
	}
	return o
}

// Engine carries everything an oracle computation needs. It is built once and shared;
// it holds no mutable state, so one Engine may serve many goroutines.
type Engine struct {
	scorer     Scorer
	normalizer Normalizer
	segmenter  Segmenter
	opts       Options
	logger     *slog.Logger
}

// NewEngine validates opts and returns an engine using scorer for every comparison.
func NewEngine(scorer Scorer, opts Options) (*Engine, error) {
	if scorer == nil {
		return nil, ErrNilScorer
	}
	opts = opts.withDefaults()
	if opts.BeamWidth < 0 {
		return nil, ErrInvalidCapacity
	}
	if opts.MaxRefineSize < 0 || opts.MaxEvaluations < 0 {
		return nil, ErrInvalidOptions
	}
	return &Engine{
		scorer:     scorer,
		normalizer: identity{},
		segmenter:  identity{},
		opts:       opts,
		logger:     slog.Default(),
	}, nil
}

// WithNormalizer sets the normalizer applied by Greedy.
func (e *Engine) WithNormalizer(n Normalizer) *Engine {
	if n != nil {
		e.normalizer = n
	}
	return e
}

// WithSegmenter sets the segmenter used by Segment.
func (e *Engine) WithSegmenter(s Segmenter) *Engine {
	if s != nil {
		e.segmenter = s
	}
	return e
}

// WithLogger sets the logger used for per-document diagnostics.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

func (e *Engine) Options() Options { return e.opts }

// Segment splits raw document and summary text with the engine's segmenter.
func (e *Engine) Segment(document, summary string) (Document, Summary) {
	sum := Summary(e.segmenter.Segment(summary))
	if ds, ok := e.segmenter.(DocumentSegmenter); ok {
		return Document(ds.SegmentDocument(document)), sum
	}
	return Document(e.segmenter.Segment(document)), sum
}

// TotalScore sums Score(summary[i], document[oracle[i]]) over the summary positions.
func (e *Engine) TotalScore(doc Document, sum Summary, oracle Indices) (float64, error) {
	if err := checkAssignment(doc, sum, oracle); err != nil {
		return 0, err
	}
	total := 0.0
	for i, j := range oracle {
		total += e.scorer.Score(sum[i], doc[j])
	}
	return total, nil
}

func checkInput(doc Document, sum Summary) error {
	if len(doc) == 0 {
		return wrap(ErrDegenerateInput, "document has no sentences")
	}
	if len(sum) == 0 {
		return wrap(ErrDegenerateInput, "summary has no sentences")
	}
	return nil
}

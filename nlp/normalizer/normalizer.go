package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/oarkflow/oracle/nlp/lemmatizer"
	"github.com/oarkflow/oracle/nlp/stemmer"
	"github.com/oarkflow/oracle/nlp/stopwords"
	"github.com/oarkflow/oracle/nlp/tokenizer"
)

func dropRunes(s string, drop func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if drop(r) {
			return -1
		}
		return r
	}, s)
}

func isMark(r rune) bool { return unicode.Is(unicode.Mn, r) }

// RemoveDiacritics decomposes s and strips combining marks.
func RemoveDiacritics(s string) string {
	return dropRunes(norm.NFD.String(s), isMark)
}

// NormalizeTokens lowercases tokens and strips diacritics and punctuation. Tokens left
// empty are dropped.
func NormalizeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = dropRunes(RemoveDiacritics(strings.ToLower(t)), unicode.IsPunct)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Normalizer turns a sentence into the space-joined canonical form of its tokens:
// tokenized, lowercased, diacritics and punctuation removed, stopwords dropped, then
// lemmatized and optionally stemmed. A zero Normalizer only does the first three steps.
type Normalizer struct {
	Lemmas    lemmatizer.Dict
	Stopwords stopwords.Set
	Stem      bool
}

func (n *Normalizer) Normalize(sentence string) string {
	toks := NormalizeTokens(tokenizer.TokenizeSubwords(RemoveDiacritics(sentence)))
	if len(n.Stopwords) > 0 {
		toks = n.Stopwords.Filter(toks)
	}
	for i, t := range toks {
		t = n.Lemmas.Lemma(t)
		if n.Stem {
			t = stemmer.PorterStem(t)
		}
		toks[i] = t
	}
	return strings.Join(toks, " ")
}

// Package tfidf scores sentence similarity as the cosine of TF-IDF vectors.
package tfidf

import (
	"math"

	"github.com/oarkflow/oracle/nlp/tokenizer"
)

// Model holds inverse document frequencies fitted on a set of token lists. Terms never
// seen during fitting get the largest IDF; an unfitted Model weighs every term equally.
type Model struct {
	DF     map[string]int
	IDF    map[string]float64
	unseen float64
}

// Fit computes document frequencies over docs, typically one entry per sentence.
func Fit(docs [][]string) *Model {
	m := &Model{DF: make(map[string]int), IDF: make(map[string]float64), unseen: 1}
	if len(docs) == 0 {
		return m
	}
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, w := range doc {
			if !seen[w] {
				m.DF[w]++
				seen[w] = true
			}
		}
	}
	N := float64(len(docs))
	for w, df := range m.DF {
		m.IDF[w] = math.Log(N/float64(df)) + 1.0
	}
	m.unseen = math.Log(N) + 1.0
	return m
}

// Vector returns the TF-IDF weights of tokens.
func (m *Model) Vector(tokens []string) map[string]float64 {
	tf := make(map[string]int)
	for _, w := range tokens {
		tf[w]++
	}
	v := make(map[string]float64, len(tf))
	for w, cnt := range tf {
		idf, ok := m.IDF[w]
		if !ok {
			idf = m.unseen
		}
		v[w] = float64(cnt) / float64(len(tokens)) * idf
	}
	return v
}

func Cosine(a, b map[string]float64) float64 {
	num, denA, denB := 0.0, 0.0, 0.0
	for w, x := range a {
		num += x * b[w]
		denA += x * x
	}
	for _, y := range b {
		denB += y * y
	}
	if denA == 0 || denB == 0 {
		return 0
	}
	return num / (math.Sqrt(denA) * math.Sqrt(denB))
}

// Score is the cosine similarity of the lowercased word vectors of hypothesis and
// reference. It satisfies oracle.Scorer.
func (m *Model) Score(hypothesis, reference string) float64 {
	return Cosine(m.Vector(tokenizer.Words(hypothesis)), m.Vector(tokenizer.Words(reference)))
}

func (m *Model) String() string { return "tfidf" }

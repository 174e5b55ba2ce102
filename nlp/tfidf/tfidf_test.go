package tfidf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFit(t *testing.T) {
	m := Fit([][]string{{"the", "cat"}, {"the", "dog"}})
	assert.Equal(t, 2, m.DF["the"])
	assert.InDelta(t, 1.0, m.IDF["the"], 1e-9)
	assert.Greater(t, m.IDF["cat"], m.IDF["the"])
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine(map[string]float64{"a": 2}, map[string]float64{"a": 5}), 1e-9)
	assert.Zero(t, Cosine(map[string]float64{"a": 1}, map[string]float64{"b": 1}))
	assert.Zero(t, Cosine(nil, map[string]float64{"b": 1}))
}

func TestScore(t *testing.T) {
	m := Fit([][]string{{"the", "cat", "sat"}, {"the", "dog", "ran"}, {"the", "end"}})
	assert.InDelta(t, 1.0, m.Score("The cat sat", "the cat sat"), 1e-9)
	assert.Zero(t, m.Score("", "the cat"))

	// Sharing a rare word counts for more than sharing a common one.
	rare := m.Score("cat", "the cat")
	common := m.Score("the", "the cat")
	assert.Greater(t, rare, common)
}

func TestUnfittedModel(t *testing.T) {
	m := Fit(nil)
	assert.InDelta(t, 0.5, m.Score("a b", "a c"), 1e-9)
}

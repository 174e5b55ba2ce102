package ngram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractNgrams(t *testing.T) {
	toks := []string{"a", "b", "a", "b"}
	assert.Equal(t, map[string]int{"a b": 2, "b a": 1}, ExtractNgrams(toks, 2))
	assert.Empty(t, ExtractNgrams(toks, 5))
	assert.Empty(t, ExtractNgrams(toks, 0))
}

func TestOverlapAndTotal(t *testing.T) {
	a := map[string]int{"x": 3, "y": 1}
	b := map[string]int{"x": 1, "z": 2}
	assert.Equal(t, 1, Overlap(a, b))
	assert.Equal(t, 1, Overlap(b, a))
	assert.Equal(t, 4, Total(a))
	assert.Zero(t, Total(nil))
}

package oracle

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lower struct{}

func (lower) Normalize(s string) string { return strings.ToLower(s) }

func TestGreedyExactMatch(t *testing.T) {
	e := newEngine(t, exact, Options{})
	doc := Document{"the cat sat", "a dog ran", "birds fly high"}

	got, err := e.Greedy(doc, Summary{"the cat sat"})
	require.NoError(t, err)
	assert.Equal(t, Indices{0}, got)

	got, err = e.Greedy(doc, Summary{"birds fly high", "the cat sat", "birds fly high"})
	require.NoError(t, err)
	assert.Equal(t, Indices{2, 0, 2}, got, "indices may repeat")
}

func TestGreedyFirstIndexWinsTies(t *testing.T) {
	e := newEngine(t, ScorerFunc(func(string, string) float64 { return 0.5 }), Options{})
	got, err := e.Greedy(Document{"x", "y", "z"}, Summary{"p", "q"})
	require.NoError(t, err)
	assert.Equal(t, Indices{0, 0}, got)
}

func TestGreedyAppliesNormalizer(t *testing.T) {
	e := newEngine(t, exact, Options{})
	doc := Document{"A Dog Ran", "The Cat Sat"}
	sum := Summary{"the cat sat"}

	got, err := e.Greedy(doc, sum)
	require.NoError(t, err)
	assert.Equal(t, Indices{0}, got, "without normalization nothing matches")

	got, err = e.WithNormalizer(lower{}).Greedy(doc, sum)
	require.NoError(t, err)
	assert.Equal(t, Indices{1}, got)
}

func TestGreedyDegenerateInput(t *testing.T) {
	e := newEngine(t, exact, Options{})
	_, err := e.Greedy(nil, Summary{"a"})
	assert.ErrorIs(t, err, ErrDegenerateInput)
	_, err = e.Greedy(Document{"a"}, nil)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestGreedyLengthAndDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	e := rougeEngine(t, Options{})
	for trial := 0; trial < 25; trial++ {
		doc := make(Document, 1+rng.Intn(12))
		for i := range doc {
			doc[i] = randomSentence(rng)
		}
		sum := make(Summary, 1+rng.Intn(5))
		for i := range sum {
			sum[i] = randomSentence(rng)
		}
		first, err := e.Greedy(doc, sum)
		require.NoError(t, err)
		require.Len(t, first, len(sum))
		for _, j := range first {
			require.True(t, j >= 0 && j < len(doc))
		}
		second, err := e.Greedy(doc, sum)
		require.NoError(t, err)
		require.Equal(t, first, second)
	}
}

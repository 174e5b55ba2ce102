package oracle

import (
	"testing"

	"github.com/oarkflow/oracle/nlp/rouge"
	"github.com/stretchr/testify/require"
)

// exact scores 1 for identical text and 0 otherwise.
var exact = ScorerFunc(func(h, r string) float64 {
	if h == r {
		return 1
	}
	return 0
})

// counting wraps a scorer and counts calls.
type counting struct {
	Scorer
	calls int
}

func (c *counting) Score(h, r string) float64 {
	c.calls++
	return c.Scorer.Score(h, r)
}

func newEngine(t *testing.T, s Scorer, opts Options) *Engine {
	t.Helper()
	e, err := NewEngine(s, opts)
	require.NoError(t, err)
	return e
}

func rougeEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	return newEngine(t, rouge.Default(), opts)
}

var vocabulary = []string{
	"court", "appeal", "the", "defendant", "trial", "judge", "evidence", "jury",
	"affirm", "sentence", "motion", "state", "witness", "record", "claim", "error",
}

func randomSentence(rng interface{ Intn(int) int }) string {
	n := 3 + rng.Intn(6)
	words := make([]byte, 0, n*8)
	for i := 0; i < n; i++ {
		if i > 0 {
			words = append(words, ' ')
		}
		words = append(words, vocabulary[rng.Intn(len(vocabulary))]...)
	}
	return string(words)
}

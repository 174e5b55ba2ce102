// Package dataset turns oracles into classification labels and train/validation/test
// splits.
package dataset

import (
	"errors"
	"math"
	"math/rand"

	"github.com/oarkflow/oracle/nlp/oracle"
)

const (
	DefaultTestFraction = 0.2
	// DefaultValFraction is taken from what remains after the test split.
	DefaultValFraction = 0.25
)

var ErrFraction = errors.New("dataset: fraction must be in [0, 1)")

// Labels returns oracle[field] for every oracle that has it, with the positions of those
// oracles.
func Labels(oracles []oracle.Indices, field int) (labels, available []int) {
	for i, o := range oracles {
		if field < 0 || field >= len(o) {
			continue
		}
		labels = append(labels, o[field])
		available = append(available, i)
	}
	return labels, available
}

// Split holds positions into the slice given to NewSplit.
type Split struct {
	Train []int `json:"train"`
	Val   []int `json:"val"`
	Test  []int `json:"test"`
}

// NewSplit shuffles ids and cuts a test share, then a validation share of the rest. Shares
// are rounded up. A nil rng uses a fixed seed.
func NewSplit(ids []int, test, val float64, rng *rand.Rand) (Split, error) {
	if test < 0 || test >= 1 || val < 0 || val >= 1 {
		return Split{}, ErrFraction
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(42))
	}
	shuffled := append([]int(nil), ids...)
	rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

	nTest := int(math.Ceil(test * float64(len(shuffled))))
	rest := shuffled[nTest:]
	nVal := int(math.Ceil(val * float64(len(rest))))
	return Split{
		Test:  shuffled[:nTest],
		Val:   rest[:nVal],
		Train: rest[nVal:],
	}, nil
}

// BucketizeLength encodes a sentence length as seven bits: an overflow flag for lengths
// of 64 and above followed by the six low-order bits, most significant first.
func BucketizeLength(n int) [7]int {
	var out [7]int
	if n < 0 {
		n = 0
	}
	if n >= 64 {
		out[0] = 1
	}
	for i := 0; i < 6; i++ {
		out[6-i] = (n >> i) & 1
	}
	return out
}

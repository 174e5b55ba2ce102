package oracle

import (
	"errors"
	"fmt"
	"math/rand"
)

// Sampler pairs an oracle sentence with random non-oracle sentences to form contrastive
// training examples.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a sampler drawing from rng. A nil rng uses a fixed seed.
func NewSampler(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(42))
	}
	return &Sampler{rng: rng}
}

// Sample returns [oracle[field], n_1, ..., n_{num-1}] where the n_k are distinct document
// indices different from the oracle index.
func (s *Sampler) Sample(oracle Indices, field, sentences, num int) ([]int, error) {
	if field < 0 || field >= len(oracle) {
		return nil, wrap(ErrMissingOracleField, "field %d of oracle with %d indices", field, len(oracle))
	}
	target := oracle[field]
	if target < 0 || target >= sentences {
		return nil, wrap(ErrMissingOracleField, "oracle index %d outside document of %d sentences", target, sentences)
	}
	if num < 1 || num-1 > sentences-1 {
		return nil, wrap(ErrSamplePoolExhausted, "%d indices requested from %d sentences", num, sentences)
	}
	pool := make([]int, 0, sentences-1)
	for j := 0; j < sentences; j++ {
		if j != target {
			pool = append(pool, j)
		}
	}
	s.rng.Shuffle(len(pool), func(a, b int) { pool[a], pool[b] = pool[b], pool[a] })
	return append([]int{target}, pool[:num-1]...), nil
}

// SampleAll samples every document. counts[i] is the sentence count of document i.
// Documents whose oracle lacks the field are left out silently. Documents that fail for
// any other reason are left out too; their errors are joined into the returned error while
// the rest of the batch is still sampled. available lists the documents present in out.
func (s *Sampler) SampleAll(counts []int, oracles []Indices, field, num int) ([][]int, []int, error) {
	var (
		out       [][]int
		available []int
		errs      []error
	)
	n := min(len(counts), len(oracles))
	for i := 0; i < n; i++ {
		indices, err := s.Sample(oracles[i], field, counts[i], num)
		if err != nil {
			if !errors.Is(err, ErrMissingOracleField) {
				errs = append(errs, fmt.Errorf("document %d: %w", i, err))
			}
			continue
		}
		out = append(out, indices)
		available = append(available, i)
	}
	return out, available, errors.Join(errs...)
}

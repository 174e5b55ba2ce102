package dataset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/oracle/nlp/oracle"
)

func TestLabels(t *testing.T) {
	oracles := []oracle.Indices{{4, 1}, {2}, nil, {7, 3}}
	labels, available := Labels(oracles, 1)
	assert.Equal(t, []int{1, 3}, labels)
	assert.Equal(t, []int{0, 3}, available)

	labels, available = Labels(oracles, 0)
	assert.Equal(t, []int{4, 2, 7}, labels)
	assert.Equal(t, []int{0, 1, 3}, available)
}

func TestNewSplit(t *testing.T) {
	ids := make([]int, 100)
	for i := range ids {
		ids[i] = i
	}
	s, err := NewSplit(ids, DefaultTestFraction, DefaultValFraction, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, s.Test, 20)
	assert.Len(t, s.Val, 20)
	assert.Len(t, s.Train, 60)

	all := append(append(append([]int{}, s.Train...), s.Val...), s.Test...)
	assert.ElementsMatch(t, ids, all)
	assert.Equal(t, 0, ids[0], "input is not reordered")
}

func TestNewSplitRoundsUp(t *testing.T) {
	s, err := NewSplit([]int{0, 1, 2, 3, 4, 5, 6}, 0.2, 0.25, nil)
	require.NoError(t, err)
	assert.Len(t, s.Test, 2)
	assert.Len(t, s.Val, 2)
	assert.Len(t, s.Train, 3)
}

func TestNewSplitDeterministic(t *testing.T) {
	ids := []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	a, err := NewSplit(ids, 0.2, 0.25, nil)
	require.NoError(t, err)
	b, err := NewSplit(ids, 0.2, 0.25, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewSplitRejectsFraction(t *testing.T) {
	_, err := NewSplit([]int{1}, 1, 0.25, nil)
	assert.ErrorIs(t, err, ErrFraction)
	_, err = NewSplit([]int{1}, 0.2, -0.1, nil)
	assert.ErrorIs(t, err, ErrFraction)
}

func TestBucketizeLength(t *testing.T) {
	assert.Equal(t, [7]int{0, 0, 0, 0, 1, 0, 1}, BucketizeLength(5))
	assert.Equal(t, [7]int{0, 1, 1, 1, 1, 1, 1}, BucketizeLength(63))
	assert.Equal(t, [7]int{1, 0, 0, 0, 0, 0, 0}, BucketizeLength(64))
	assert.Equal(t, [7]int{1, 1, 0, 0, 1, 0, 0}, BucketizeLength(100))
	assert.Equal(t, [7]int{}, BucketizeLength(0))
}

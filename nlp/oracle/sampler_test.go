package oracle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleThreeIndices(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(5)))
	for trial := 0; trial < 50; trial++ {
		got, err := s.Sample(Indices{3, 1}, 0, 4+trial%5, 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 3, got[0])
		assert.NotEqual(t, got[1], got[2])
		assert.NotContains(t, got[1:], 3)
		for _, j := range got {
			assert.True(t, j >= 0 && j < 4+trial%5)
		}
	}
}

func TestSampleUsesField(t *testing.T) {
	s := NewSampler(nil)
	got, err := s.Sample(Indices{3, 1}, 1, 6, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
}

func TestSampleWholePool(t *testing.T) {
	s := NewSampler(nil)
	got, err := s.Sample(Indices{2}, 0, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, got[0])
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, got)
}

func TestSampleErrors(t *testing.T) {
	s := NewSampler(nil)

	_, err := s.Sample(nil, 0, 5, 2)
	assert.ErrorIs(t, err, ErrMissingOracleField)
	_, err = s.Sample(Indices{1}, 1, 5, 2)
	assert.ErrorIs(t, err, ErrMissingOracleField)
	_, err = s.Sample(Indices{9}, 0, 5, 2)
	assert.ErrorIs(t, err, ErrMissingOracleField)

	_, err = s.Sample(Indices{0}, 0, 3, 4)
	assert.ErrorIs(t, err, ErrSamplePoolExhausted)
	_, err = s.Sample(Indices{0}, 0, 3, 0)
	assert.ErrorIs(t, err, ErrSamplePoolExhausted)
}

func TestSampleDeterministicForSeed(t *testing.T) {
	a, err := NewSampler(rand.New(rand.NewSource(42))).Sample(Indices{0}, 0, 30, 5)
	require.NoError(t, err)
	b, err := NewSampler(rand.New(rand.NewSource(42))).Sample(Indices{0}, 0, 30, 5)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSampleAll(t *testing.T) {
	s := NewSampler(nil)
	counts := []int{5, 6, 4, 7}
	oracles := []Indices{{1}, nil, {0, 2}, {6}}

	out, available, err := s.SampleAll(counts, oracles, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, available)
	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0][0])
	assert.Equal(t, 0, out[1][0])
	assert.Equal(t, 6, out[2][0])

	_, available, err = s.SampleAll(counts, oracles, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, available)
}

func TestSampleAllContinuesPastExhaustedPool(t *testing.T) {
	s := NewSampler(nil)
	out, available, err := s.SampleAll([]int{10, 2, 10}, []Indices{{5}, {1}, {6}}, 0, 4)
	assert.ErrorIs(t, err, ErrSamplePoolExhausted)
	assert.ErrorContains(t, err, "document 1")
	assert.Equal(t, []int{0, 2}, available)
	require.Len(t, out, 2)
	assert.Equal(t, 5, out[0][0])
	assert.Equal(t, 6, out[1][0])
	assert.Len(t, out[1], 4)
}

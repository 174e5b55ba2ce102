package oracle

import (
	"container/heap"
	"slices"
	"sort"
)

// Fragment is a partial extractive summary: the concatenated sentence text and the
// document indices it was built from, in selection order. Fragments are never mutated;
// Extend returns a new one.
type Fragment struct {
	text    string
	indices []int
}

func (f Fragment) Text() string { return f.text }

// Indices returns a copy of the selected indices.
func (f Fragment) Indices() Indices { return slices.Clone(f.indices) }

func (f Fragment) Len() int { return len(f.indices) }

func (f Fragment) Contains(j int) bool { return slices.Contains(f.indices, j) }

// Extend appends sentence (document index j) and returns the new fragment.
func (f Fragment) Extend(sentence string, j int) Fragment {
	indices := make([]int, len(f.indices), len(f.indices)+1)
	copy(indices, f.indices)
	return Fragment{
		text:    f.text + " " + sentence,
		indices: append(indices, j),
	}
}

// Entry is a scored fragment held by a Beam.
type Entry struct {
	Fragment Fragment
	Score    float64
	seq      uint64
}

// Beam keeps the best capacity entries by score. When scores tie, the entry inserted
// first is retained and the later one is evicted.
type Beam struct {
	capacity int
	next     uint64
	h        entryHeap
}

func NewBeam(capacity int) (*Beam, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Beam{capacity: capacity, h: make(entryHeap, 0, capacity+1)}, nil
}

// Add inserts the entry and evicts the lowest-scored entries beyond capacity.
func (b *Beam) Add(fragment Fragment, score float64) {
	heap.Push(&b.h, Entry{Fragment: fragment, Score: score, seq: b.next})
	b.next++
	for b.h.Len() > b.capacity {
		heap.Pop(&b.h)
	}
}

func (b *Beam) Len() int { return b.h.Len() }

func (b *Beam) Cap() int { return b.capacity }

// Entries returns the retained entries, best first, ties in insertion order.
func (b *Beam) Entries() []Entry {
	out := slices.Clone([]Entry(b.h))
	sort.Slice(out, func(i, j int) bool { return out[j].less(out[i]) })
	return out
}

// Best returns the highest-scored entry; the earliest inserted wins ties.
func (b *Beam) Best() (Entry, bool) {
	if b.h.Len() == 0 {
		return Entry{}, false
	}
	best := b.h[0]
	for _, e := range b.h[1:] {
		if best.less(e) {
			best = e
		}
	}
	return best, true
}

// less orders entries by eviction priority: a.less(b) means a is evicted before b.
func (a Entry) less(b Entry) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.seq > b.seq
}

// entryHeap is a min-heap whose root is the next entry to evict.
type entryHeap []Entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].less(h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)        { *h = append(*h, x.(Entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

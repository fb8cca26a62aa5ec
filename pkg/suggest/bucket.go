package suggest

import "sort"

// MaxResults is the default capacity of a result bucket.
const MaxResults = 10

// Candidate is a scored word waiting to be delivered.
type Candidate struct {
	Word  string
	Score int
}

// Bucket keeps the best scoring candidates seen so far, highest score first.
// Candidates with equal scores stay in the order they were added.
type Bucket struct {
	items    []Candidate
	capacity int
}

// NewBucket creates a bucket holding at most capacity candidates.
func NewBucket(capacity int) *Bucket {
	if capacity < 1 {
		capacity = MaxResults
	}
	return &Bucket{
		items:    make([]Candidate, 0, capacity),
		capacity: capacity,
	}
}

// Add inserts c at its rank. A full bucket only takes c if it beats the
// current last entry, which is then dropped. Add reports whether c was kept.
func (b *Bucket) Add(c Candidate) bool {
	i := sort.Search(len(b.items), func(i int) bool {
		return b.items[i].Score < c.Score
	})

	full := len(b.items) >= b.capacity
	if full && i == len(b.items) {
		return false
	}

	if !full {
		b.items = append(b.items, Candidate{})
	}
	copy(b.items[i+1:], b.items[i:])
	b.items[i] = c
	return true
}

// Len returns the number of candidates held.
func (b *Bucket) Len() int {
	return len(b.items)
}

// Cap returns the bucket capacity.
func (b *Bucket) Cap() int {
	return b.capacity
}

// Items returns a copy of the candidates, best first.
func (b *Bucket) Items() []Candidate {
	out := make([]Candidate, len(b.items))
	copy(out, b.items)
	return out
}

// Reset empties the bucket, keeping its storage.
func (b *Bucket) Reset() {
	b.items = b.items[:0]
}

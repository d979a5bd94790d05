package bitmap

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Ordinals is a set of 32-bit record ordinals.
//
// It is not safe for concurrent mutation. Once built it may be shared by
// concurrent readers.
type Ordinals struct {
	rb *roaring.Bitmap
}

// New creates an empty set.
func New() *Ordinals {
	return &Ordinals{rb: roaring.New()}
}

// Add adds an ordinal to the set.
func (o *Ordinals) Add(ord uint32) {
	o.rb.Add(ord)
}

// Remove removes an ordinal from the set.
func (o *Ordinals) Remove(ord uint32) {
	o.rb.Remove(ord)
}

// Contains reports whether ord is in the set.
func (o *Ordinals) Contains(ord uint32) bool {
	return o.rb.Contains(ord)
}

// Len returns the number of ordinals in the set.
func (o *Ordinals) Len() int {
	return int(o.rb.GetCardinality())
}

// Rank returns the number of ordinals in the set that are <= ord.
func (o *Ordinals) Rank(ord uint32) int {
	return int(o.rb.Rank(ord))
}

// CountRange returns the number of ordinals in the half-open range [lo, hi).
func (o *Ordinals) CountRange(lo, hi uint32) int {
	if hi <= lo {
		return 0
	}
	n := o.Rank(hi - 1)
	if lo > 0 {
		n -= o.Rank(lo - 1)
	}
	return n
}

// All yields the ordinals in ascending order.
func (o *Ordinals) All() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := o.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Optimize compacts the set after building. Call it once all ordinals have
// been added.
func (o *Ordinals) Optimize() {
	o.rb.RunOptimize()
}

// SizeInBytes returns the serialized size of the set.
func (o *Ordinals) SizeInBytes() uint64 {
	return o.rb.GetSizeInBytes()
}

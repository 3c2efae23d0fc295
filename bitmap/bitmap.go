package bitmap

import (
	"io"
	"iter"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap is a compressed, sorted set of unsigned 32-bit row identifiers.
// It wraps the official roaring implementation.
//
// A Bitmap is owned by a single evaluation and is not safe for concurrent
// mutation; share only via Clone or serialized form.
type Bitmap struct {
	rb *roaring.Bitmap
}

// pool reuses Bitmap instances across evaluations.
// This reduces allocations in filtered scan hot paths.
var pool = sync.Pool{
	New: func() any {
		return &Bitmap{
			rb: roaring.New(),
		}
	},
}

// New creates a new empty bitmap.
func New() *Bitmap {
	return &Bitmap{
		rb: roaring.New(),
	}
}

// Of creates a bitmap holding the given row ids.
func Of(ids ...uint32) *Bitmap {
	return &Bitmap{
		rb: roaring.BitmapOf(ids...),
	}
}

// Get gets a bitmap from the pool. Call Put when done.
func Get() *Bitmap {
	b := pool.Get().(*Bitmap)
	b.rb.Clear()
	return b
}

// Put returns a bitmap to the pool.
func Put(b *Bitmap) {
	if b == nil {
		return
	}
	// Clear before returning to pool to release container memory
	b.rb.Clear()
	pool.Put(b)
}

// Add adds a row id to the bitmap.
func (b *Bitmap) Add(id uint32) {
	b.rb.Add(id)
}

// AddMany adds multiple row ids to the bitmap.
func (b *Bitmap) AddMany(ids []uint32) {
	b.rb.AddMany(ids)
}

// AddRange adds all ids in [start, end) to the bitmap.
func (b *Bitmap) AddRange(start, end uint32) {
	b.rb.AddRange(uint64(start), uint64(end))
}

// Remove removes a row id from the bitmap.
func (b *Bitmap) Remove(id uint32) {
	b.rb.Remove(id)
}

// Contains checks if a row id is in the bitmap.
func (b *Bitmap) Contains(id uint32) bool {
	return b.rb.Contains(id)
}

// IsEmpty returns true if the bitmap is empty.
func (b *Bitmap) IsEmpty() bool {
	return b.rb.IsEmpty()
}

// Cardinality returns the number of row ids in the bitmap.
func (b *Bitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// And narrows b to the intersection with other, in place.
func (b *Bitmap) And(other *Bitmap) {
	b.rb.And(other.rb)
}

// AndNot removes all ids present in other from b, in place.
func (b *Bitmap) AndNot(other *Bitmap) {
	b.rb.AndNot(other.rb)
}

// Or adds all ids present in other to b, in place.
func (b *Bitmap) Or(other *Bitmap) {
	b.rb.Or(other.rb)
}

// Clear removes all ids from the bitmap.
func (b *Bitmap) Clear() {
	b.rb.Clear()
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{
		rb: b.rb.Clone(),
	}
}

// Equals reports whether both bitmaps hold the same row ids.
func (b *Bitmap) Equals(other *Bitmap) bool {
	return b.rb.Equals(other.rb)
}

// ForEach iterates over the bitmap in ascending order.
func (b *Bitmap) ForEach(fn func(id uint32) bool) {
	it := b.rb.Iterator()
	for it.HasNext() {
		if !fn(it.Next()) {
			break
		}
	}
}

// Iterator returns an iterator over the bitmap in ascending order.
func (b *Bitmap) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// ToSlice returns all row ids as a sorted slice.
func (b *Bitmap) ToSlice() []uint32 {
	return b.rb.ToArray()
}

// SizeInBytes returns the serialized size of the bitmap.
func (b *Bitmap) SizeInBytes() uint64 {
	return b.rb.GetSizeInBytes()
}

// WriteTo writes the bitmap to w in the portable roaring format.
func (b *Bitmap) WriteTo(w io.Writer) (int64, error) {
	return b.rb.WriteTo(w)
}

// ReadFrom reads a portable roaring serialization from r.
func (b *Bitmap) ReadFrom(r io.Reader) (int64, error) {
	return b.rb.ReadFrom(r)
}

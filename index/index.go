// Package index provides a bitmap index from int64 keys to row positions.
package index

import "github.com/RoaringBitmap/roaring"

// Keyed maps each key to the roaring bitmap of row positions where it
// occurs. An index is built once per batch and then only read; the pipeline
// is single threaded, so no locking is done.
type Keyed struct {
	bitmaps map[int64]*roaring.Bitmap
}

// NewKeyed constructs an empty index.
func NewKeyed() *Keyed {
	return &Keyed{bitmaps: make(map[int64]*roaring.Bitmap)}
}

// Add records that key occurs at row position pos.
func (k *Keyed) Add(key int64, pos uint32) {
	bm, ok := k.bitmaps[key]
	if !ok {
		bm = roaring.New()
		k.bitmaps[key] = bm
	}
	bm.Add(pos)
}

// Lookup returns the positions for key in ascending order, or nil when the
// key was never added.
func (k *Keyed) Lookup(key int64) []uint32 {
	bm := k.bitmaps[key]
	if bm == nil {
		return nil
	}
	return bm.ToArray()
}

// Last returns the greatest position recorded for key.
func (k *Keyed) Last(key int64) (uint32, bool) {
	bm := k.bitmaps[key]
	if bm == nil || bm.IsEmpty() {
		return 0, false
	}
	return bm.Maximum(), true
}

// Cardinality returns the number of distinct keys.
func (k *Keyed) Cardinality() int {
	return len(k.bitmaps)
}

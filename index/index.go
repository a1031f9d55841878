// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package index provides an in-memory packed Hilbert R-tree over the
// bounding boxes of decoded shapefile records.
//
// The index stores only the record number, the record header offset
// and the bounds, so a large file can be indexed in one pass and
// matching records decoded later with shapefile.DecodeRecordAt.
package index

import (
	"context"
	"sort"

	"github.com/gogama/shapefile"
	"github.com/gogama/shapefile/packedrtree"
)

// nodeSize is the child count of each packed R-tree node.
const nodeSize = 16

// Entry is one indexed record.
type Entry struct {
	RecordNumber int32
	// Offset is the byte offset of the record header.
	Offset int
	Box    shapefile.Box
}

// Index is a spatial index over record bounds, backed by a packed
// Hilbert R-tree. An index returned by New or Build may be searched
// concurrently; Insert makes the next Search rebuild the tree, so an
// index that is still receiving records is not safe for concurrent
// use.
type Index struct {
	// entries is sorted by Offset whenever tree is not nil.
	entries []Entry
	bounds  shapefile.Box
	tree    *packedrtree.PackedRTree
}

// New builds an index over records. Records without a geometry, or
// with empty or non-finite bounds, are not indexed.
func New(records []shapefile.DecodedRecord) *Index {
	idx := &Index{bounds: shapefile.EmptyBox}
	for i := range records {
		idx.Insert(records[i])
	}
	idx.pack()
	return idx
}

// Build drains s and indexes every record it yields, without keeping
// the records. It returns the stream's error, if any, together with
// the index of the records read before it.
func Build(ctx context.Context, s *shapefile.Stream) (*Index, error) {
	idx := &Index{bounds: shapefile.EmptyBox}
	for s.Next(ctx) {
		idx.Insert(s.Record())
	}
	idx.pack()
	return idx, s.Err()
}

// Insert indexes r and reports whether it was indexable.
func (idx *Index) Insert(r shapefile.DecodedRecord) bool {
	if r.Geometry == nil {
		return false
	}
	b := r.Geometry.Bounds()
	if b.IsEmpty() || !b.Finite() {
		return false
	}
	idx.entries = append(idx.entries, Entry{RecordNumber: r.RecordNumber, Offset: r.Offset, Box: b})
	idx.bounds.Expand(b)
	idx.tree = nil
	return true
}

// pack puts the entries in file order and builds the tree over them.
// Each Ref carries the position of its entry, so search results sort
// straight back into file order.
func (idx *Index) pack() {
	if idx.tree != nil || len(idx.entries) == 0 {
		return
	}
	sort.SliceStable(idx.entries, func(i, j int) bool {
		return idx.entries[i].Offset < idx.entries[j].Offset
	})
	refs := make([]packedrtree.Ref, len(idx.entries))
	for i := range idx.entries {
		refs[i] = packedrtree.Ref{Box: idx.entries[i].Box, Offset: int64(i)}
	}
	packedrtree.HilbertSort(refs, idx.bounds)
	tree, err := packedrtree.New(refs, nodeSize)
	if err != nil {
		panic(err) // Only node count overflow, impossible for an in-memory slice.
	}
	idx.tree = tree
}

// Search returns the entries whose bounds intersect b, boundaries
// included, in file order.
func (idx *Index) Search(b shapefile.Box) []Entry {
	if b.IsEmpty() || len(idx.entries) == 0 {
		return nil
	}
	idx.pack()
	rs := idx.tree.Search(b)
	if len(rs) == 0 {
		return nil
	}
	sort.Sort(rs)
	result := make([]Entry, len(rs))
	for i := range rs {
		result[i] = idx.entries[rs[i].Offset]
	}
	return result
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Bounds returns the union of all indexed boxes, or shapefile.EmptyBox
// if the index is empty.
func (idx *Index) Bounds() shapefile.Box {
	return idx.bounds
}

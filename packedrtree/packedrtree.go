// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"fmt"
	"math"

	"github.com/gogama/shapefile"
)

// A Ref is a single item within the PackedRTree: the bounding box of
// some indexed item plus an Offset that locates the item, for example
// a record's byte offset in a file or its position in a list.
type Ref struct {
	shapefile.Box

	// Offset locates the referenced item. It is returned unchanged in
	// search results.
	Offset int64
}

// String returns a summary of the Ref.
func (r Ref) String() string {
	return fmt.Sprintf("Ref{%s,Offset:%d}", r.Box, r.Offset)
}

// A node is a private version of Ref. A leaf node is exactly the same
// as a Ref. For a non-leaf node the Box is the extent of the whole
// subtree and the Offset is the node index of its first child.
type node struct {
	Ref
}

func validateParams(numRefs int, nodeSize uint16) {
	if numRefs < 1 {
		textPanic("empty tree not allowed (num refs must be > 0)")
	} else if nodeSize < 2 {
		textPanic("node size must be at least 2")
	}
}

// totalNodes sums numRefs and numInternal, returning an error if
// integer overflow occurs.
func totalNodes(numRefs, numInternal int) (n int, err error) {
	if numInternal > math.MaxInt-numRefs {
		err = textErr("total node count overflows int")
	} else {
		n = numRefs + numInternal
	}
	return
}

// A levelRange is the closed/open node index range [start, end) of
// one tree level.
type levelRange struct {
	start, end int
}

// levelify creates the list of levelRange structures which results
// from a leaf node count (numRefs) and child node count (nodeSize).
// The leaf level comes first and the root level last.
//
// For example, with numRefs = 4 and nodeSize = 2 the output is
// [[3, 7], [1, 3], [0, 1]].
func levelify(numRefs, nodeSize int) ([]levelRange, error) {
	var numInternal int

	// Node counts per level, leaf level first. With numRefs = 4,
	// nodeSize = 2 this is [4, 2, 1].
	nodesThisLevel := numRefs
	nodesPerLevel := make([]int, 1, 16)
	nodesPerLevel[0] = nodesThisLevel
	for {
		nodesThisLevel = (nodesThisLevel + nodeSize - 1) / nodeSize
		nodesPerLevel = append(nodesPerLevel, nodesThisLevel)
		numInternal += nodesThisLevel
		if nodesThisLevel == 1 {
			break
		}
	}

	numNodes, err := totalNodes(numRefs, numInternal)
	if err != nil {
		return nil, err
	}

	// The root is stored first, so each level starts where the levels
	// above it end.
	levels := make([]levelRange, len(nodesPerLevel))
	nodesRemaining := numNodes
	for i := range nodesPerLevel {
		nodesRemaining -= nodesPerLevel[i]
		levels[i].start = nodesRemaining
		levels[i].end = nodesRemaining + nodesPerLevel[i]
	}
	return levels, nil
}

// A ticket is a pending work item of the search loop.
type ticket struct {
	// nodeIndex is the index of the first node to search.
	nodeIndex int
	// level is the level nodeIndex belongs to. Level 0 holds the
	// leaves.
	level int
}

// A ticketBag is the stack of pending work items of the search loop.
type ticketBag []ticket

func (tq *ticketBag) push(t ticket) {
	*tq = append(*tq, t)
}

func (tq *ticketBag) pop() ticket {
	old := *tq
	n := len(old)
	x := old[n-1]
	*tq = old[0 : n-1]
	return x
}

// Result is a single search result.
type Result struct {
	// Offset is the Offset of the matching Ref.
	Offset int64
	// RefIndex is the position of the matching Ref in the
	// Hilbert-sorted list passed to New.
	RefIndex int
}

// Results is a slice of Result structures which implements
// sort.Interface. The sort.Sort function will sort Results in
// ascending order of Result.Offset.
type Results []Result

// Len returns the length of the slice. It implements the corresponding
// method of sort.Interface.
func (rs Results) Len() int {
	return len(rs)
}

// Less establishes an absolute ordering by ascending order of
// Result.Offset. It implements the corresponding method of
// sort.Interface.
func (rs Results) Less(i, j int) bool {
	return rs[i].Offset < rs[j].Offset
}

// Swap swaps two elements of the slice. It implements the corresponding
// method of sort.Interface.
func (rs Results) Swap(i, j int) {
	rs[i], rs[j] = rs[j], rs[i]
}

// PackedRTree is a packed Hilbert R-Tree. It is immutable once built
// and safe for concurrent searches.
type PackedRTree struct {
	// numRefs is the number of leaf nodes.
	numRefs int
	// nodeSize is the number of child nodes per parent node.
	nodeSize int
	// levels holds the level boundaries, leaves at index 0 and the
	// root at len(levels)-1.
	levels []levelRange
	// nodes holds every node in the tree, root first.
	nodes []node
}

// New creates a new packed Hilbert R-Tree from a non-empty,
// Hilbert-sorted list of references and a node size. Panics if the
// reference list is empty or node size is less than 2.
//
// Use HilbertSort to sort the references. An unsorted list still
// yields correct search results, but the tree prunes poorly.
func New(refs []Ref, nodeSize uint16) (*PackedRTree, error) {
	validateParams(len(refs), nodeSize)

	levels, err := levelify(len(refs), int(nodeSize))
	if err != nil {
		return nil, err
	}
	prt := &PackedRTree{
		numRefs:  len(refs),
		nodeSize: int(nodeSize),
		levels:   levels,
		nodes:    make([]node, levels[0].end),
	}

	// Copy the leaf nodes.
	i := prt.levels[0].start
	for j := range refs {
		prt.nodes[i] = node{refs[j]}
		i++
	}
	// Generate the internal nodes, one level up at a time.
	for i = 0; i < len(prt.levels)-1; i++ {
		level := prt.levels[i]
		nodeIndex := level.start
		parentIndex := prt.levels[i+1].start
		for nodeIndex < level.end {
			parent := &prt.nodes[parentIndex]
			*parent = node{Ref{shapefile.EmptyBox, int64(nodeIndex)}}
			for j := 0; j < prt.nodeSize && nodeIndex < level.end; j++ {
				parent.Expand(prt.nodes[nodeIndex].Box)
				nodeIndex++
			}
			parentIndex++
		}
	}
	return prt, nil
}

// Bounds returns the bounding box around all references in the tree.
func (prt *PackedRTree) Bounds() shapefile.Box {
	return prt.nodes[0].Box
}

// NumRefs returns the number of references stored in the tree.
func (prt *PackedRTree) NumRefs() int {
	return prt.numRefs
}

// NodeSize returns the child node count of the tree.
func (prt *PackedRTree) NodeSize() uint16 {
	return uint16(prt.nodeSize)
}

// String returns a summary description of the tree.
func (prt *PackedRTree) String() string {
	return fmt.Sprintf("PackedRTree{Bounds:%s,NumRefs:%d,NodeSize:%d}", prt.Bounds(), prt.numRefs, prt.nodeSize)
}

// Search returns the references whose boxes intersect b, boundaries
// included. The order of the results is not defined; use sort.Sort to
// put them in Offset order.
func (prt *PackedRTree) Search(b shapefile.Box) Results {
	q := ticketBag{{nodeIndex: 0, level: len(prt.levels) - 1}}
	r := make(Results, 0)

	for len(q) > 0 {
		t := q.pop()
		end := t.nodeIndex + prt.nodeSize
		if prt.levels[t.level].end < end {
			end = prt.levels[t.level].end
		}
		isLeafLevel := t.nodeIndex >= prt.levels[0].start
		for pos := t.nodeIndex; pos < end; pos++ {
			n := &prt.nodes[pos]
			if !b.Intersects(n.Box) {
				continue
			} else if isLeafLevel {
				r = append(r, Result{Offset: n.Offset, RefIndex: pos - prt.levels[0].start})
			} else {
				q.push(ticket{nodeIndex: int(n.Offset), level: t.level - 1})
			}
		}
	}
	return r
}

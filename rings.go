// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

// PolygonGroup is one exterior ring together with the holes that
// follow it.
type PolygonGroup struct {
	Exterior Ring
	Holes    []Ring
}

// SignedArea returns the shoelace sum
//
//	Σ (x[i+1]-x[i]) * (y[i+1]+y[i])
//
// over consecutive vertices of r, wrapping from the last vertex to the
// first. The sum is twice the ring's area, positive for a clockwise
// ring and negative for a counter-clockwise ring. Closed and unclosed
// rings give the same result.
func SignedArea(r Ring) float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := i + 1
		if j == n {
			j = 0
		}
		sum += (r[j].X - r[i].X) * (r[j].Y + r[i].Y)
	}
	return sum
}

// IsClockwise reports whether r winds clockwise, which in a shapefile
// marks an exterior ring. Degenerate rings with zero area are not
// clockwise.
func IsClockwise(r Ring) bool {
	return SignedArea(r) > 0
}

// ClassifyRings groups polygon rings into exteriors and holes in a
// single pass. Each clockwise ring opens a new group; each other ring
// is a hole of the most recently opened group. A hole that appears
// before any exterior is promoted to an exterior of its own.
func ClassifyRings(rings []Ring) []PolygonGroup {
	return classifyRings(rings, nil)
}

// classifyRings is ClassifyRings with a callback invoked with the
// index of every promoted orphan hole.
func classifyRings(rings []Ring, orphan func(i int)) []PolygonGroup {
	groups := make([]PolygonGroup, 0, 1)
	for i, r := range rings {
		if IsClockwise(r) {
			groups = append(groups, PolygonGroup{Exterior: r})
			continue
		}
		if len(groups) == 0 {
			if orphan != nil {
				orphan(i)
			}
			groups = append(groups, PolygonGroup{Exterior: r})
			continue
		}
		last := &groups[len(groups)-1]
		last.Holes = append(last.Holes, r)
	}
	return groups
}

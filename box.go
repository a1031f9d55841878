// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"math"
	"strconv"
	"strings"
)

// Box is an axis-aligned bounding rectangle in the X/Y plane.
type Box struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// EmptyBox is a Box that contains nothing. Expanding EmptyBox by any
// point yields the degenerate Box around that point.
var EmptyBox = Box{
	XMin: math.Inf(1),
	YMin: math.Inf(1),
	XMax: math.Inf(-1),
	YMax: math.Inf(-1),
}

// Width returns the extent of the Box along the X axis.
func (b Box) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns the extent of the Box along the Y axis.
func (b Box) Height() float64 {
	return b.YMax - b.YMin
}

// IsEmpty reports whether the Box contains no points.
func (b Box) IsEmpty() bool {
	return b.XMin > b.XMax || b.YMin > b.YMax
}

// Finite reports whether all four bounds are finite numbers.
func (b Box) Finite() bool {
	return isFinite(b.XMin) && isFinite(b.YMin) && isFinite(b.XMax) && isFinite(b.YMax)
}

// ExpandXY grows the Box, if needed, to contain the point (x, y).
func (b *Box) ExpandXY(x, y float64) {
	if x < b.XMin {
		b.XMin = x
	}
	if y < b.YMin {
		b.YMin = y
	}
	if x > b.XMax {
		b.XMax = x
	}
	if y > b.YMax {
		b.YMax = y
	}
}

// Expand grows the Box, if needed, to contain c.
func (b *Box) Expand(c Box) {
	if c.IsEmpty() {
		return
	}
	b.ExpandXY(c.XMin, c.YMin)
	b.ExpandXY(c.XMax, c.YMax)
}

// Intersects reports whether the two boxes share at least one point.
func (b Box) Intersects(o Box) bool {
	return !(b.XMax < o.XMin || b.YMax < o.YMin || b.XMin > o.XMax || b.YMin > o.YMax)
}

// String returns the Box as "[XMin,YMin,XMax,YMax]".
func (b Box) String() string {
	var s strings.Builder
	s.WriteByte('[')
	s.WriteString(strconv.FormatFloat(b.XMin, 'g', -1, 64))
	s.WriteByte(',')
	s.WriteString(strconv.FormatFloat(b.YMin, 'g', -1, 64))
	s.WriteByte(',')
	s.WriteString(strconv.FormatFloat(b.XMax, 'g', -1, 64))
	s.WriteByte(',')
	s.WriteString(strconv.FormatFloat(b.YMax, 'g', -1, 64))
	s.WriteByte(']')
	return s.String()
}

func (b Box) swapXY() Box {
	return Box{XMin: b.YMin, YMin: b.XMin, XMax: b.YMax, YMax: b.XMax}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

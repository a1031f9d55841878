// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

// Fixed payload sizes in bytes.
const (
	coordLen     = 16 // One X/Y pair.
	ordinateLen  = 8  // One Z or M value.
	rangeLen     = 16 // A Z or M min/max pair.
	boxLen       = 32 // A record bounding box.
	multiHeadLen = boxLen + 4
	partHeadLen  = boxLen + 8
	partIndexLen = 4
)

// DecodeGeometry decodes the shape specific payload of one record. The
// payload starts at offset, immediately after the record's shape type
// field, and runs to the end of buf, so callers should pass buf sliced
// to the end of the record. It returns a nil Geometry and nil error for
// ShapeNull.
//
// Repairs are applied silently. Use a Stream to observe them as
// diagnostics.
func DecodeGeometry(buf []byte, offset int, t ShapeType) (Geometry, error) {
	d := geometryDecoder{maxCount: DefaultMaxCount}
	return d.decode(buf, offset, t)
}

// geometryDecoder holds the per-stream decode policy. Its diags may be
// nil.
type geometryDecoder struct {
	maxCount int
	diags    *diagnostics
}

func (d *geometryDecoder) decode(buf []byte, offset int, t ShapeType) (Geometry, error) {
	if offset < 0 || offset > len(buf) {
		return nil, decodeErr(ErrTruncatedGeometry, offset, "payload offset outside buffer of %d bytes", len(buf))
	}
	if !t.Valid() {
		return nil, decodeErr(ErrUnsupportedShapeType, offset, "code %d", int32(t))
	}

	c := newCursor(buf[offset:], 0, offset)
	switch t.Family() {
	case FamilyNull:
		return nil, nil
	case FamilyPoint:
		return d.point(c, t)
	case FamilyMultiPoint:
		return d.multiPoint(c, t)
	case FamilyPolyLine:
		return d.polyLine(c, t)
	case FamilyPolygon:
		return d.polygon(c, t)
	case FamilyMultiPatch:
		return nil, decodeErr(ErrUnsupportedShapeType, offset, "%s is not decoded", t)
	default:
		fmtPanic("logic error: unhandled shape family %s", t.Family())
		return nil, nil
	}
}

func (d *geometryDecoder) point(c *cursor, t ShapeType) (Geometry, error) {
	need := coordLen
	if t.HasZ() || t.HasM() {
		need += ordinateLen
	}
	if c.remaining() < need {
		return nil, decodeErr(ErrTruncatedGeometry, c.offset(), "%s needs %d bytes, have %d", t, need, c.remaining())
	}

	p := &Point{}
	p.X = c.float64LE()
	p.Y = c.float64LE()
	hasM := false
	switch {
	case t.HasZ():
		p.Z = c.float64LE()
		if c.remaining() >= ordinateLen {
			p.M = c.float64LE()
			hasM = true
		}
	case t.HasM():
		p.M = c.float64LE()
		hasM = true
	}
	p.Dims = layoutOf(t.HasZ(), hasM)

	var r repairs
	r.fix(0, &p.Coord)
	r.report(d.diags)
	return p, nil
}

func (d *geometryDecoder) multiPoint(c *cursor, t ShapeType) (Geometry, error) {
	if c.remaining() < multiHeadLen {
		return nil, decodeErr(ErrTruncatedGeometry, c.offset(), "%s needs %d header bytes, have %d", t, multiHeadLen, c.remaining())
	}
	bbox := d.recordBox(c)
	numPoints, err := d.count(c, "points")
	if err != nil {
		return nil, err
	}

	points, dims, err := d.coords(c, t, numPoints)
	if err != nil {
		return nil, err
	}

	return &MultiPoint{Points: points, Dims: dims, BBox: bbox}, nil
}

func (d *geometryDecoder) polyLine(c *cursor, t ShapeType) (Geometry, error) {
	parts, dims, bbox, err := d.parts(c, t)
	if err != nil {
		return nil, err
	}

	lines := make([][]Coord, 0, len(parts))
	for i, part := range parts {
		if len(part) < 2 {
			d.diags.raise(DiagPartDropped, i, 1, nil)
			continue
		}
		lines = append(lines, part)
	}

	switch len(lines) {
	case 0:
		return nil, decodeErr(ErrEmptyGeometry, c.base, "all %d parts dropped", len(parts))
	case 1:
		return &LineString{Points: lines[0], Dims: dims, BBox: bbox}, nil
	default:
		return &MultiLineString{Lines: lines, Dims: dims, BBox: bbox}, nil
	}
}

func (d *geometryDecoder) polygon(c *cursor, t ShapeType) (Geometry, error) {
	parts, dims, bbox, err := d.parts(c, t)
	if err != nil {
		return nil, err
	}

	rings := make([]Ring, 0, len(parts))
	for i, part := range parts {
		r := Ring(part)
		if n := len(r); n > 0 && (r[0].X != r[n-1].X || r[0].Y != r[n-1].Y) {
			// Cap is len, so append never clobbers the next part.
			r = append(r, r[0])
			d.diags.raise(DiagRingClosed, i, 1, nil)
		}
		if len(r) < 4 {
			d.diags.raise(DiagRingDropped, i, 1, nil)
			continue
		}
		rings = append(rings, r)
	}
	if len(rings) == 0 {
		return nil, decodeErr(ErrEmptyGeometry, c.base, "all %d rings dropped", len(parts))
	}

	groups := classifyRings(rings, func(i int) {
		d.diags.raise(DiagOrphanHole, i, 1, nil)
	})
	if len(groups) == 1 {
		return &Polygon{Exterior: groups[0].Exterior, Holes: groups[0].Holes, Dims: dims, BBox: bbox}, nil
	}
	polys := make([]Polygon, len(groups))
	for i := range groups {
		polys[i] = Polygon{Exterior: groups[i].Exterior, Holes: groups[i].Holes, Dims: dims}
	}
	return &MultiPolygon{Polygons: polys, Dims: dims, BBox: bbox}, nil
}

// parts decodes the structure shared by polyline and polygon payloads
// and splits the points at the part start indices. Each returned part
// has cap equal to len.
func (d *geometryDecoder) parts(c *cursor, t ShapeType) ([][]Coord, Layout, *Box, error) {
	if c.remaining() < partHeadLen {
		return nil, XY, nil, decodeErr(ErrTruncatedGeometry, c.offset(), "%s needs %d header bytes, have %d", t, partHeadLen, c.remaining())
	}
	bbox := d.recordBox(c)
	numParts, err := d.count(c, "parts")
	if err != nil {
		return nil, XY, nil, err
	}
	numPoints, err := d.count(c, "points")
	if err != nil {
		return nil, XY, nil, err
	}

	// Pre-validate the part index and X/Y blocks together.
	need := int64(numParts)*partIndexLen + int64(numPoints)*coordLen
	if !c.has(need) {
		return nil, XY, nil, decodeErr(ErrTruncatedGeometry, c.offset(),
			"%d parts and %d points need %d bytes, have %d", numParts, numPoints, need, c.remaining())
	}

	starts := make([]int, numParts)
	for i := range starts {
		off := c.offset()
		p := int(c.int32LE())
		if p < 0 || p >= numPoints {
			return nil, XY, nil, decodeErr(ErrBadPartIndex, off, "part %d starts at %d, have %d points", i, p, numPoints)
		}
		if i > 0 && p < starts[i-1] {
			return nil, XY, nil, decodeErr(ErrBadPartIndex, off, "part %d starts at %d, before part %d at %d", i, p, i-1, starts[i-1])
		}
		starts[i] = p
	}

	points, dims, err := d.coords(c, t, numPoints)
	if err != nil {
		return nil, XY, nil, err
	}

	parts := make([][]Coord, numParts)
	for i, start := range starts {
		end := numPoints
		if i+1 < numParts {
			end = starts[i+1]
		}
		parts[i] = points[start:end:end]
	}
	return parts, dims, bbox, nil
}

// coords reads n X/Y pairs followed by the Z block, which is mandatory
// for Z types, and the M block, which is read only if the payload has
// room for it. Non-finite ordinates are replaced with zero.
func (d *geometryDecoder) coords(c *cursor, t ShapeType, n int) ([]Coord, Layout, error) {
	if !c.has(int64(n) * coordLen) {
		return nil, XY, decodeErr(ErrTruncatedGeometry, c.offset(), "%d points need %d bytes, have %d", n, n*coordLen, c.remaining())
	}
	points := make([]Coord, n)
	for i := range points {
		points[i].X = c.float64LE()
		points[i].Y = c.float64LE()
	}

	ordinateBlock := rangeLen + int64(n)*ordinateLen
	hasZ := t.HasZ()
	if hasZ {
		if !c.has(ordinateBlock) {
			return nil, XY, decodeErr(ErrTruncatedGeometry, c.offset(), "Z block needs %d bytes, have %d", ordinateBlock, c.remaining())
		}
		c.skip(rangeLen)
		for i := range points {
			points[i].Z = c.float64LE()
		}
	}
	hasM := false
	if t.HasM() && n > 0 && c.has(ordinateBlock) {
		c.skip(rangeLen)
		for i := range points {
			points[i].M = c.float64LE()
		}
		hasM = true
	}
	if c.short {
		fmtPanic("logic error: coordinate cursor overran at offset %d", c.offset())
	}

	var r repairs
	for i := range points {
		r.fix(i, &points[i])
	}
	r.report(d.diags)

	return points, layoutOf(hasZ, hasM), nil
}

// recordBox reads the record bounding box. A box that is not finite is
// discarded so that Bounds falls back to the coordinates.
func (d *geometryDecoder) recordBox(c *cursor) *Box {
	b := c.box()
	if !b.Finite() {
		d.diags.raise(DiagBoundingBoxIgnored, -1, 1, nil)
		return nil
	}
	return &b
}

func (d *geometryDecoder) count(c *cursor, what string) (int, error) {
	off := c.offset()
	n := c.int32LE()
	if n < 0 || int(n) > d.maxCount {
		return 0, decodeErr(ErrUnreasonableCount, off, "%d %s (limit %d)", n, what, d.maxCount)
	}
	return int(n), nil
}

// repairs aggregates non-finite ordinate repairs within one record.
type repairs struct {
	first int
	count int
}

func (r *repairs) fix(i int, p *Coord) {
	bad := zeroNonFinite(&p.X)
	bad = zeroNonFinite(&p.Y) || bad
	bad = zeroNonFinite(&p.Z) || bad
	bad = zeroNonFinite(&p.M) || bad
	if bad {
		if r.count == 0 {
			r.first = i
		}
		r.count++
	}
}

func (r *repairs) report(diags *diagnostics) {
	if r.count > 0 {
		diags.raise(DiagCoordinateRepaired, r.first, r.count, nil)
	}
}

func zeroNonFinite(f *float64) bool {
	if isFinite(*f) {
		return false
	}
	*f = 0
	return true
}

// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

// Layout describes which ordinates a geometry's coordinates carry.
type Layout int

const (
	XY Layout = iota
	XYZ
	XYM
	XYZM
)

func layoutOf(z, m bool) Layout {
	switch {
	case z && m:
		return XYZM
	case z:
		return XYZ
	case m:
		return XYM
	default:
		return XY
	}
}

// HasZ reports whether coordinates carry a meaningful Z value.
func (l Layout) HasZ() bool { return l == XYZ || l == XYZM }

// HasM reports whether coordinates carry a meaningful M value.
func (l Layout) HasM() bool { return l == XYM || l == XYZM }

func (l Layout) String() string {
	switch l {
	case XY:
		return "XY"
	case XYZ:
		return "XYZ"
	case XYM:
		return "XYM"
	case XYZM:
		return "XYZM"
	default:
		return "Layout(?)"
	}
}

// Coord is one vertex. Z and M are zero unless the owning geometry's
// Layout says they are present.
type Coord struct {
	X, Y, Z, M float64
}

// Ring is a closed sequence of coordinates whose first and last
// vertices are equal.
type Ring []Coord

// GeometryType identifies the concrete type behind a Geometry.
type GeometryType int

const (
	GeometryPoint GeometryType = iota + 1
	GeometryMultiPoint
	GeometryLineString
	GeometryMultiLineString
	GeometryPolygon
	GeometryMultiPolygon
)

var geometryTypeNames = map[GeometryType]string{
	GeometryPoint:           "Point",
	GeometryMultiPoint:      "MultiPoint",
	GeometryLineString:      "LineString",
	GeometryMultiLineString: "MultiLineString",
	GeometryPolygon:         "Polygon",
	GeometryMultiPolygon:    "MultiPolygon",
}

func (t GeometryType) String() string {
	if s, ok := geometryTypeNames[t]; ok {
		return s
	}
	return "GeometryType(?)"
}

// Geometry is the closed set of shapes the decoder produces: *Point,
// *MultiPoint, *LineString, *MultiLineString, *Polygon and
// *MultiPolygon.
type Geometry interface {
	// Type returns the concrete geometry type.
	Type() GeometryType
	// Layout returns the ordinates carried by the coordinates.
	Layout() Layout
	// Bounds returns the record's stored bounding box when one was
	// present and finite, and otherwise the box computed from the
	// coordinates.
	Bounds() Box
	// swapXY exchanges X and Y in place. It also keeps the union
	// closed to this package.
	swapXY()
}

// Point is a single vertex. Point records carry no bounding box.
type Point struct {
	Coord
	Dims Layout
}

func (g *Point) Type() GeometryType { return GeometryPoint }
func (g *Point) Layout() Layout     { return g.Dims }
func (g *Point) Bounds() Box        { return Box{g.X, g.Y, g.X, g.Y} }
func (g *Point) swapXY()            { g.X, g.Y = g.Y, g.X }

// MultiPoint is an unordered set of vertices.
type MultiPoint struct {
	Points []Coord
	Dims   Layout
	BBox   *Box
}

func (g *MultiPoint) Type() GeometryType { return GeometryMultiPoint }
func (g *MultiPoint) Layout() Layout     { return g.Dims }
func (g *MultiPoint) Bounds() Box        { return storedOr(g.BBox, g.Points) }
func (g *MultiPoint) swapXY() {
	swapCoords(g.Points)
	swapBox(g.BBox)
}

// LineString is a polyline record with exactly one usable part.
type LineString struct {
	Points []Coord
	Dims   Layout
	BBox   *Box
}

func (g *LineString) Type() GeometryType { return GeometryLineString }
func (g *LineString) Layout() Layout     { return g.Dims }
func (g *LineString) Bounds() Box        { return storedOr(g.BBox, g.Points) }
func (g *LineString) swapXY() {
	swapCoords(g.Points)
	swapBox(g.BBox)
}

// MultiLineString is a polyline record with more than one usable part.
type MultiLineString struct {
	Lines [][]Coord
	Dims  Layout
	BBox  *Box
}

func (g *MultiLineString) Type() GeometryType { return GeometryMultiLineString }
func (g *MultiLineString) Layout() Layout     { return g.Dims }
func (g *MultiLineString) Bounds() Box {
	if g.BBox != nil {
		return *g.BBox
	}
	b := EmptyBox
	for _, l := range g.Lines {
		b.Expand(coordsBox(l))
	}
	return b
}
func (g *MultiLineString) swapXY() {
	for _, l := range g.Lines {
		swapCoords(l)
	}
	swapBox(g.BBox)
}

// Polygon is one exterior ring plus zero or more holes.
type Polygon struct {
	Exterior Ring
	Holes    []Ring
	Dims     Layout
	BBox     *Box
}

func (g *Polygon) Type() GeometryType { return GeometryPolygon }
func (g *Polygon) Layout() Layout     { return g.Dims }
func (g *Polygon) Bounds() Box        { return storedOr(g.BBox, g.Exterior) }
func (g *Polygon) swapXY() {
	swapCoords(g.Exterior)
	for _, h := range g.Holes {
		swapCoords(h)
	}
	swapBox(g.BBox)
}

// MultiPolygon is a polygon record whose rings form more than one
// exterior. Member polygons carry no BBox of their own.
type MultiPolygon struct {
	Polygons []Polygon
	Dims     Layout
	BBox     *Box
}

func (g *MultiPolygon) Type() GeometryType { return GeometryMultiPolygon }
func (g *MultiPolygon) Layout() Layout     { return g.Dims }
func (g *MultiPolygon) Bounds() Box {
	if g.BBox != nil {
		return *g.BBox
	}
	b := EmptyBox
	for i := range g.Polygons {
		b.Expand(coordsBox(g.Polygons[i].Exterior))
	}
	return b
}
func (g *MultiPolygon) swapXY() {
	for i := range g.Polygons {
		g.Polygons[i].swapXY()
	}
	swapBox(g.BBox)
}

func storedOr(stored *Box, coords []Coord) Box {
	if stored != nil {
		return *stored
	}
	return coordsBox(coords)
}

func coordsBox(coords []Coord) Box {
	b := EmptyBox
	for i := range coords {
		b.ExpandXY(coords[i].X, coords[i].Y)
	}
	return b
}

func swapCoords(coords []Coord) {
	for i := range coords {
		coords[i].X, coords[i].Y = coords[i].Y, coords[i].X
	}
}

func swapBox(b *Box) {
	if b != nil {
		*b = b.swapXY()
	}
}

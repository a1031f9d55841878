// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"encoding/binary"
	"math"

	flatbuffers "github.com/google/flatbuffers/go"
)

// byteWriter builds little-endian test payloads.
type byteWriter struct {
	b []byte
}

func (w *byteWriter) i32(vs ...int32) *byteWriter {
	for _, v := range vs {
		var p [4]byte
		flatbuffers.WriteInt32(p[:], v)
		w.b = append(w.b, p[:]...)
	}
	return w
}

func (w *byteWriter) f64(vs ...float64) *byteWriter {
	for _, v := range vs {
		var p [8]byte
		flatbuffers.WriteFloat64(p[:], v)
		w.b = append(w.b, p[:]...)
	}
	return w
}

func (w *byteWriter) box(b Box) *byteWriter {
	return w.f64(b.XMin, b.YMin, b.XMax, b.YMax)
}

var testBBox = BBox{
	Box:  Box{XMin: -10, YMin: -10, XMax: 10, YMax: 10},
	ZMin: 0, ZMax: 0,
	MMin: math.NaN(), MMax: math.NaN(),
}

func makeHeader(t ShapeType, fileLen int, bbox BBox) []byte {
	h := make([]byte, HeaderLen)
	binary.BigEndian.PutUint32(h[offFileCode:], FileCode)
	binary.BigEndian.PutUint32(h[offFileLength:], uint32(fileLen/2))
	flatbuffers.WriteInt32(h[offVersion:], Version)
	flatbuffers.WriteInt32(h[offShapeType:], int32(t))
	for i, f := range []float64{bbox.XMin, bbox.YMin, bbox.XMax, bbox.YMax, bbox.ZMin, bbox.ZMax, bbox.MMin, bbox.MMax} {
		flatbuffers.WriteFloat64(h[offBBox+8*i:], f)
	}
	return h
}

type testRecord struct {
	number  int32
	content []byte
	// words overrides the declared content length if non-zero.
	words int32
}

func rec(number int32, content []byte) testRecord {
	return testRecord{number: number, content: content}
}

func makeRecord(r testRecord) []byte {
	words := r.words
	if words == 0 {
		words = int32(len(r.content) / 2)
	}
	b := make([]byte, RecordHeaderLen, RecordHeaderLen+len(r.content))
	binary.BigEndian.PutUint32(b[0:], uint32(r.number))
	binary.BigEndian.PutUint32(b[4:], uint32(words))
	return append(b, r.content...)
}

// makeFile builds a complete shapefile whose declared file length is
// the buffer length.
func makeFile(t ShapeType, records ...testRecord) []byte {
	var body []byte
	for _, r := range records {
		body = append(body, makeRecord(r)...)
	}
	return append(makeHeader(t, HeaderLen+len(body), testBBox), body...)
}

func nullContent() []byte {
	return (&byteWriter{}).i32(int32(ShapeNull)).b
}

func pointContent(x, y float64) []byte {
	return (&byteWriter{}).i32(int32(ShapePoint)).f64(x, y).b
}

func multiPointContent(t ShapeType, pts ...Coord) []byte {
	w := (&byteWriter{}).i32(int32(t)).box(coordsBox(pts)).i32(int32(len(pts)))
	for _, p := range pts {
		w.f64(p.X, p.Y)
	}
	writeZM(w, t, pts)
	return w.b
}

// polyContent builds a polyline or polygon record content, including
// the shape type, with one part per argument.
func polyContent(t ShapeType, parts ...[]Coord) []byte {
	var starts []int32
	var pts []Coord
	for _, p := range parts {
		starts = append(starts, int32(len(pts)))
		pts = append(pts, p...)
	}
	return polyContentRaw(t, starts, pts)
}

func polyContentRaw(t ShapeType, starts []int32, pts []Coord) []byte {
	w := (&byteWriter{}).i32(int32(t)).box(coordsBox(pts)).i32(int32(len(starts)), int32(len(pts)))
	w.i32(starts...)
	for _, p := range pts {
		w.f64(p.X, p.Y)
	}
	writeZM(w, t, pts)
	return w.b
}

func writeZM(w *byteWriter, t ShapeType, pts []Coord) {
	if t.HasZ() {
		w.f64(0, 0)
		for _, p := range pts {
			w.f64(p.Z)
		}
	}
	if t.HasM() {
		w.f64(0, 0)
		for _, p := range pts {
			w.f64(p.M)
		}
	}
}

func xy(coords ...float64) []Coord {
	out := make([]Coord, len(coords)/2)
	for i := range out {
		out[i] = Coord{X: coords[2*i], Y: coords[2*i+1]}
	}
	return out
}

// Square rings. The clockwise one is an exterior.
var (
	cwSquare     = xy(0, 0, 0, 10, 10, 10, 10, 0, 0, 0)
	ccwSquare    = xy(2, 2, 4, 2, 4, 4, 2, 4, 2, 2)
	cwFarSquare  = xy(20, 20, 20, 30, 30, 30, 30, 20, 20, 20)
	ccwFarSquare = xy(20, 20, 30, 20, 30, 30, 20, 30, 20, 20)
)

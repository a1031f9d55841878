// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package export converts decoded shapefile geometries into go-geom
// values and encodes them as WKT or GeoJSON.
package export

import (
	"strconv"

	"github.com/gogama/shapefile"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// Geom converts g to the equivalent go-geom value with the same
// layout. A nil g, which is what a Null record carries, converts to a
// nil geom.T.
func Geom(g shapefile.Geometry) (geom.T, error) {
	return convert(g, false)
}

// WKT returns the well-known text of g, keeping Z and M. A nil g
// yields "GEOMETRYCOLLECTION EMPTY".
func WKT(g shapefile.Geometry) (string, error) {
	if g == nil {
		return "GEOMETRYCOLLECTION EMPTY", nil
	}
	t, err := Geom(g)
	if err != nil {
		return "", err
	}
	return wkt.Marshal(t)
}

// Feature converts r to a GeoJSON feature whose ID is the record
// number and whose properties are the record attributes. GeoJSON has
// no M ordinate, so M values are dropped.
func Feature(r shapefile.DecodedRecord) (*geojson.Feature, error) {
	t, err := convert(r.Geometry, true)
	if err != nil {
		return nil, wrapErr("record %d", err, r.RecordNumber)
	}
	return &geojson.Feature{
		ID:         strconv.FormatInt(int64(r.RecordNumber), 10),
		Geometry:   t,
		Properties: r.Attributes,
	}, nil
}

// FeatureCollection converts records to a GeoJSON feature collection
// in order.
func FeatureCollection(records []shapefile.DecodedRecord) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(records)),
	}
	for i := range records {
		f, err := Feature(records[i])
		if err != nil {
			return nil, err
		}
		fc.Features = append(fc.Features, f)
	}
	return fc, nil
}

func convert(g shapefile.Geometry, dropM bool) (geom.T, error) {
	if g == nil {
		return nil, nil
	}
	l := layout(g.Layout(), dropM)
	switch v := g.(type) {
	case *shapefile.Point:
		return geom.NewPointFlat(l, flatten(nil, l, []shapefile.Coord{v.Coord})), nil
	case *shapefile.MultiPoint:
		return geom.NewMultiPointFlat(l, flatten(nil, l, v.Points)), nil
	case *shapefile.LineString:
		return geom.NewLineStringFlat(l, flatten(nil, l, v.Points)), nil
	case *shapefile.MultiLineString:
		var flat []float64
		ends := make([]int, 0, len(v.Lines))
		for _, line := range v.Lines {
			flat = flatten(flat, l, line)
			ends = append(ends, len(flat))
		}
		return geom.NewMultiLineStringFlat(l, flat, ends), nil
	case *shapefile.Polygon:
		flat, ends := flattenPolygon(nil, l, v)
		return geom.NewPolygonFlat(l, flat, ends), nil
	case *shapefile.MultiPolygon:
		var flat []float64
		endss := make([][]int, 0, len(v.Polygons))
		for i := range v.Polygons {
			var ends []int
			flat, ends = flattenPolygon(flat, l, &v.Polygons[i])
			endss = append(endss, ends)
		}
		return geom.NewMultiPolygonFlat(l, flat, endss), nil
	default:
		return nil, fmtErr("unsupported geometry %T", g)
	}
}

func layout(l shapefile.Layout, dropM bool) geom.Layout {
	switch l {
	case shapefile.XYZ:
		return geom.XYZ
	case shapefile.XYM:
		if dropM {
			return geom.XY
		}
		return geom.XYM
	case shapefile.XYZM:
		if dropM {
			return geom.XYZ
		}
		return geom.XYZM
	default:
		return geom.XY
	}
}

// flatten appends coords to flat in go-geom's flat coordinate order for
// layout l.
func flatten(flat []float64, l geom.Layout, coords []shapefile.Coord) []float64 {
	for i := range coords {
		c := &coords[i]
		flat = append(flat, c.X, c.Y)
		if l.ZIndex() >= 0 {
			flat = append(flat, c.Z)
		}
		if l.MIndex() >= 0 {
			flat = append(flat, c.M)
		}
	}
	return flat
}

func flattenPolygon(flat []float64, l geom.Layout, p *shapefile.Polygon) ([]float64, []int) {
	ends := make([]int, 0, 1+len(p.Holes))
	flat = flatten(flat, l, p.Exterior)
	ends = append(ends, len(flat))
	for _, h := range p.Holes {
		flat = flatten(flat, l, h)
		ends = append(ends, len(flat))
	}
	return flat, ends
}

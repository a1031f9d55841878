// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package index

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/shapefile"
)

func point(n int32, x, y float64) shapefile.DecodedRecord {
	r := shapefile.Assemble(n, shapefile.ShapePoint, &shapefile.Point{Coord: shapefile.Coord{X: x, Y: y}}, nil)
	r.Offset = 100 + 28*int(n-1)
	return r
}

func line(n int32, offset int, box shapefile.Box) shapefile.DecodedRecord {
	r := shapefile.Assemble(n, shapefile.ShapePolyLine, &shapefile.LineString{
		Points: []shapefile.Coord{{X: box.XMin, Y: box.YMin}, {X: box.XMax, Y: box.YMax}},
	}, nil)
	r.Offset = offset
	return r
}

func numbers(entries []Entry) []int32 {
	var ns []int32
	for _, e := range entries {
		ns = append(ns, e.RecordNumber)
	}
	return ns
}

func TestIndex_Search(t *testing.T) {
	records := []shapefile.DecodedRecord{
		line(1, 500, shapefile.Box{XMin: 0, YMin: 0, XMax: 10, YMax: 10}),
		line(2, 300, shapefile.Box{XMin: 10, YMin: 10, XMax: 20, YMax: 20}),
		line(3, 100, shapefile.Box{XMin: 100, YMin: 100, XMax: 110, YMax: 110}),
		point(4, 5, 5),
	}
	records[3].Offset = 900
	idx := New(records)

	testCases := []struct {
		name     string
		query    shapefile.Box
		expected []int32
	}{
		{"All", shapefile.Box{XMin: -1000, YMin: -1000, XMax: 1000, YMax: 1000}, []int32{3, 2, 1, 4}},
		{"TouchingCorner", shapefile.Box{XMin: 20, YMin: 20, XMax: 30, YMax: 30}, []int32{2}},
		{"SharedCorner", shapefile.Box{XMin: 10, YMin: 10, XMax: 10, YMax: 10}, []int32{2, 1}},
		{"PointInside", shapefile.Box{XMin: 4, YMin: 4, XMax: 6, YMax: 6}, []int32{1, 4}},
		{"ExactPoint", shapefile.Box{XMin: 5, YMin: 5, XMax: 5, YMax: 5}, []int32{1, 4}},
		{"NearMiss", shapefile.Box{XMin: 20.000001, YMin: 0, XMax: 99, YMax: 99}, nil},
		{"Empty", shapefile.EmptyBox, nil},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := idx.Search(testCase.query)

			assert.Equal(t, testCase.expected, numbers(actual))
		})
	}

	t.Run("EntryFields", func(t *testing.T) {
		actual := idx.Search(shapefile.Box{XMin: 100, YMin: 100, XMax: 100, YMax: 100})

		assert.Equal(t, []Entry{{
			RecordNumber: 3,
			Offset:       100,
			Box:          shapefile.Box{XMin: 100, YMin: 100, XMax: 110, YMax: 110},
		}}, actual)
	})
}

func TestIndex_Insert(t *testing.T) {
	idx := New(nil)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, shapefile.EmptyBox, idx.Bounds())
	assert.Nil(t, idx.Search(shapefile.Box{XMax: 1, YMax: 1}))

	assert.False(t, idx.Insert(shapefile.Assemble(1, shapefile.ShapeNull, nil, nil)))
	assert.False(t, idx.Insert(shapefile.Assemble(2, shapefile.ShapeMultiPoint, &shapefile.MultiPoint{}, nil)))
	assert.False(t, idx.Insert(point(3, math.NaN(), 0)))
	assert.True(t, idx.Insert(point(4, -3, 7)))
	assert.True(t, idx.Insert(point(5, 2, -1)))

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, shapefile.Box{XMin: -3, YMin: -1, XMax: 2, YMax: 7}, idx.Bounds())
}

func TestIndex_InsertAfterSearch(t *testing.T) {
	idx := New([]shapefile.DecodedRecord{point(2, 1, 1), point(5, 9, 9)})
	all := shapefile.Box{XMin: 0, YMin: 0, XMax: 10, YMax: 10}
	require.Equal(t, []int32{2, 5}, numbers(idx.Search(all)))

	assert.True(t, idx.Insert(point(1, 5, 5)))
	assert.True(t, idx.Insert(point(3, 20, 20)))

	assert.Equal(t, []int32{1, 2, 5}, numbers(idx.Search(all)))
	assert.Equal(t, []int32{3}, numbers(idx.Search(shapefile.Box{XMin: 20, YMin: 20, XMax: 20, YMax: 20})))
	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, shapefile.Box{XMin: 1, YMin: 1, XMax: 20, YMax: 20}, idx.Bounds())
}

func TestIndex_SameOffset(t *testing.T) {
	a := line(1, 100, shapefile.Box{XMin: 0, YMin: 0, XMax: 1, YMax: 1})
	b := line(2, 100, shapefile.Box{XMin: 5, YMin: 5, XMax: 6, YMax: 6})

	idx := New([]shapefile.DecodedRecord{a, b})

	assert.Equal(t, []int32{1, 2}, numbers(idx.Search(shapefile.Box{XMin: 0, YMin: 0, XMax: 6, YMax: 6})))
	assert.Equal(t, []int32{2}, numbers(idx.Search(shapefile.Box{XMin: 5, YMin: 5, XMax: 6, YMax: 6})))
}

func TestIndex_Many(t *testing.T) {
	var records []shapefile.DecodedRecord
	for i := 0; i < 1000; i++ {
		records = append(records, point(int32(i+1), float64(i%40), float64(i/40)))
	}
	idx := New(records)

	actual := idx.Search(shapefile.Box{XMin: 10, YMin: 10, XMax: 11, YMax: 11})

	assert.Equal(t, 1000, idx.Len())
	assert.Equal(t, []int32{411, 412, 451, 452}, numbers(actual))
}

func TestBuild(t *testing.T) {
	buf := makePointFile(t, [][2]float64{{1, 1}, {5, 5}, {9, 9}})
	s, err := shapefile.Decode(buf)
	require.NoError(t, err)

	idx, err := Build(context.Background(), s)

	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	entries := idx.Search(shapefile.Box{XMin: 4, YMin: 4, XMax: 10, YMax: 10})
	require.Len(t, entries, 2)
	for _, e := range entries {
		r, err := shapefile.DecodeRecordAt(buf, e.Offset, shapefile.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, e.RecordNumber, r.RecordNumber)
		assert.Equal(t, e.Box, r.Geometry.Bounds())
	}

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s.Rewind()

		idx, err := Build(ctx, s)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, idx.Len())
	})
}

// makePointFile builds a Point shapefile holding one record per point.
func makePointFile(t *testing.T, pts [][2]float64) []byte {
	t.Helper()

	const recordLen = 8 + 20
	buf := make([]byte, shapefile.HeaderLen+recordLen*len(pts))
	binary.BigEndian.PutUint32(buf[0:], shapefile.FileCode)
	binary.BigEndian.PutUint32(buf[24:], uint32(len(buf)/2))
	flatbuffers.WriteInt32(buf[28:], shapefile.Version)
	flatbuffers.WriteInt32(buf[32:], int32(shapefile.ShapePoint))
	for i, f := range []float64{0, 0, 10, 10} {
		flatbuffers.WriteFloat64(buf[36+8*i:], f)
	}
	for i, p := range pts {
		rec := buf[shapefile.HeaderLen+recordLen*i:]
		binary.BigEndian.PutUint32(rec[0:], uint32(i+1))
		binary.BigEndian.PutUint32(rec[4:], 10)
		flatbuffers.WriteInt32(rec[8:], int32(shapefile.ShapePoint))
		flatbuffers.WriteFloat64(rec[12:], p[0])
		flatbuffers.WriteFloat64(rec[20:], p[1])
	}
	require.True(t, shapefile.Magic(buf))
	return buf
}

// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kingpin/v2"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/shapefile"
	"github.com/gogama/shapefile/index"
)

func TestParseBox(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected shapefile.Box
		err      string
	}{
		{"Valid", "7,46,8,47", shapefile.Box{XMin: 7, YMin: 46, XMax: 8, YMax: 47}, ""},
		{"Spaces", " -1.5, -2 ,3e2,4 ", shapefile.Box{XMin: -1.5, YMin: -2, XMax: 300, YMax: 4}, ""},
		{"Degenerate", "1,1,1,1", shapefile.Box{XMin: 1, YMin: 1, XMax: 1, YMax: 1}, ""},
		{"TooFew", "1,2,3", shapefile.Box{}, `bounding box "1,2,3": want xmin,ymin,xmax,ymax`},
		{"NotNumber", "1,2,x,4", shapefile.Box{}, `bounding box "1,2,x,4": strconv.ParseFloat: parsing "x": invalid syntax`},
		{"Inverted", "5,0,1,1", shapefile.Box{}, `bounding box "5,0,1,1" is inverted`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual, err := parseBox(testCase.input)

			if testCase.err != "" {
				assert.EqualError(t, err, testCase.err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, testCase.expected, actual)
		})
	}
}

// newTestGlobals parses args as global flags and runs setup.
func newTestGlobals(t *testing.T, args ...string) *globals {
	t.Helper()

	app := kingpin.New("test", "")
	g := addGlobalFlags(app)
	app.Command("noop", "")
	_, err := app.Parse(append(args, "noop"))
	require.NoError(t, err)
	return g
}

// writePoints writes a Point shapefile with one record per point. A
// NaN X makes the record content too short so it is skipped.
func writePoints(t *testing.T, dir, name string, pts ...[2]float64) string {
	t.Helper()

	var body []byte
	for i, p := range pts {
		content := make([]byte, 20)
		flatbuffers.WriteInt32(content, int32(shapefile.ShapePoint))
		flatbuffers.WriteFloat64(content[4:], p[0])
		flatbuffers.WriteFloat64(content[12:], p[1])
		if math.IsNaN(p[0]) {
			content = content[:12]
		}
		rh := make([]byte, 8)
		binary.BigEndian.PutUint32(rh, uint32(i+1))
		binary.BigEndian.PutUint32(rh[4:], uint32(len(content)/2))
		body = append(body, rh...)
		body = append(body, content...)
	}

	h := make([]byte, shapefile.HeaderLen)
	binary.BigEndian.PutUint32(h, shapefile.FileCode)
	binary.BigEndian.PutUint32(h[24:], uint32((len(h)+len(body))/2))
	flatbuffers.WriteInt32(h[28:], shapefile.Version)
	flatbuffers.WriteInt32(h[32:], int32(shapefile.ShapePoint))
	for i, f := range []float64{0, 0, 10, 10} {
		flatbuffers.WriteFloat64(h[36+8*i:], f)
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, append(h, body...), 0o644))
	return path
}

func TestGlobals(t *testing.T) {
	t.Run("Flags", func(t *testing.T) {
		g := newTestGlobals(t, "--swap-axes", "--max-records=3", "--no-dbf")

		opts := g.options(&input{name: "x.shp"})

		assert.Equal(t, shapefile.AxisOrderSwapped, opts.AxisOrder)
		assert.Equal(t, 3, opts.MaxRecords)
		assert.Nil(t, opts.Attributes)
		assert.Same(t, g.metrics, opts.Metrics)
	})

	t.Run("NegativeMaxRecords", func(t *testing.T) {
		app := kingpin.New("test", "")
		addGlobalFlags(app)
		app.Command("noop", "")

		_, err := app.Parse([]string{"--max-records=-1", "noop"})

		assert.EqualError(t, err, "--max-records must not be negative, got -1")
	})

	t.Run("LoadMissingDBF", func(t *testing.T) {
		g := newTestGlobals(t)
		path := writePoints(t, t.TempDir(), "a.shp", [2]float64{1, 2})

		in, err := g.load(path)

		require.NoError(t, err)
		assert.Nil(t, in.table)
		assert.True(t, shapefile.Magic(in.shp))
	})

	t.Run("LoadBadDBF", func(t *testing.T) {
		g := newTestGlobals(t)
		dir := t.TempDir()
		path := writePoints(t, dir, "b.shp", [2]float64{1, 2})
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.dbf"), []byte("short"), 0o644))

		_, err := g.load(path)

		assert.ErrorContains(t, err, "failed to parse attribute table")
	})

	t.Run("LoadMissingFile", func(t *testing.T) {
		g := newTestGlobals(t)

		_, err := g.load(filepath.Join(t.TempDir(), "missing.shp"))

		assert.ErrorContains(t, err, "failed to read file")
	})
}

func TestStatsCommand_collect(t *testing.T) {
	g := newTestGlobals(t)
	dir := t.TempDir()
	path := writePoints(t, dir, "c.shp", [2]float64{1, 2}, [2]float64{math.NaN(), 0}, [2]float64{3, 4})
	cmd := &statsCommand{g: g}

	st := cmd.collect(context.Background(), path)

	assert.Equal(t, fileStats{
		File:        path,
		Size:        uint64(100 + 28 + 20 + 28),
		ShapeType:   "Point",
		Bounds:      "[0,0,10,10]",
		Attempted:   3,
		Decoded:     2,
		Skipped:     1,
		SkipReasons: map[string]int{"truncated geometry": 1},
	}, st)
	n, err := testutil.GatherAndCount(g.registry, "shapefile_records_decoded_total", "shapefile_records_skipped_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	t.Run("BadHeader", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.shp")
		require.NoError(t, os.WriteFile(bad, make([]byte, 100), 0o644))

		st := cmd.collect(context.Background(), bad)

		assert.Equal(t, "", st.ShapeType)
		assert.Contains(t, st.Error, "bad file code")
	})
}

// counterTotal sums every series of the named counter in reg.
func counterTotal(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestSelectBox(t *testing.T) {
	g := newTestGlobals(t)
	path := writePoints(t, t.TempDir(), "d.shp", [2]float64{1, math.Inf(1)}, [2]float64{3, 4})
	in, err := g.load(path)
	require.NoError(t, err)
	opts := g.options(in)
	s, err := shapefile.DecodeWithOptions(in.shp, opts)
	require.NoError(t, err)
	idx, err := index.Build(context.Background(), s)
	require.NoError(t, err)

	records, err := selectBox(in.shp, idx, shapefile.Box{XMin: 0, YMin: -1, XMax: 2, YMax: 1}, opts)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int32(1), records[0].RecordNumber)
	assert.Equal(t, shapefile.Box{XMin: 1, YMin: 0, XMax: 1, YMax: 0}, records[0].Geometry.Bounds())
	assert.Equal(t, 2.0, counterTotal(t, g.registry, "shapefile_records_decoded_total"))
	assert.Equal(t, 1.0, counterTotal(t, g.registry, "shapefile_repairs_total"))
	assert.Same(t, g.metrics, opts.Metrics)

	t.Run("BadOffset", func(t *testing.T) {
		bad := index.New([]shapefile.DecodedRecord{{RecordNumber: 9, Offset: 1 << 20, Geometry: records[0].Geometry}})

		_, err := selectBox(in.shp, bad, shapefile.Box{XMin: 0, YMin: -1, XMax: 2, YMax: 1}, opts)

		assert.ErrorContains(t, err, "failed to re-read record 9")
	})
}

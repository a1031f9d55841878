// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command shpinspect reports on and dumps shapefiles.
//
//	shpinspect stats roads.shp rivers.shp
//	shpinspect dump --format=wkt --bbox=7,46,8,47 roads.shp
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogama/shapefile"
	"github.com/gogama/shapefile/dbf"
)

func main() {
	app := kingpin.New("shpinspect", "A command-line tool to inspect shapefiles.")
	g := addGlobalFlags(app)
	addStatsCommand(app, g)
	addDumpCommand(app, g)
	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}

// globals holds the flags and shared state of every command.
type globals struct {
	verbose    *bool
	swapAxes   *bool
	maxRecords *int
	noDBF      *bool

	logger   log.Logger
	registry *prometheus.Registry
	metrics  *shapefile.Metrics
}

func addGlobalFlags(app *kingpin.Application) *globals {
	g := &globals{}
	g.verbose = app.Flag("verbose", "Log every decoder diagnostic, not just skipped records.").Short('v').Bool()
	g.swapAxes = app.Flag("swap-axes", "Exchange X and Y in decoded coordinates.").Bool()
	g.maxRecords = app.Flag("max-records", "Stop after this many records per file (0 for all).").Default("0").Int()
	g.noDBF = app.Flag("no-dbf", "Ignore companion .dbf attribute tables.").Bool()
	app.PreAction(g.setup)
	return g
}

func (g *globals) setup(*kingpin.ParseContext) error {
	if *g.maxRecords < 0 {
		return fmt.Errorf("--max-records must not be negative, got %d", *g.maxRecords)
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if *g.verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowWarn())
	}
	g.logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	g.registry = prometheus.NewRegistry()
	g.metrics = shapefile.NewMetrics(g.registry)
	return nil
}

// input is one shapefile read into memory together with its optional
// attribute table.
type input struct {
	name  string
	shp   []byte
	table *dbf.Table
}

func (g *globals) load(name string) (*input, error) {
	shp, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	in := &input{name: name, shp: shp}
	if *g.noDBF {
		return in, nil
	}

	dbfName := strings.TrimSuffix(name, filepath.Ext(name)) + ".dbf"
	b, err := os.ReadFile(dbfName)
	if errors.Is(err, fs.ErrNotExist) {
		return in, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read attribute table: %w", err)
	}
	if in.table, err = dbf.Parse(b); err != nil {
		return nil, fmt.Errorf("failed to parse attribute table %s: %w", dbfName, err)
	}
	return in, nil
}

func (g *globals) options(in *input) shapefile.Options {
	opts := shapefile.DefaultOptions()
	opts.MaxRecords = *g.maxRecords
	opts.Logger = log.With(g.logger, "file", in.name)
	opts.Metrics = g.metrics
	if *g.swapAxes {
		opts.AxisOrder = shapefile.AxisOrderSwapped
	}
	if in.table != nil {
		opts.Attributes = in.table
	}
	return opts
}

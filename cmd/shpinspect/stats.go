// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gogama/shapefile"
)

// statsCommand prints decode stats for each shapefile in files.
type statsCommand struct {
	g           *globals
	files       *[]string
	format      *string
	workers     *int
	showMetrics *bool
}

// fileStats is the report for one file.
type fileStats struct {
	File        string         `yaml:"file"`
	Size        uint64         `yaml:"size"`
	ShapeType   string         `yaml:"shapeType,omitempty"`
	Bounds      string         `yaml:"bounds,omitempty"`
	Attributes  bool           `yaml:"attributes"`
	Attempted   int            `yaml:"attempted"`
	Decoded     int            `yaml:"decoded"`
	Skipped     int            `yaml:"skipped"`
	SkipReasons map[string]int `yaml:"skipReasons,omitempty"`
	Diagnostics map[string]int `yaml:"diagnostics,omitempty"`
	Error       string         `yaml:"error,omitempty"`
}

func (cmd *statsCommand) run(c *kingpin.ParseContext) error {
	if *cmd.workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", *cmd.workers)
	}
	results := make([]fileStats, len(*cmd.files))

	// Files are independent, so decode them in parallel.
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*cmd.workers)
	for i, name := range *cmd.files {
		i, name := i, name
		g.Go(func() error {
			results[i] = cmd.collect(ctx, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	switch *cmd.format {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	default:
		for i := range results {
			cmd.printStats(&results[i])
		}
	}
	if *cmd.showMetrics {
		if err := cmd.printMetrics(); err != nil {
			return err
		}
	}

	var failed int
	for i := range results {
		if results[i].Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// collect decodes the whole of one file and summarizes the outcome.
func (cmd *statsCommand) collect(ctx context.Context, name string) fileStats {
	st := fileStats{File: name}
	in, err := cmd.g.load(name)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Size = uint64(len(in.shp))
	st.Attributes = in.table != nil

	s, err := shapefile.DecodeWithOptions(in.shp, cmd.g.options(in))
	if err != nil {
		st.Error = err.Error()
		return st
	}
	h := s.Header()
	st.ShapeType = h.ShapeType.String()
	st.Bounds = h.BBox.Box.String()

	for s.Next(ctx) {
	}
	if err := s.Err(); err != nil {
		st.Error = err.Error()
	}

	sum := s.Summary()
	st.Attempted = sum.Attempted
	st.Decoded = sum.Decoded
	st.Skipped = sum.Skipped
	if len(sum.SkippedByKind) > 0 {
		st.SkipReasons = make(map[string]int, len(sum.SkippedByKind))
		for k, n := range sum.SkippedByKind {
			st.SkipReasons[k.String()] = n
		}
	}
	for _, d := range s.Diagnostics() {
		if d.Kind == shapefile.DiagRecordSkipped {
			continue
		}
		if st.Diagnostics == nil {
			st.Diagnostics = make(map[string]int)
		}
		st.Diagnostics[d.Kind.String()] += d.Count
	}
	return st
}

func (cmd *statsCommand) printStats(st *fileStats) {
	bold := color.New(color.Bold)
	bold.Printf("%s:\n", st.File)
	if st.ShapeType != "" {
		fmt.Printf(
			"\tsize: %v, shape type: %s, bounds: %s, attributes: %t\n",
			humanize.Bytes(st.Size),
			st.ShapeType,
			st.Bounds,
			st.Attributes,
		)
		fmt.Printf(
			"\t%s of %s records decoded, %s skipped\n",
			humanize.Comma(int64(st.Decoded)),
			humanize.Comma(int64(st.Attempted)),
			humanize.Comma(int64(st.Skipped)),
		)
	}
	printCounts("skip reasons", st.SkipReasons)
	printCounts("repairs", st.Diagnostics)
	if st.Error != "" {
		color.New(color.FgRed).Printf("\terror: %s\n", st.Error)
	}
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("\t%s:\n", title)
	for _, k := range keys {
		fmt.Printf("\t\t%s: %d\n", k, counts[k])
	}
}

func (cmd *statsCommand) printMetrics() error {
	families, err := cmd.g.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	color.New(color.Bold).Println("Metrics:")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf("{%s=%q}", lp.GetName(), lp.GetValue())
			}
			fmt.Printf("\t%s%s %v\n", mf.GetName(), labels, m.GetCounter().GetValue())
		}
	}
	return nil
}

func addStatsCommand(app *kingpin.Application, g *globals) {
	cmd := &statsCommand{g: g}
	stats := app.Command("stats", "Print decode stats for each shapefile.").Action(cmd.run)
	cmd.format = stats.Flag("format", "Output format.").Default("text").Enum("text", "yaml")
	cmd.workers = stats.Flag("workers", "Number of files decoded in parallel.").Default("4").Int()
	cmd.showMetrics = stats.Flag("metrics", "Print decoder metrics after the report.").Bool()
	cmd.files = stats.Arg("file", "The .shp files to inspect.").Required().ExistingFiles()
}

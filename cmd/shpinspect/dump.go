// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"

	"github.com/gogama/shapefile"
	"github.com/gogama/shapefile/export"
	"github.com/gogama/shapefile/index"
)

// dumpCommand writes the decoded features of one shapefile.
type dumpCommand struct {
	g      *globals
	file   *string
	format *string
	bbox   *string
}

func (cmd *dumpCommand) run(c *kingpin.ParseContext) error {
	ctx := context.Background()
	in, err := cmd.g.load(*cmd.file)
	if err != nil {
		return err
	}
	opts := cmd.g.options(in)
	s, err := shapefile.DecodeWithOptions(in.shp, opts)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", in.name, err)
	}

	var records []shapefile.DecodedRecord
	var streamErr error
	if *cmd.bbox != "" {
		box, err := parseBox(*cmd.bbox)
		if err != nil {
			return err
		}
		var idx *index.Index
		idx, streamErr = index.Build(ctx, s)
		if records, err = selectBox(in.shp, idx, box, opts); err != nil {
			return err
		}
	} else {
		records, streamErr = s.All(ctx)
	}

	switch *cmd.format {
	case "wkt":
		for i := range records {
			text, err := export.WKT(records[i].Geometry)
			if err != nil {
				exitWithErr(err)
			}
			fmt.Printf("%d\t%s\n", records[i].RecordNumber, text)
		}
	default:
		fc, err := export.FeatureCollection(records)
		if err != nil {
			exitWithErr(err)
		}
		if err := json.NewEncoder(os.Stdout).Encode(fc); err != nil {
			exitWithErr(fmt.Errorf("failed to write GeoJSON: %w", err))
		}
	}

	fmt.Fprintf(os.Stderr, "%s: %s\n", in.name, s.Summary())
	if streamErr != nil {
		return fmt.Errorf("%s: %w", in.name, streamErr)
	}
	return nil
}

// selectBox re-reads the records of buf whose bounds intersect box.
// The stream that built idx has already counted and logged every
// record, so the re-read runs without metrics or logging.
func selectBox(buf []byte, idx *index.Index, box shapefile.Box, opts shapefile.Options) ([]shapefile.DecodedRecord, error) {
	opts.Metrics = nil
	opts.Logger = log.NewNopLogger()
	var records []shapefile.DecodedRecord
	for _, e := range idx.Search(box) {
		r, err := shapefile.DecodeRecordAt(buf, e.Offset, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read record %d: %w", e.RecordNumber, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// parseBox parses "xmin,ymin,xmax,ymax".
func parseBox(s string) (shapefile.Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return shapefile.Box{}, fmt.Errorf("bounding box %q: want xmin,ymin,xmax,ymax", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return shapefile.Box{}, fmt.Errorf("bounding box %q: %w", s, err)
		}
		v[i] = f
	}
	b := shapefile.Box{XMin: v[0], YMin: v[1], XMax: v[2], YMax: v[3]}
	if b.IsEmpty() {
		return shapefile.Box{}, fmt.Errorf("bounding box %q is inverted", s)
	}
	return b, nil
}

func addDumpCommand(app *kingpin.Application, g *globals) {
	cmd := &dumpCommand{g: g}
	dump := app.Command("dump", "Write the decoded features of a shapefile.").Action(cmd.run)
	cmd.format = dump.Flag("format", "Output format.").Default("geojson").Enum("geojson", "wkt")
	cmd.bbox = dump.Flag("bbox", "Only write features intersecting xmin,ymin,xmax,ymax.").String()
	cmd.file = dump.Arg("file", "The .shp file to dump.").Required().ExistingFile()
}

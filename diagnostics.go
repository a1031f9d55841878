// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DiagnosticKind classifies an advisory event raised while decoding.
// Diagnostics never stop a stream.
type DiagnosticKind int

const (
	// DiagRecordSkipped: a record failed a record-local check and was
	// skipped. Diagnostic.Err holds the *DecodeError.
	DiagRecordSkipped DiagnosticKind = iota + 1
	// DiagCoordinateRepaired: non-finite ordinates were replaced with
	// zero. Index is the first affected point, Count the number of
	// affected points.
	DiagCoordinateRepaired
	// DiagRingClosed: an unclosed polygon ring was closed by appending
	// its first vertex.
	DiagRingClosed
	// DiagRingDropped: a polygon ring had fewer than four vertices.
	DiagRingDropped
	// DiagPartDropped: a polyline part had fewer than two vertices.
	DiagPartDropped
	// DiagOrphanHole: a counter-clockwise ring appeared before any
	// clockwise ring and was promoted to an exterior.
	DiagOrphanHole
	// DiagShapeTypeMismatch: a record's shape type differs from the
	// file header's.
	DiagShapeTypeMismatch
	// DiagBoundingBoxIgnored: a record's stored bounding box was not
	// finite and was dropped in favour of the computed one.
	DiagBoundingBoxIgnored
	// DiagAttributeLookupFailed: the AttributeSource returned an error
	// for the record; default attributes were used.
	DiagAttributeLookupFailed
)

var diagnosticKindNames = map[DiagnosticKind]string{
	DiagRecordSkipped:         "record_skipped",
	DiagCoordinateRepaired:    "coordinate_repaired",
	DiagRingClosed:            "ring_closed",
	DiagRingDropped:           "ring_dropped",
	DiagPartDropped:           "part_dropped",
	DiagOrphanHole:            "orphan_hole",
	DiagShapeTypeMismatch:     "shape_type_mismatch",
	DiagBoundingBoxIgnored:    "bbox_ignored",
	DiagAttributeLookupFailed: "attribute_lookup_failed",
}

func (k DiagnosticKind) String() string {
	if s, ok := diagnosticKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// Diagnostic is one advisory event.
type Diagnostic struct {
	Kind DiagnosticKind
	// RecordNumber is the record the event belongs to.
	RecordNumber int32
	// Offset is the byte offset of the record header.
	Offset int
	// Index is the part, ring or point index the event refers to, or
	// -1 if it refers to the whole record.
	Index int
	// Count is the number of items affected, at least 1.
	Count int
	// Err is set for DiagRecordSkipped and DiagAttributeLookupFailed.
	Err error
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s record=%d offset=%d", d.Kind, d.RecordNumber, d.Offset)
	if d.Index >= 0 {
		s += fmt.Sprintf(" index=%d", d.Index)
	}
	if d.Count > 1 {
		s += fmt.Sprintf(" count=%d", d.Count)
	}
	if d.Err != nil {
		s += " err=" + d.Err.Error()
	}
	return s
}

// diagnostics collects the events of one decode pass and forwards them
// to the configured logger and metrics. A nil *diagnostics discards
// everything.
type diagnostics struct {
	logger  log.Logger
	metrics *Metrics
	list    []Diagnostic

	// Context of the record currently being decoded.
	recordNumber int32
	offset       int
}

func newDiagnostics(logger log.Logger, metrics *Metrics) *diagnostics {
	if logger == nil {
		textPanic("nil logger")
	}
	return &diagnostics{logger: logger, metrics: metrics}
}

func (d *diagnostics) at(recordNumber int32, offset int) {
	if d != nil {
		d.recordNumber = recordNumber
		d.offset = offset
	}
}

func (d *diagnostics) raise(kind DiagnosticKind, index, count int, err error) {
	if d == nil {
		return
	}
	if count < 1 {
		count = 1
	}
	diag := Diagnostic{
		Kind:         kind,
		RecordNumber: d.recordNumber,
		Offset:       d.offset,
		Index:        index,
		Count:        count,
		Err:          err,
	}
	d.list = append(d.list, diag)

	logAt := level.Debug
	if kind == DiagRecordSkipped || kind == DiagAttributeLookupFailed {
		logAt = level.Warn
	}
	kv := []interface{}{"msg", "shapefile diagnostic", "kind", kind, "record", diag.RecordNumber, "offset", diag.Offset}
	if index >= 0 {
		kv = append(kv, "index", index)
	}
	if count > 1 {
		kv = append(kv, "count", count)
	}
	if err != nil {
		kv = append(kv, "err", err)
	}
	_ = logAt(d.logger).Log(kv...)

	if kind == DiagRecordSkipped {
		if k, ok := KindOf(err); ok {
			d.metrics.recordSkipped(k)
		}
	} else {
		d.metrics.repaired(kind)
	}
}

func (d *diagnostics) reset() {
	if d != nil {
		d.list = nil
		d.recordNumber = 0
		d.offset = 0
	}
}

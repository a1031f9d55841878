// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"github.com/go-kit/log"
)

// AxisOrder selects whether decoded X and Y ordinates are emitted as
// stored or exchanged.
type AxisOrder int

const (
	// AxisOrderAsStored emits X and Y exactly as stored in the file.
	AxisOrderAsStored AxisOrder = iota
	// AxisOrderSwapped emits every coordinate and bounding box with X
	// and Y exchanged.
	AxisOrderSwapped
)

func (o AxisOrder) String() string {
	switch o {
	case AxisOrderAsStored:
		return "as-stored"
	case AxisOrderSwapped:
		return "swapped"
	default:
		return "AxisOrder(?)"
	}
}

// CoordinateSystemHint is an external classifier consulted once per
// stream, after the file header is parsed, to decide whether X and Y
// should be exchanged. A typical implementation inspects a companion
// projection file. A hint that returns true overrides
// AxisOrderAsStored.
type CoordinateSystemHint interface {
	SwapAxes(h FileHeader) bool
}

// CoordinateSystemHintFunc adapts a function to CoordinateSystemHint.
type CoordinateSystemHintFunc func(h FileHeader) bool

// SwapAxes calls f(h).
func (f CoordinateSystemHintFunc) SwapAxes(h FileHeader) bool {
	return f(h)
}

// Options configures a decode stream.
type Options struct {
	// MaxRecords stops the stream after this many records have been
	// attempted, whether they decoded or were skipped. Zero means no
	// limit.
	MaxRecords int

	// AxisOrder is the axis order policy. Default: AxisOrderAsStored.
	AxisOrder AxisOrder

	// CoordinateSystem, if not nil, may request an axis swap after
	// the header has been read.
	CoordinateSystem CoordinateSystemHint

	// Attributes, if not nil, supplies the attributes of each decoded
	// record. If nil every record gets {"recordNumber": n}.
	Attributes AttributeSource

	// Logger receives diagnostics. Default: log.NewNopLogger().
	Logger log.Logger

	// Metrics, if not nil, counts decoder outcomes.
	Metrics *Metrics

	// MaxContentLengthWords caps the declared content length of one
	// record. Default: DefaultMaxContentLengthWords.
	MaxContentLengthWords int32

	// MaxCount caps the part and point counts of one record. Default:
	// DefaultMaxCount.
	MaxCount int
}

// DefaultOptions returns options with defaults.
func DefaultOptions() Options {
	return Options{
		MaxRecords:            0,
		AxisOrder:             AxisOrderAsStored,
		Logger:                log.NewNopLogger(),
		MaxContentLengthWords: DefaultMaxContentLengthWords,
		MaxCount:              DefaultMaxCount,
	}
}

// withDefaults fills zero values with defaults and rejects settings
// that can never work.
func (o Options) withDefaults() (Options, error) {
	if o.MaxRecords < 0 {
		return o, fmtErr("negative MaxRecords %d", o.MaxRecords)
	}
	if o.MaxContentLengthWords < 0 {
		return o, fmtErr("negative MaxContentLengthWords %d", o.MaxContentLengthWords)
	}
	if o.MaxCount < 0 {
		return o, fmtErr("negative MaxCount %d", o.MaxCount)
	}
	if o.AxisOrder != AxisOrderAsStored && o.AxisOrder != AxisOrderSwapped {
		return o, fmtErr("unknown AxisOrder %d", int(o.AxisOrder))
	}
	if o.Logger == nil {
		o.Logger = log.NewNopLogger()
	}
	if o.MaxContentLengthWords == 0 {
		o.MaxContentLengthWords = DefaultMaxContentLengthWords
	}
	if o.MaxCount == 0 {
		o.MaxCount = DefaultMaxCount
	}
	return o, nil
}

// swapAxes resolves the axis order policy for header h.
func (o *Options) swapAxes(h FileHeader) bool {
	if o.AxisOrder == AxisOrderSwapped {
		return true
	}
	return o.CoordinateSystem != nil && o.CoordinateSystem.SwapAxes(h)
}

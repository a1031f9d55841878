// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every error the decoder can produce. An
// ErrorKind is itself an error, so callers can test a returned error
// with errors.Is, for example:
//
//	if errors.Is(err, shapefile.ErrBadFileCode) { ... }
type ErrorKind int

const (
	// ErrTruncatedHeader means the buffer is shorter than the 100
	// byte file header.
	ErrTruncatedHeader ErrorKind = iota + 1
	// ErrBadFileCode means the file code at offset 0 is not 9994.
	ErrBadFileCode
	// ErrBadFileLength means the declared file length is smaller than
	// the header or larger than the buffer.
	ErrBadFileLength
	// ErrUnsupportedVersion means the file version is not 1000.
	ErrUnsupportedVersion
	// ErrUnknownShapeType means the header's shape type code is not a
	// known shape type.
	ErrUnknownShapeType
	// ErrBadBoundingBox means the header's X/Y bounds are non-finite
	// or inverted.
	ErrBadBoundingBox
	// ErrTruncatedRecordHeader means fewer than 8 bytes remain where a
	// record header was expected.
	ErrTruncatedRecordHeader
	// ErrUnreasonableContentLength means a record header declares a
	// negative or implausibly large content length.
	ErrUnreasonableContentLength
	// ErrRecordBufferOverrun means a record's declared content runs
	// past the end of the buffer.
	ErrRecordBufferOverrun
	// ErrTruncatedGeometry means a record's content is too short for
	// the geometry it declares.
	ErrTruncatedGeometry
	// ErrUnreasonableCount means a part or point count is negative or
	// above the configured cap.
	ErrUnreasonableCount
	// ErrBadPartIndex means a part start index is out of range or
	// decreasing.
	ErrBadPartIndex
	// ErrEmptyGeometry means every part or ring of a record was
	// dropped.
	ErrEmptyGeometry
	// ErrUnsupportedShapeType means a record uses a shape type the
	// decoder does not produce, such as MultiPatch.
	ErrUnsupportedShapeType
)

var errorKindNames = map[ErrorKind]string{
	ErrTruncatedHeader:           "truncated header",
	ErrBadFileCode:               "bad file code",
	ErrBadFileLength:             "bad file length",
	ErrUnsupportedVersion:        "unsupported version",
	ErrUnknownShapeType:          "unknown shape type",
	ErrBadBoundingBox:            "bad bounding box",
	ErrTruncatedRecordHeader:     "truncated record header",
	ErrUnreasonableContentLength: "unreasonable content length",
	ErrRecordBufferOverrun:       "record buffer overrun",
	ErrTruncatedGeometry:         "truncated geometry",
	ErrUnreasonableCount:         "unreasonable count",
	ErrBadPartIndex:              "bad part index",
	ErrEmptyGeometry:             "empty geometry",
	ErrUnsupportedShapeType:      "unsupported shape type",
}

// String returns a short human readable name for the kind.
func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error implements the error interface.
func (k ErrorKind) Error() string {
	return packageName + k.String()
}

// Fatal reports whether an error of this kind ends a decode stream.
// Fatal kinds leave the record cursor untrustworthy; all other kinds
// are local to one record, which is skipped.
func (k ErrorKind) Fatal() bool {
	switch k {
	case ErrTruncatedHeader, ErrBadFileCode, ErrBadFileLength,
		ErrUnsupportedVersion, ErrUnknownShapeType, ErrBadBoundingBox,
		ErrTruncatedRecordHeader, ErrUnreasonableContentLength,
		ErrRecordBufferOverrun:
		return true
	default:
		return false
	}
}

// DecodeError is the concrete error type returned by the decoder. It
// carries enough context to report which record failed and why.
type DecodeError struct {
	// Kind classifies the error.
	Kind ErrorKind
	// RecordNumber is the record number as stored in the record
	// header, or zero if the error is not tied to a record.
	RecordNumber int32
	// Offset is the byte offset in the buffer at which the problem
	// was detected.
	Offset int
	// Msg is optional detail.
	Msg string
	// Err is an optional underlying cause.
	Err error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString(packageName)
	b.WriteString(e.Kind.String())
	if e.RecordNumber != 0 {
		fmt.Fprintf(&b, " (record %d, offset %d)", e.RecordNumber, e.Offset)
	} else {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a DecodeError against its ErrorKind.
func (e *DecodeError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// KindOf extracts the ErrorKind from err, if err is or wraps a
// DecodeError or an ErrorKind.
func KindOf(err error) (ErrorKind, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	var k ErrorKind
	if errors.As(err, &k) {
		return k, true
	}
	return 0, false
}

func decodeErr(kind ErrorKind, offset int, format string, a ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, a...)}
}

const packageName = "shapefile: "

func textErr(text string) error {
	return errors.New(packageName + text)
}

func fmtErr(format string, a ...interface{}) error {
	return fmt.Errorf(packageName+format, a...)
}

func wrapErr(text string, err error, a ...interface{}) error {
	return fmt.Errorf(packageName+text+": %w", append(a, err)...)
}

func textPanic(text string) {
	panic(packageName + text)
}

func fmtPanic(format string, a ...interface{}) {
	panic(fmt.Sprintf(packageName+format, a...))
}

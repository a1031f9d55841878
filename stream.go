// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"context"

	"github.com/go-kit/log/level"
)

// SkippedRecord identifies a record that failed a record-local check.
type SkippedRecord struct {
	RecordNumber int32
	// Offset is the byte offset of the record header.
	Offset int
	// Err is the *DecodeError describing why the record was skipped.
	Err error
}

// Summary tallies the outcome of a stream so far.
type Summary struct {
	// Attempted counts records whose header was read, whether they
	// decoded or were skipped.
	Attempted int
	Decoded   int
	Skipped   int
	// SkippedByKind breaks Skipped down by error kind.
	SkippedByKind map[ErrorKind]int
}

// Stream is a pull-based, restartable sequence of the records in one
// shapefile buffer. It is not safe for concurrent use, but streams over
// different buffers, or over the same read-only buffer, are fully
// independent.
//
// Use it like bufio.Scanner:
//
//	s, err := shapefile.Decode(buf)
//	if err != nil {
//		return err
//	}
//	for s.Next(ctx) {
//		r := s.Record()
//		...
//	}
//	if err := s.Err(); err != nil {
//		return err
//	}
type Stream struct {
	stateful
	rr      recordReader
	opts    Options
	cursor  int
	record  DecodedRecord
	summary Summary
	skipped []SkippedRecord
}

// Decode parses the file header of buf and returns a Stream over its
// records using DefaultOptions. The buffer is not copied and must not
// be modified while the stream is in use.
func Decode(buf []byte) (*Stream, error) {
	return DecodeWithOptions(buf, DefaultOptions())
}

// DecodeWithOptions is like Decode but with caller supplied options.
// It returns an error if the options are invalid or the file header
// fails validation; header errors are *DecodeError values.
func DecodeWithOptions(buf []byte, opts Options) (*Stream, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	rr, err := newRecordReader(buf, opts)
	if err != nil {
		if k, ok := KindOf(err); ok {
			opts.Metrics.streamFailed(k)
		}
		_ = level.Debug(opts.Logger).Log("msg", "shapefile header rejected", "err", err)
		return nil, err
	}

	s := &Stream{
		rr:   rr,
		opts: opts,
	}
	s.Rewind()
	return s, nil
}

// Header returns the parsed file header.
func (s *Stream) Header() FileHeader {
	return s.rr.header
}

// Next advances to the next decodable record, skipping records that
// fail record-local checks. It returns false at the end of the records,
// once MaxRecords records have been attempted, when ctx is done, or on
// a fatal error. Check Err after Next returns false.
//
// The context is checked once per record.
func (s *Stream) Next(ctx context.Context) bool {
	s.record = DecodedRecord{}
	if s.state != inRecords {
		return false
	}

	for {
		if err := ctx.Err(); err != nil {
			s.fail(err)
			return false
		}
		if s.cursor >= int(s.rr.header.FileLength) ||
			(s.opts.MaxRecords > 0 && s.summary.Attempted >= s.opts.MaxRecords) {
			s.toState(inRecords, eof)
			return false
		}

		rec, next, err := s.rr.read(s.cursor)
		if err != nil {
			if k, ok := KindOf(err); !ok || k.Fatal() {
				s.fail(err)
				return false
			}
		}
		s.summary.Attempted++
		offset := s.cursor
		s.cursor = next
		if err != nil {
			s.skip(offset, err)
			continue
		}

		s.summary.Decoded++
		s.opts.Metrics.recordDecoded()
		s.record = rec
		return true
	}
}

// Record returns the record produced by the most recent successful
// call to Next.
func (s *Stream) Record() DecodedRecord {
	return s.record
}

// Err returns the error that ended the stream, or nil if the stream is
// still going or reached the end normally. Skipped records are not
// errors; see Skipped.
func (s *Stream) Err() error {
	return s.err
}

// Skipped returns the records skipped so far.
func (s *Stream) Skipped() []SkippedRecord {
	return append([]SkippedRecord(nil), s.skipped...)
}

// Diagnostics returns the diagnostics raised so far, including one
// DiagRecordSkipped per skipped record.
func (s *Stream) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), s.rr.diags.list...)
}

// Summary returns the counts so far.
func (s *Stream) Summary() Summary {
	sum := s.summary
	sum.SkippedByKind = make(map[ErrorKind]int, len(s.summary.SkippedByKind))
	for k, n := range s.summary.SkippedByKind {
		sum.SkippedByKind[k] = n
	}
	return sum
}

// Rewind restarts the stream from the first record, discarding any
// error, summary, skip list and diagnostics. A rewound stream yields
// the same records as a fresh one.
func (s *Stream) Rewind() {
	s.reset(inRecords)
	s.cursor = HeaderLen
	s.record = DecodedRecord{}
	s.summary = Summary{SkippedByKind: make(map[ErrorKind]int)}
	s.skipped = nil
	s.rr.diags.reset()
}

// All drains the rest of the stream. It returns the records decoded
// along with the error, if any, that ended the stream.
func (s *Stream) All(ctx context.Context) ([]DecodedRecord, error) {
	var records []DecodedRecord
	for s.Next(ctx) {
		records = append(records, s.Record())
	}
	return records, s.Err()
}

func (s *Stream) skip(offset int, err error) {
	var n int32
	if de, ok := err.(*DecodeError); ok {
		n = de.RecordNumber
	}
	k, _ := KindOf(err)
	s.summary.Skipped++
	s.summary.SkippedByKind[k]++
	s.skipped = append(s.skipped, SkippedRecord{RecordNumber: n, Offset: offset, Err: err})
	s.rr.diags.at(n, offset)
	s.rr.diags.raise(DiagRecordSkipped, -1, 1, err)
}

func (s *Stream) fail(err error) {
	_ = s.toErr(err)
	if k, ok := KindOf(err); ok {
		s.opts.Metrics.streamFailed(k)
	}
	_ = level.Debug(s.opts.Logger).Log("msg", "shapefile stream ended", "offset", s.cursor, "err", err)
}

// DecodeRecordAt decodes the single record whose header starts at
// offset, for example an offset taken from a DecodedRecord or from a
// companion index file. The file header is parsed to apply the axis
// order policy. Unlike a Stream, a record-local failure is returned as
// the error.
func DecodeRecordAt(buf []byte, offset int, opts Options) (DecodedRecord, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return DecodedRecord{}, err
	}
	rr, err := newRecordReader(buf, opts)
	if err != nil {
		return DecodedRecord{}, err
	}
	if offset < HeaderLen || offset >= int(rr.header.FileLength) {
		return DecodedRecord{}, fmtErr("record offset %d outside [%d, %d)", offset, HeaderLen, rr.header.FileLength)
	}
	rec, _, err := rr.read(offset)
	return rec, err
}

// recordReader decodes one record at a time. It holds everything a
// record decode needs except the stream position.
type recordReader struct {
	buf      []byte
	header   FileHeader
	maxWords int32
	geom     geometryDecoder
	diags    *diagnostics
	attrs    AttributeSource
	swap     bool
}

func newRecordReader(buf []byte, opts Options) (recordReader, error) {
	h, err := ParseHeader(buf)
	if err != nil {
		return recordReader{}, err
	}
	diags := newDiagnostics(opts.Logger, opts.Metrics)
	return recordReader{
		buf:      buf,
		header:   h,
		maxWords: opts.MaxContentLengthWords,
		geom:     geometryDecoder{maxCount: opts.MaxCount, diags: diags},
		diags:    diags,
		attrs:    opts.Attributes,
		swap:     opts.swapAxes(h),
	}, nil
}

// read decodes the record whose header is at offset. It returns the
// offset of the following record header whenever the record header
// itself is sound, even if the record is skipped. A fatal error leaves
// next meaningless.
func (r *recordReader) read(offset int) (rec DecodedRecord, next int, err error) {
	rh, contentOff, err := readRecordHeader(r.buf, offset, r.maxWords)
	if err != nil {
		return DecodedRecord{}, offset, err
	}
	end := int64(contentOff) + int64(rh.ContentLength())
	if end > int64(len(r.buf)) {
		de := decodeErr(ErrRecordBufferOverrun, offset, "content of %d bytes ends at %d, buffer has %d", rh.ContentLength(), end, len(r.buf))
		de.RecordNumber = rh.Number
		return DecodedRecord{}, offset, de
	}
	next = int(end)
	r.diags.at(rh.Number, offset)

	c := newCursor(r.buf[:end], contentOff, 0)
	t := ShapeType(c.int32LE())
	if c.short {
		de := decodeErr(ErrTruncatedGeometry, contentOff, "content of %d bytes has no shape type", rh.ContentLength())
		de.RecordNumber = rh.Number
		return DecodedRecord{}, next, de
	}
	if t != ShapeNull && t != r.header.ShapeType && t.Valid() {
		r.diags.raise(DiagShapeTypeMismatch, -1, 1, fmtErr("record is %s, file is %s", t, r.header.ShapeType))
	}

	g, err := r.geom.decode(r.buf[:end], c.offset(), t)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.RecordNumber = rh.Number
		}
		return DecodedRecord{}, next, err
	}
	if r.swap && g != nil {
		g.swapXY()
	}

	rec = assemble(r.attrs, r.diags, rh.Number, t, g)
	rec.Offset = offset
	return rec, next, nil
}

// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

// RecordHeader is the 8 byte big-endian header in front of every
// record's content.
type RecordHeader struct {
	// Number is the 1-based record number as stored. It is not
	// checked against the record's position.
	Number int32
	// ContentLengthWords is the content length in 16-bit words.
	ContentLengthWords int32
}

// ContentLength returns the content length in bytes.
func (h RecordHeader) ContentLength() int {
	return int(h.ContentLengthWords) * 2
}

// ReadRecordHeader decodes the record header at offset and returns it
// together with the offset of the record's shape type field, which is
// where the record content starts. Content lengths above
// DefaultMaxContentLengthWords are rejected.
func ReadRecordHeader(buf []byte, offset int) (RecordHeader, int, error) {
	return readRecordHeader(buf, offset, DefaultMaxContentLengthWords)
}

func readRecordHeader(buf []byte, offset int, maxWords int32) (RecordHeader, int, error) {
	if offset < 0 || int64(offset)+RecordHeaderLen > int64(len(buf)) {
		return RecordHeader{}, offset, decodeErr(ErrTruncatedRecordHeader, offset,
			"need %d bytes, have %d", RecordHeaderLen, len(buf)-offset)
	}

	c := newCursor(buf, offset, 0)
	h := RecordHeader{
		Number:             c.int32BE(),
		ContentLengthWords: c.int32BE(),
	}
	if h.ContentLengthWords < 0 || h.ContentLengthWords > maxWords {
		err := decodeErr(ErrUnreasonableContentLength, offset+4,
			"%d words (limit %d)", h.ContentLengthWords, maxWords)
		err.RecordNumber = h.Number
		return h, offset, err
	}

	return h, c.offset(), nil
}

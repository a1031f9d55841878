// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"encoding/binary"
)

const (
	// HeaderLen is the length of the fixed shapefile main file header
	// in bytes.
	HeaderLen = 100
	// RecordHeaderLen is the length of each record header in bytes.
	RecordHeaderLen = 8
	// FileCode is the magic number stored big-endian at offset 0.
	FileCode = 9994
	// Version is the only file version this package reads.
	Version = 1000
	// DefaultMaxContentLengthWords is an artificial limit, not imposed
	// by the shapefile format, on the content length of one record in
	// 16-bit words (about 20MB). It stops corrupted length fields from
	// causing huge and pointless memory allocations.
	DefaultMaxContentLengthWords = 10_000_000
	// DefaultMaxCount is an artificial limit on the number of parts or
	// points a single record may declare.
	DefaultMaxCount = 1_000_000
)

// Byte offsets of the main file header fields.
const (
	offFileCode   = 0
	offFileLength = 24
	offVersion    = 28
	offShapeType  = 32
	offBBox       = 36
)

// Magic reports whether buf starts with the shapefile file code. It
// can be used to test whether any buffer seems to be a shapefile main
// file, but it does not validate anything beyond the first four bytes.
func Magic(buf []byte) bool {
	return len(buf) >= 4 && int32(binary.BigEndian.Uint32(buf[offFileCode:])) == FileCode
}

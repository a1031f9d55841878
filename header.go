// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"fmt"
	"strings"
)

// BBox is the file level bounding box from the main file header. The
// Z and M ranges are frequently left as sentinel values by writers, so
// they are kept as read and reported through HasZ and HasM.
type BBox struct {
	Box
	ZMin float64
	ZMax float64
	MMin float64
	MMax float64
}

// HasZ reports whether the Z range is present, i.e. both bounds are
// finite.
func (b BBox) HasZ() bool {
	return isFinite(b.ZMin) && isFinite(b.ZMax)
}

// HasM reports whether the M range is present.
func (b BBox) HasM() bool {
	return isFinite(b.MMin) && isFinite(b.MMax)
}

// FileHeader is the decoded 100 byte main file header.
type FileHeader struct {
	// FileCode is always FileCode in a successfully parsed header.
	FileCode int32
	// FileLength is the declared total file length in bytes. On disk
	// it is stored as a count of 16-bit words.
	FileLength uint32
	// Version is always Version in a successfully parsed header.
	Version int32
	// ShapeType is the shape type declared for the whole file.
	ShapeType ShapeType
	// BBox is the declared extent of all shapes in the file.
	BBox BBox
}

func (h FileHeader) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FileHeader{ShapeType:%s,FileLength:%d,Bounds:%s", h.ShapeType, h.FileLength, h.BBox.Box)
	if h.BBox.HasZ() {
		fmt.Fprintf(&b, ",Z:[%g,%g]", h.BBox.ZMin, h.BBox.ZMax)
	}
	if h.BBox.HasM() {
		fmt.Fprintf(&b, ",M:[%g,%g]", h.BBox.MMin, h.BBox.MMax)
	}
	b.WriteByte('}')
	return b.String()
}

// ParseHeader decodes and validates the main file header from the
// first 100 bytes of buf. It has no side effects.
//
// File code and file length are big-endian; everything from the
// version onward is little-endian.
func ParseHeader(buf []byte) (FileHeader, error) {
	if len(buf) < HeaderLen {
		return FileHeader{}, decodeErr(ErrTruncatedHeader, 0, "need %d bytes, have %d", HeaderLen, len(buf))
	}

	var h FileHeader

	c := newCursor(buf[:HeaderLen], offFileCode, 0)
	h.FileCode = c.int32BE()
	if h.FileCode != FileCode {
		return FileHeader{}, decodeErr(ErrBadFileCode, offFileCode, "got %d, want %d", h.FileCode, FileCode)
	}

	c.pos = offFileLength
	words := c.int32BE()
	byteLen := int64(words) * 2
	if byteLen < HeaderLen || byteLen > int64(len(buf)) {
		return FileHeader{}, decodeErr(ErrBadFileLength, offFileLength,
			"declared %d bytes (%d words), buffer has %d", byteLen, words, len(buf))
	}
	h.FileLength = uint32(byteLen)

	h.Version = c.int32LE()
	if h.Version != Version {
		return FileHeader{}, decodeErr(ErrUnsupportedVersion, offVersion, "got %d, want %d", h.Version, Version)
	}

	h.ShapeType = ShapeType(c.int32LE())
	if !h.ShapeType.Valid() {
		return FileHeader{}, decodeErr(ErrUnknownShapeType, offShapeType, "code %d", int32(h.ShapeType))
	}

	h.BBox.Box = c.box()
	h.BBox.ZMin = c.float64LE()
	h.BBox.ZMax = c.float64LE()
	h.BBox.MMin = c.float64LE()
	h.BBox.MMax = c.float64LE()
	if c.short {
		fmtPanic("logic error: header cursor overran %d bytes", HeaderLen)
	}
	if !h.BBox.Finite() {
		return FileHeader{}, decodeErr(ErrBadBoundingBox, offBBox, "non-finite bounds %s", h.BBox.Box)
	}
	if h.BBox.XMin > h.BBox.XMax || h.BBox.YMin > h.BBox.YMax {
		return FileHeader{}, decodeErr(ErrBadBoundingBox, offBBox, "inverted bounds %s", h.BBox.Box)
	}

	return h, nil
}

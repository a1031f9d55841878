// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"encoding/binary"

	flatbuffers "github.com/google/flatbuffers/go"
)

// cursor is a bounds-checked reader over a byte slice. Reads past the
// end of the slice do not panic: they return zero and latch a
// truncation error which the caller checks once after a block of
// reads, in the style of bufio.Scanner.
type cursor struct {
	b   []byte
	pos int
	// base is the absolute buffer offset of b[0], used only to report
	// error offsets.
	base int
	// short is set once any read ran past the end of b.
	short bool
}

func newCursor(b []byte, pos, base int) *cursor {
	return &cursor{b: b, pos: pos, base: base}
}

// remaining returns the number of unread bytes.
func (c *cursor) remaining() int {
	return len(c.b) - c.pos
}

// has reports whether at least n more bytes can be read. It guards
// against negative and overflowing sizes computed from untrusted
// counts.
func (c *cursor) has(n int64) bool {
	return n >= 0 && n <= int64(c.remaining())
}

// offset returns the absolute buffer offset of the read position.
func (c *cursor) offset() int {
	return c.base + c.pos
}

func (c *cursor) take(n int) []byte {
	if c.short || n > c.remaining() {
		c.short = true
		return nil
	}
	p := c.b[c.pos : c.pos+n]
	c.pos += n
	return p
}

func (c *cursor) skip(n int) {
	_ = c.take(n)
}

func (c *cursor) int32LE() int32 {
	p := c.take(flatbuffers.SizeInt32)
	if p == nil {
		return 0
	}
	return flatbuffers.GetInt32(p)
}

func (c *cursor) int32BE() int32 {
	p := c.take(4)
	if p == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(p))
}

func (c *cursor) float64LE() float64 {
	p := c.take(flatbuffers.SizeFloat64)
	if p == nil {
		return 0
	}
	return flatbuffers.GetFloat64(p)
}

// box reads four little-endian doubles in XMin, YMin, XMax, YMax
// order.
func (c *cursor) box() Box {
	return Box{
		XMin: c.float64LE(),
		YMin: c.float64LE(),
		XMax: c.float64LE(),
		YMax: c.float64LE(),
	}
}

// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package dbf reads the xBase attribute table that accompanies a
// shapefile. A Table works over a fully resident .dbf buffer and
// implements shapefile.AttributeSource.
//
// Record n of the table holds the attributes of shape record n; both
// are numbered from 1.
package dbf

import (
	"strconv"
	"strings"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	headerLen      = 32
	fieldDescLen   = 32
	fieldNameLen   = 11
	fieldTerm      = 0x0d
	deletedFlag    = '*'
	offNumRecords  = 4
	offHeaderLen   = 8
	offRecordLen   = 10
	offLangDriver  = 29
	offFieldType   = 11
	offFieldLength = 16
	offFieldDec    = 17
)

// ErrDeleted is returned for records flagged as deleted.
var ErrDeleted = textErr("record deleted")

// FieldType is the single character xBase field type code.
type FieldType byte

const (
	Character FieldType = 'C'
	Numeric   FieldType = 'N'
	Float     FieldType = 'F'
	Logical   FieldType = 'L'
	Date      FieldType = 'D'
	Integer   FieldType = 'I'
)

func (t FieldType) String() string {
	return string(rune(t))
}

// Header is the fixed 32 byte table header.
type Header struct {
	Version        byte
	LastUpdate     time.Time
	NumRecords     uint32
	HeaderLen      uint16
	RecordLen      uint16
	LanguageDriver byte
}

// Field describes one column.
type Field struct {
	Name     string
	Type     FieldType
	Length   int
	Decimals int
	// offset is the field's byte offset within a record, counting the
	// deletion flag.
	offset int
}

// Table is a parsed attribute table. It is not safe for concurrent
// use because the character set decoder is stateful.
type Table struct {
	buf     []byte
	header  Header
	fields  []Field
	decoder *encoding.Decoder
}

// Parse parses the header and field descriptors of buf. Character
// fields are decoded using the code page named by the language driver
// byte; tables with no or an unknown language driver are read as
// UTF-8.
func Parse(buf []byte) (*Table, error) {
	if len(buf) < headerLen {
		return nil, fmtErr("need %d header bytes, have %d", headerLen, len(buf))
	}
	return ParseWithEncoding(buf, codePage(buf[offLangDriver]))
}

// ParseWithEncoding is like Parse but decodes Character fields with
// enc, ignoring the language driver byte. A nil enc means UTF-8.
func ParseWithEncoding(buf []byte, enc encoding.Encoding) (*Table, error) {
	if len(buf) < headerLen {
		return nil, fmtErr("need %d header bytes, have %d", headerLen, len(buf))
	}

	h := Header{
		Version:        buf[0],
		LastUpdate:     time.Date(1900+int(buf[1]), time.Month(buf[2]), int(buf[3]), 0, 0, 0, 0, time.UTC),
		NumRecords:     flatbuffers.GetUint32(buf[offNumRecords:]),
		HeaderLen:      flatbuffers.GetUint16(buf[offHeaderLen:]),
		RecordLen:      flatbuffers.GetUint16(buf[offRecordLen:]),
		LanguageDriver: buf[offLangDriver],
	}
	if int(h.HeaderLen) < headerLen+1 || int(h.HeaderLen) > len(buf) {
		return nil, fmtErr("header length %d outside [%d, %d]", h.HeaderLen, headerLen+1, len(buf))
	}
	if h.RecordLen == 0 {
		return nil, textErr("zero record length")
	}

	t := &Table{buf: buf, header: h}
	if enc != nil {
		t.decoder = enc.NewDecoder()
	}

	offset := 1
	for pos := headerLen; pos+fieldDescLen <= int(h.HeaderLen) && buf[pos] != fieldTerm; pos += fieldDescLen {
		desc := buf[pos : pos+fieldDescLen]
		f := Field{
			Name:     fieldName(desc[:fieldNameLen]),
			Type:     FieldType(desc[offFieldType]),
			Length:   int(desc[offFieldLength]),
			Decimals: int(desc[offFieldDec]),
			offset:   offset,
		}
		if f.Type == Character && f.Decimals > 0 {
			// Some writers store long character lengths in two bytes.
			f.Length |= f.Decimals << 8
			f.Decimals = 0
		}
		offset += f.Length
		t.fields = append(t.fields, f)
	}
	if offset > int(h.RecordLen) {
		return nil, fmtErr("fields need %d bytes per record, record length is %d", offset, h.RecordLen)
	}

	return t, nil
}

func fieldName(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimSpace(string(b))
}

// codePage maps an xBase language driver id to a character set. It
// returns nil, meaning UTF-8, for zero and unrecognized ids.
func codePage(ldid byte) encoding.Encoding {
	switch ldid {
	case 0x01:
		return charmap.CodePage437
	case 0x02:
		return charmap.CodePage850
	case 0x03, 0x57:
		return charmap.Windows1252
	case 0x26, 0x65:
		return charmap.CodePage866
	case 0x64:
		return charmap.CodePage852
	case 0x66:
		return charmap.CodePage865
	case 0x7d:
		return charmap.Windows1255
	case 0x7e:
		return charmap.Windows1256
	case 0xc8:
		return charmap.Windows1250
	case 0xc9:
		return charmap.Windows1251
	case 0xca:
		return charmap.Windows1254
	case 0xcb:
		return charmap.Windows1253
	default:
		return nil
	}
}

// Header returns the table header.
func (t *Table) Header() Header {
	return t.header
}

// Fields returns the column descriptors in table order.
func (t *Table) Fields() []Field {
	return append([]Field(nil), t.fields...)
}

// NumRecords returns the number of records the buffer actually holds,
// which may be fewer than the header declares if the file is
// truncated.
func (t *Table) NumRecords() int {
	avail := (len(t.buf) - int(t.header.HeaderLen)) / int(t.header.RecordLen)
	if declared := int(t.header.NumRecords); declared < avail {
		return declared
	}
	return avail
}

// Record returns the values of the 1-based record n keyed by field
// name. Blank numeric, logical and date fields map to nil.
func (t *Table) Record(n int) (map[string]interface{}, error) {
	if n < 1 || n > t.NumRecords() {
		return nil, fmtErr("record %d outside [1, %d]", n, t.NumRecords())
	}
	start := int(t.header.HeaderLen) + (n-1)*int(t.header.RecordLen)
	raw := t.buf[start : start+int(t.header.RecordLen)]
	if raw[0] == deletedFlag {
		return nil, ErrDeleted
	}

	values := make(map[string]interface{}, len(t.fields))
	for i := range t.fields {
		f := &t.fields[i]
		v, err := t.value(f, raw[f.offset:f.offset+f.Length])
		if err != nil {
			return nil, wrapErr("record %d field %q", err, n, f.Name)
		}
		values[f.Name] = v
	}
	return values, nil
}

// Attributes implements shapefile.AttributeSource.
func (t *Table) Attributes(recordNumber int32) (map[string]interface{}, error) {
	return t.Record(int(recordNumber))
}

func (t *Table) value(f *Field, raw []byte) (interface{}, error) {
	switch f.Type {
	case Integer:
		if len(raw) != 4 {
			return nil, fmtErr("integer field has length %d", len(raw))
		}
		return flatbuffers.GetInt32(raw), nil
	case Character:
		s, err := t.text(raw)
		if err != nil {
			return nil, err
		}
		return strings.TrimRight(s, " \x00"), nil
	}

	s := strings.TrimSpace(strings.Trim(string(raw), "\x00"))
	switch f.Type {
	case Numeric, Float:
		if strings.Trim(s, "*") == "" {
			return nil, nil
		}
		if f.Type == Numeric && f.Decimals == 0 {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i, nil
			}
		}
		return strconv.ParseFloat(s, 64)
	case Logical:
		switch s {
		case "T", "t", "Y", "y":
			return true, nil
		case "F", "f", "N", "n":
			return false, nil
		case "", "?":
			return nil, nil
		default:
			return nil, fmtErr("invalid logical value %q", s)
		}
	case Date:
		if s == "" || strings.Trim(s, "0") == "" {
			return nil, nil
		}
		return time.Parse("20060102", s)
	default:
		return t.text([]byte(s))
	}
}

func (t *Table) text(raw []byte) (string, error) {
	if t.decoder == nil {
		return string(raw), nil
	}
	b, err := t.decoder.Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

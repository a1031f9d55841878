// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

// RecordNumberKey is the attribute key under which the record number
// is stored when no AttributeSource is configured.
const RecordNumberKey = "recordNumber"

// AttributeSource supplies the attributes of a record, typically from
// the companion .dbf file. Implementations must be safe to call from
// the goroutine running the stream. See package dbf.
type AttributeSource interface {
	Attributes(recordNumber int32) (map[string]interface{}, error)
}

// DecodedRecord is the unit a Stream emits.
type DecodedRecord struct {
	// RecordNumber is the record number as stored.
	RecordNumber int32
	// ShapeType is the record's own shape type.
	ShapeType ShapeType
	// Geometry is nil if and only if ShapeType is ShapeNull.
	Geometry Geometry
	// Attributes are the record's raw attributes.
	Attributes map[string]interface{}
	// Offset is the byte offset of the record header. It can be passed
	// to DecodeRecordAt.
	Offset int
}

// Assemble builds a DecodedRecord. If attrs is nil the attributes
// default to {RecordNumberKey: recordNumber}. Assemble does not
// validate its arguments.
func Assemble(recordNumber int32, t ShapeType, g Geometry, attrs map[string]interface{}) DecodedRecord {
	if attrs == nil {
		attrs = map[string]interface{}{RecordNumberKey: recordNumber}
	}
	return DecodedRecord{
		RecordNumber: recordNumber,
		ShapeType:    t,
		Geometry:     g,
		Attributes:   attrs,
	}
}

// assemble looks up attributes in src, falling back to the defaults
// with a diagnostic if the lookup fails.
func assemble(src AttributeSource, diags *diagnostics, recordNumber int32, t ShapeType, g Geometry) DecodedRecord {
	var attrs map[string]interface{}
	if src != nil {
		var err error
		attrs, err = src.Attributes(recordNumber)
		if err != nil {
			diags.raise(DiagAttributeLookupFailed, -1, 1, wrapErr("attributes for record %d", err, recordNumber))
			attrs = nil
		}
	}
	return Assemble(recordNumber, t, g, attrs)
}

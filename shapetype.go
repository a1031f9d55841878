// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import "strconv"

// ShapeType is the shape type code stored in the file header and at
// the start of every record.
type ShapeType int32

const (
	ShapeNull        ShapeType = 0
	ShapePoint       ShapeType = 1
	ShapePolyLine    ShapeType = 3
	ShapePolygon     ShapeType = 5
	ShapeMultiPoint  ShapeType = 8
	ShapePointZ      ShapeType = 11
	ShapePolyLineZ   ShapeType = 13
	ShapePolygonZ    ShapeType = 15
	ShapeMultiPointZ ShapeType = 18
	ShapePointM      ShapeType = 21
	ShapePolyLineM   ShapeType = 23
	ShapePolygonM    ShapeType = 25
	ShapeMultiPointM ShapeType = 28
	ShapeMultiPatch  ShapeType = 31
)

// Family is the base geometry family of a ShapeType, with the Z and M
// modifiers stripped.
type Family int

const (
	FamilyNull Family = iota
	FamilyPoint
	FamilyPolyLine
	FamilyPolygon
	FamilyMultiPoint
	FamilyMultiPatch
)

var familyNames = [...]string{"Null", "Point", "PolyLine", "Polygon", "MultiPoint", "MultiPatch"}

func (f Family) String() string {
	if f >= 0 && int(f) < len(familyNames) {
		return familyNames[f]
	}
	return "Family(" + strconv.Itoa(int(f)) + ")"
}

type shapeTypeInfo struct {
	name   string
	family Family
	z, m   bool
}

var shapeTypes = map[ShapeType]shapeTypeInfo{
	ShapeNull:        {"Null", FamilyNull, false, false},
	ShapePoint:       {"Point", FamilyPoint, false, false},
	ShapePolyLine:    {"PolyLine", FamilyPolyLine, false, false},
	ShapePolygon:     {"Polygon", FamilyPolygon, false, false},
	ShapeMultiPoint:  {"MultiPoint", FamilyMultiPoint, false, false},
	ShapePointZ:      {"PointZ", FamilyPoint, true, true},
	ShapePolyLineZ:   {"PolyLineZ", FamilyPolyLine, true, true},
	ShapePolygonZ:    {"PolygonZ", FamilyPolygon, true, true},
	ShapeMultiPointZ: {"MultiPointZ", FamilyMultiPoint, true, true},
	ShapePointM:      {"PointM", FamilyPoint, false, true},
	ShapePolyLineM:   {"PolyLineM", FamilyPolyLine, false, true},
	ShapePolygonM:    {"PolygonM", FamilyPolygon, false, true},
	ShapeMultiPointM: {"MultiPointM", FamilyMultiPoint, false, true},
	ShapeMultiPatch:  {"MultiPatch", FamilyMultiPatch, true, true},
}

// Valid reports whether t is one of the known shape types.
func (t ShapeType) Valid() bool {
	_, ok := shapeTypes[t]
	return ok
}

// Family returns the base family of t. It panics if t is not valid.
func (t ShapeType) Family() Family {
	info, ok := shapeTypes[t]
	if !ok {
		fmtPanic("invalid shape type %d", int32(t))
	}
	return info.family
}

// HasZ reports whether records of type t carry a Z block. MultiPatch
// is reported as having Z even though it is never decoded.
func (t ShapeType) HasZ() bool {
	return shapeTypes[t].z
}

// HasM reports whether records of type t may carry an optional M
// block. All Z types may carry M values.
func (t ShapeType) HasM() bool {
	return shapeTypes[t].m
}

func (t ShapeType) String() string {
	if info, ok := shapeTypes[t]; ok {
		return info.name
	}
	return "ShapeType(" + strconv.Itoa(int(t)) + ")"
}

// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeType(t *testing.T) {
	testCases := []struct {
		input  ShapeType
		name   string
		family Family
		z, m   bool
	}{
		{ShapeNull, "Null", FamilyNull, false, false},
		{ShapePoint, "Point", FamilyPoint, false, false},
		{ShapePolyLine, "PolyLine", FamilyPolyLine, false, false},
		{ShapePolygon, "Polygon", FamilyPolygon, false, false},
		{ShapeMultiPoint, "MultiPoint", FamilyMultiPoint, false, false},
		{ShapePointZ, "PointZ", FamilyPoint, true, true},
		{ShapePolyLineZ, "PolyLineZ", FamilyPolyLine, true, true},
		{ShapePolygonZ, "PolygonZ", FamilyPolygon, true, true},
		{ShapeMultiPointZ, "MultiPointZ", FamilyMultiPoint, true, true},
		{ShapePointM, "PointM", FamilyPoint, false, true},
		{ShapePolyLineM, "PolyLineM", FamilyPolyLine, false, true},
		{ShapePolygonM, "PolygonM", FamilyPolygon, false, true},
		{ShapeMultiPointM, "MultiPointM", FamilyMultiPoint, false, true},
		{ShapeMultiPatch, "MultiPatch", FamilyMultiPatch, true, true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.True(t, testCase.input.Valid())
			assert.Equal(t, testCase.name, testCase.input.String())
			assert.Equal(t, testCase.family, testCase.input.Family())
			assert.Equal(t, testCase.z, testCase.input.HasZ())
			assert.Equal(t, testCase.m, testCase.input.HasM())
		})
	}

	t.Run("Invalid", func(t *testing.T) {
		for _, code := range []ShapeType{-1, 2, 4, 30, 32, 1000} {
			assert.False(t, code.Valid())
			assert.False(t, code.HasZ())
			assert.False(t, code.HasM())
			assert.Panics(t, func() { code.Family() })
		}
		assert.Equal(t, "ShapeType(2)", ShapeType(2).String())
	})
}

func TestFamily_String(t *testing.T) {
	assert.Equal(t, "Null", FamilyNull.String())
	assert.Equal(t, "PolyLine", FamilyPolyLine.String())
	assert.Equal(t, "MultiPatch", FamilyMultiPatch.String())
	assert.Equal(t, "Family(9)", Family(9).String())
}

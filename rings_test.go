// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignedArea(t *testing.T) {
	testCases := []struct {
		name     string
		input    Ring
		expected float64
	}{
		{"Nil", nil, 0},
		{"TwoPoints", Ring(xy(0, 0, 1, 1)), 0},
		{"Clockwise", Ring(cwSquare), 200},
		{"CounterClockwise", Ring(ccwSquare), -8},
		{"Unclosed", Ring(cwSquare[:4]), 200},
		{"Degenerate", Ring(xy(0, 0, 1, 1, 2, 2, 0, 0)), 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := SignedArea(testCase.input)

			assert.Equal(t, testCase.expected, actual)
		})
	}
}

func TestIsClockwise(t *testing.T) {
	assert.True(t, IsClockwise(cwSquare))
	assert.True(t, IsClockwise(cwFarSquare))
	assert.False(t, IsClockwise(ccwSquare))
	assert.False(t, IsClockwise(ccwFarSquare))
	assert.False(t, IsClockwise(xy(0, 0, 1, 1, 0, 0)))
}

func TestClassifyRings(t *testing.T) {
	testCases := []struct {
		name     string
		input    []Ring
		expected []PolygonGroup
	}{
		{
			name:     "Empty",
			input:    nil,
			expected: []PolygonGroup{},
		},
		{
			name:     "ExteriorWithHole",
			input:    []Ring{cwSquare, ccwSquare},
			expected: []PolygonGroup{{Exterior: cwSquare, Holes: []Ring{ccwSquare}}},
		},
		{
			name:  "SwappedWinding",
			input: []Ring{reversed(cwSquare), reversed(ccwSquare)},
			expected: []PolygonGroup{
				{Exterior: reversed(cwSquare)},
				{Exterior: reversed(ccwSquare)},
			},
		},
		{
			name:  "HolesFollowLatestExterior",
			input: []Ring{cwSquare, cwFarSquare, ccwSquare},
			expected: []PolygonGroup{
				{Exterior: cwSquare},
				{Exterior: cwFarSquare, Holes: []Ring{ccwSquare}},
			},
		},
		{
			name:  "OrphanPromoted",
			input: []Ring{ccwSquare, ccwFarSquare},
			expected: []PolygonGroup{
				{Exterior: ccwSquare, Holes: []Ring{ccwFarSquare}},
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := ClassifyRings(testCase.input)

			assert.Equal(t, testCase.expected, actual)
		})
	}

	t.Run("OrphanCallback", func(t *testing.T) {
		var orphans []int

		classifyRings([]Ring{ccwSquare, cwSquare, ccwSquare}, func(i int) {
			orphans = append(orphans, i)
		})

		assert.Equal(t, []int{0}, orphans)
	})
}

func reversed(r []Coord) Ring {
	out := make(Ring, len(r))
	for i := range r {
		out[len(r)-1-i] = r[i]
	}
	return out
}

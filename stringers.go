// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

import (
	"fmt"
	"sort"
	"strings"
)

func (r DecodedRecord) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Record{Number:%d,ShapeType:%s,Geometry:", r.RecordNumber, r.ShapeType)
	stringGeom(&b, r.Geometry)
	b.WriteString(",Attributes:{")
	stringAttrs(&b, r.Attributes)
	b.WriteString("}}")
	return b.String()
}

func stringGeom(b *strings.Builder, g Geometry) {
	if g == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteString("{Type:")
	b.WriteString(g.Type().String())
	b.WriteString(",Layout:")
	b.WriteString(g.Layout().String())
	b.WriteString(",Bounds:")
	if bounds := g.Bounds(); bounds.IsEmpty() {
		b.WriteString("<nil>")
	} else {
		b.WriteString(bounds.String())
	}
	b.WriteByte('}')
}

// stringAttrs prints attributes in key order so the output is stable.
func stringAttrs(b *strings.Builder, attrs map[string]interface{}) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		_, _ = fmt.Fprint(b, attrs[k])
	}
}

func (s SkippedRecord) String() string {
	return fmt.Sprintf("record %d at offset %d: %v", s.RecordNumber, s.Offset, s.Err)
}

// String returns the summary as "N of M records decoded, K skipped".
func (s Summary) String() string {
	return fmt.Sprintf("%d of %d records decoded, %d skipped", s.Decoded, s.Attempted, s.Skipped)
}

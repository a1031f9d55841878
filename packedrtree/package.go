// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package packedrtree provides a static, packed Hilbert R-Tree over
// bounding boxes.
//
// A tree is built once from a list of references sorted with
// HilbertSort and is read-only afterward, which makes it a compact fit
// for indexing the records of a file that has already been scanned.
package packedrtree

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package curation

import "fmt"

// Ids is the identity block of a curation: one row per index with
// string-valued columns such as sample, series and platform
// accessions. The column named by indexCol holds the primary index
// IDs, which are unique within a curation; the remaining columns are
// group columns whose values repeat.
type Ids struct {
	cols     []string
	idx      map[string]int
	rows     [][]string
	indexCol string
}

// NewIds returns an identity block over the given columns. Rows are
// row-major; every row must have len(cols) values.
func NewIds(cols []string, rows [][]string, indexCol string) (*Ids, error) {
	idx := indexOf(cols)
	if _, ok := idx[indexCol]; !ok {
		return nil, fmt.Errorf("curation: index column %q not in %v", indexCol, cols)
	}
	for i, r := range rows {
		if len(r) != len(cols) {
			return nil, fmt.Errorf("curation: identity row %d has %d values, want %d", i, len(r), len(cols))
		}
	}
	return &Ids{cols: append([]string(nil), cols...), idx: idx, rows: rows, indexCol: indexCol}, nil
}

// Columns returns the identity column names in order.
func (ids *Ids) Columns() []string { return ids.cols }

// IndexCol returns the name of the primary index column.
func (ids *Ids) IndexCol() string { return ids.indexCol }

// Len returns the number of identity rows.
func (ids *Ids) Len() int { return len(ids.rows) }

// Column returns the values of the named column in row order.
func (ids *Ids) Column(name string) []string {
	c, ok := ids.idx[name]
	if !ok {
		panic(fmt.Sprintf("curation: no identity column %q", name))
	}
	vals := make([]string, len(ids.rows))
	for i, r := range ids.rows {
		vals[i] = r[c]
	}
	return vals
}

// HasColumn reports whether the identity block has the named column.
func (ids *Ids) HasColumn(name string) bool {
	_, ok := ids.idx[name]
	return ok
}

// Index returns the primary index IDs in row order.
func (ids *Ids) Index() []string { return ids.Column(ids.indexCol) }

// Row returns identity row i.
func (ids *Ids) Row(i int) []string { return ids.rows[i] }

// TakeRows returns a new identity block holding the given row
// positions in order.
func (ids *Ids) TakeRows(rows []int) *Ids {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = ids.rows[r]
	}
	return &Ids{cols: ids.cols, idx: ids.idx, rows: out, indexCol: ids.indexCol}
}

// SliceRows returns a new identity block windowed to length rows
// starting at offset. A negative length takes all remaining rows.
func (ids *Ids) SliceRows(offset, length int) *Ids {
	if offset < 0 || offset > len(ids.rows) {
		panic(fmt.Sprintf("curation: slice offset %d out of range [0, %d]", offset, len(ids.rows)))
	}
	if length < 0 || offset+length > len(ids.rows) {
		length = len(ids.rows) - offset
	}
	return &Ids{cols: ids.cols, idx: ids.idx, rows: ids.rows[offset : offset+length], indexCol: ids.indexCol}
}

// positions returns a map from index ID to row position.
func (ids *Ids) positions() map[string]int {
	pos := make(map[string]int, len(ids.rows))
	for i, id := range ids.Index() {
		pos[id] = i
	}
	return pos
}

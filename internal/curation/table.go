// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package curation

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Table is a dense numeric block with named columns. It backs the
// entity values of annotation and label curations: annotation values
// are 0/1, label values -1/0/+1 and 2 for controls. Operations
// return new tables; a Table is never mutated after construction.
type Table struct {
	cols []string
	idx  map[string]int
	m    *mat.Dense
}

// NewTable returns a table over the given columns. If data is nil a
// zero table with rows rows is allocated, otherwise data must be
// row-major with rows×len(cols) values. A table with no rows or no
// columns has no backing matrix.
func NewTable(cols []string, rows int, data []float64) *Table {
	t := &Table{cols: append([]string(nil), cols...), idx: indexOf(cols)}
	if len(cols) == 0 || rows == 0 {
		return t
	}
	t.m = mat.NewDense(rows, len(cols), data)
	return t
}

// TableOver wraps an existing matrix without copying.
func TableOver(cols []string, m *mat.Dense) *Table {
	return &Table{cols: append([]string(nil), cols...), idx: indexOf(cols), m: m}
}

func indexOf(cols []string) map[string]int {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return idx
}

// Columns returns the column names in order.
func (t *Table) Columns() []string { return t.cols }

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if t.m == nil {
		return 0
	}
	rows, _ := t.m.Dims()
	return rows
}

// Cols returns the number of columns.
func (t *Table) Cols() int { return len(t.cols) }

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.idx[name]
	return ok
}

// At returns the value at row r of the named column.
func (t *Table) At(r int, col string) float64 {
	c, ok := t.idx[col]
	if !ok {
		panic(fmt.Sprintf("curation: no column %q", col))
	}
	return t.m.At(r, c)
}

// Matrix returns the backing matrix. The result must be treated as
// read-only.
func (t *Table) Matrix() *mat.Dense { return t.m }

// Select returns a new table holding only the named columns, in the
// given order. Requesting an absent column is an error.
func (t *Table) Select(cols []string) (*Table, error) {
	rows := t.Rows()
	out := NewTable(cols, rows, nil)
	for j, name := range cols {
		c, ok := t.idx[name]
		if !ok {
			return nil, fmt.Errorf("curation: no column %q", name)
		}
		for r := 0; r < rows; r++ {
			out.m.Set(r, j, t.m.At(r, c))
		}
	}
	return out, nil
}

// Drop returns a new table without the named columns. Absent names
// are ignored.
func (t *Table) Drop(cols ...string) *Table {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	keep := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	out, err := t.Select(keep)
	if err != nil {
		panic(err) // keep is a subset of t.cols
	}
	return out
}

// SortColumns returns a new table with columns in lexical order.
func (t *Table) SortColumns() *Table {
	cols := append([]string(nil), t.cols...)
	sort.Strings(cols)
	out, err := t.Select(cols)
	if err != nil {
		panic(err)
	}
	return out
}

// TakeRows returns a new table holding the given row positions in
// order.
func (t *Table) TakeRows(rows []int) *Table {
	out := NewTable(t.cols, len(rows), nil)
	if len(t.cols) == 0 {
		return out
	}
	for i, r := range rows {
		for c := range t.cols {
			out.m.Set(i, c, t.m.At(r, c))
		}
	}
	return out
}

// SliceRows returns a new table windowed to length rows starting at
// offset. A negative length takes all remaining rows.
func (t *Table) SliceRows(offset, length int) *Table {
	rows := t.Rows()
	if offset < 0 || offset > rows {
		panic(fmt.Sprintf("curation: slice offset %d out of range [0, %d]", offset, rows))
	}
	if length < 0 || offset+length > rows {
		length = rows - offset
	}
	take := make([]int, length)
	for i := range take {
		take[i] = offset + i
	}
	return t.TakeRows(take)
}

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package curation

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Labels holds propagated ternary labels of indices to ontology
// terms: -1, 0, +1, and 2 for study controls.
type Labels struct {
	data      *Table
	ids       *Ids
	groupCols []string
	collapsed bool
}

var _ Curation = (*Labels)(nil)

// NewLabels validates and assembles a labels curation.
func NewLabels(data *Table, ids *Ids, groupCols []string) (*Labels, error) {
	if err := validate(data, ids); err != nil {
		return nil, err
	}
	return &Labels{data: data, ids: ids, groupCols: append([]string(nil), groupCols...)}, nil
}

func (l *Labels) shallow(data *Table, ids *Ids) *Labels {
	return &Labels{data: data, ids: ids, groupCols: l.groupCols, collapsed: l.collapsed}
}

// Select projects the entity block to the named columns, leaving the
// identity block untouched.
func (l *Labels) Select(cols []string) (*Labels, error) {
	data, err := l.data.Select(cols)
	if err != nil {
		return nil, err
	}
	return l.shallow(data, l.ids), nil
}

// Drop removes the named entity columns; absent names are ignored.
func (l *Labels) Drop(cols ...string) *Labels {
	return l.shallow(l.data.Drop(cols...), l.ids)
}

// Filter keeps the rows satisfying cond, applying the same row mask
// to the entity and identity blocks.
func (l *Labels) Filter(cond Condition) *Labels {
	keep := filterRows(l.data, cond)
	return l.shallow(l.data.TakeRows(keep), l.ids.TakeRows(keep))
}

// Slice windows both blocks in lockstep. A negative length takes all
// remaining rows.
func (l *Labels) Slice(offset, length int) *Labels {
	return l.shallow(l.data.SliceRows(offset, length), l.ids.SliceRows(offset, length))
}

// AddIds joins additional identity columns by index ID, preserving
// the receiver's row order. Every existing index must be matched in
// more; a missing index is a programmer error and panics.
func (l *Labels) AddIds(more *Ids) *Labels {
	pos := more.positions()
	joined := make([][]string, l.ids.Len())
	extra := extraColumns(more, l.ids.IndexCol())
	for i, id := range l.ids.Index() {
		r, ok := pos[id]
		if !ok {
			panic(fmt.Sprintf("curation: index %q not present in joined ids", id))
		}
		row := append([]string(nil), l.ids.Row(i)...)
		for _, c := range extra {
			row = append(row, more.Row(r)[indexOfCol(more.Columns(), c)])
		}
		joined[i] = row
	}

	cols := append(append([]string(nil), l.ids.Columns()...), extra...)
	ids, err := NewIds(cols, joined, l.ids.IndexCol())
	if err != nil {
		panic(err)
	}
	if ids.Len() != l.ids.Len() {
		panic("curation: joined ids row count mismatch")
	}
	groups := append(append([]string(nil), l.groupCols...), extra...)
	return &Labels{data: l.data, ids: ids, groupCols: groups, collapsed: l.collapsed}
}

func extraColumns(more *Ids, indexCol string) []string {
	var extra []string
	for _, c := range more.Columns() {
		if c != indexCol {
			extra = append(extra, c)
		}
	}
	return extra
}

// SubsetIndex keeps the rows whose index IDs appear in subset,
// preserving the receiver's row order. Missing IDs are skipped.
func (l *Labels) SubsetIndex(subset []string) *Labels {
	want := make(map[string]bool, len(subset))
	for _, id := range subset {
		want[id] = true
	}
	var keep []int
	for i, id := range l.ids.Index() {
		if want[id] {
			keep = append(keep, i)
		}
	}
	return l.shallow(l.data.TakeRows(keep), l.ids.TakeRows(keep))
}

// Collapsed reports whether the curation has been collapsed to group
// level.
func (l *Labels) Collapsed() bool { return l.collapsed }

// Entities returns the entity column names.
func (l *Labels) Entities() []string { return l.data.Columns() }

// Matrix returns the entity block; treat as read-only.
func (l *Labels) Matrix() *mat.Dense { return l.data.Matrix() }

// Table returns the entity block table; treat as read-only.
func (l *Labels) Table() *Table { return l.data }

// IDs returns the identity block.
func (l *Labels) IDs() *Ids { return l.ids }

// Index returns the primary index IDs in row order.
func (l *Labels) Index() []string { return l.ids.Index() }

// Groups returns the values of the named group column.
func (l *Labels) Groups(col string) []string { return l.ids.Column(col) }

// GroupCols returns the group column names.
func (l *Labels) GroupCols() []string { return l.groupCols }

// NIndices returns the number of rows.
func (l *Labels) NIndices() int { return l.ids.Len() }

// NEntities returns the number of entity columns.
func (l *Labels) NEntities() int { return l.data.Cols() }

// UniqueGroups returns the distinct values of the named group column
// in first-seen order.
func (l *Labels) UniqueGroups(col string) []string {
	return uniqueStrings(l.ids.Column(col))
}

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package curation

import (
	"gonum.org/v1/gonum/mat"
)

// Annotations holds binary annotations of indices (samples or
// series) to ontology terms: the entity block has one 0/1 column per
// term, the identity block one row per index.
type Annotations struct {
	data      *Table
	ids       *Ids
	groupCols []string
	collapsed bool
}

var _ Curation = (*Annotations)(nil)

// NewAnnotations validates and assembles an annotations curation.
// The identity block must hold the index column and all group
// columns.
func NewAnnotations(data *Table, ids *Ids, groupCols []string) (*Annotations, error) {
	if err := validate(data, ids); err != nil {
		return nil, err
	}
	return &Annotations{data: data, ids: ids, groupCols: append([]string(nil), groupCols...)}, nil
}

func (a *Annotations) shallow(data *Table, ids *Ids) *Annotations {
	return &Annotations{data: data, ids: ids, groupCols: a.groupCols, collapsed: a.collapsed}
}

// Select projects the entity block to the named columns, leaving the
// identity block untouched.
func (a *Annotations) Select(cols []string) (*Annotations, error) {
	data, err := a.data.Select(cols)
	if err != nil {
		return nil, err
	}
	return a.shallow(data, a.ids), nil
}

// Drop removes the named entity columns; absent names are ignored.
func (a *Annotations) Drop(cols ...string) *Annotations {
	return a.shallow(a.data.Drop(cols...), a.ids)
}

// SortColumns orders the entity columns lexically.
func (a *Annotations) SortColumns() *Annotations {
	return a.shallow(a.data.SortColumns(), a.ids)
}

// Filter keeps the rows satisfying cond, applying the same row mask
// to the entity and identity blocks.
func (a *Annotations) Filter(cond Condition) *Annotations {
	keep := filterRows(a.data, cond)
	return a.shallow(a.data.TakeRows(keep), a.ids.TakeRows(keep))
}

// Slice windows both blocks in lockstep. A negative length takes all
// remaining rows.
func (a *Annotations) Slice(offset, length int) *Annotations {
	return a.shallow(a.data.SliceRows(offset, length), a.ids.SliceRows(offset, length))
}

// Collapse aggregates index-level annotations to group-level on the
// named group column and returns the result; the receiver is
// unchanged.
func (a *Annotations) Collapse(on string) (*Annotations, error) {
	data, ids, groups, err := collapse(a.data, a.ids, on, a.groupCols)
	if err != nil {
		return nil, err
	}
	return &Annotations{data: data, ids: ids, groupCols: groups, collapsed: true}, nil
}

// CollapseInPlace is the mutating variant of Collapse.
func (a *Annotations) CollapseInPlace(on string) error {
	c, err := a.Collapse(on)
	if err != nil {
		return err
	}
	*a = *c
	return nil
}

// Collapsed reports whether the curation has been collapsed to group
// level.
func (a *Annotations) Collapsed() bool { return a.collapsed }

// Entities returns the entity column names.
func (a *Annotations) Entities() []string { return a.data.Columns() }

// Matrix returns the entity block; treat as read-only.
func (a *Annotations) Matrix() *mat.Dense { return a.data.Matrix() }

// Table returns the entity block table; treat as read-only.
func (a *Annotations) Table() *Table { return a.data }

// IDs returns the identity block.
func (a *Annotations) IDs() *Ids { return a.ids }

// Index returns the primary index IDs in row order.
func (a *Annotations) Index() []string { return a.ids.Index() }

// Groups returns the values of the named group column.
func (a *Annotations) Groups(col string) []string { return a.ids.Column(col) }

// GroupCols returns the group column names.
func (a *Annotations) GroupCols() []string { return a.groupCols }

// NIndices returns the number of rows.
func (a *Annotations) NIndices() int { return a.ids.Len() }

// NEntities returns the number of entity columns.
func (a *Annotations) NEntities() int { return a.data.Cols() }

// UniqueGroups returns the distinct values of the named group column
// in first-seen order.
func (a *Annotations) UniqueGroups(col string) []string {
	return uniqueStrings(a.ids.Column(col))
}

func uniqueStrings(s []string) []string {
	seen := make(map[string]bool, len(s))
	var out []string
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

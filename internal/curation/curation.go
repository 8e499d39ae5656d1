// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package curation holds the in-memory representation of per-index
// annotations and labels against ontology terms: a numeric entity
// block row-aligned with a string identity block. All operations
// return new values; the only mutating variant is CollapseInPlace.
package curation

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Label values produced by propagation.
const (
	LabelNegative = -1 // no relation found
	LabelUnsure   = 0  // annotated to an ancestor only
	LabelPositive = 1  // annotated to the term or a descendant
	LabelControl  = 2  // study control for a positively labeled term
)

// Curation is the read capability shared by Annotations and Labels.
// Mutating operations return concrete types and are not part of the
// interface.
type Curation interface {
	// Entities returns the entity (term) column names.
	Entities() []string

	// Matrix returns the numeric entity block, rows aligned with
	// IDs. The result must be treated as read-only and may be nil
	// for an empty curation.
	Matrix() *mat.Dense

	// IDs returns the identity block.
	IDs() *Ids

	// Index returns the primary index IDs in row order.
	Index() []string

	// NIndices returns the number of rows.
	NIndices() int

	// NEntities returns the number of entity columns.
	NEntities() int
}

// Condition is a row predicate evaluated over entity columns.
type Condition func(at func(col string) float64) bool

// Positive returns a condition satisfied when the named column is 1.
func Positive(col string) Condition {
	return func(at func(string) float64) bool { return at(col) == 1 }
}

// AnyPositive returns a condition satisfied when any of the named
// columns is 1.
func AnyPositive(cols ...string) Condition {
	return func(at func(string) float64) bool {
		for _, c := range cols {
			if at(c) == 1 {
				return true
			}
		}
		return false
	}
}

// validate checks the construction invariants shared by Annotations
// and Labels: row alignment of the two blocks, disjoint identity and
// entity columns, and unique index IDs.
func validate(data *Table, ids *Ids) error {
	if data.Cols() != 0 && data.Rows() != ids.Len() {
		return fmt.Errorf("curation: data has %d rows, identity block has %d", data.Rows(), ids.Len())
	}
	for _, c := range ids.Columns() {
		if data.HasColumn(c) {
			return fmt.Errorf("curation: column %q is both identity and entity", c)
		}
	}
	seen := make(map[string]bool, ids.Len())
	for _, id := range ids.Index() {
		if seen[id] {
			return fmt.Errorf("curation: duplicate index ID %q", id)
		}
		seen[id] = true
	}
	return nil
}

// filterRows evaluates cond for every row of data and returns the
// positions of rows that satisfy it.
func filterRows(data *Table, cond Condition) []int {
	var keep []int
	at := func(r int) func(string) float64 {
		return func(col string) float64 { return data.At(r, col) }
	}
	for r := 0; r < data.Rows(); r++ {
		if cond(at(r)) {
			keep = append(keep, r)
		}
	}
	return keep
}

// collapse aggregates rows sharing a value in the identity column on
// into one row per group: an entity value becomes 1 when the group
// sum is positive. The group column becomes the new index column and
// is removed from the remaining group columns. Group order follows
// the sorted group keys; the other identity values of a group are
// taken from its first row in the input order.
func collapse(data *Table, ids *Ids, on string, groupCols []string) (*Table, *Ids, []string, error) {
	if !ids.HasColumn(on) {
		return nil, nil, nil, fmt.Errorf("curation: no identity column %q to collapse on", on)
	}
	inGroups := false
	for _, g := range groupCols {
		if g == on {
			inGroups = true
			break
		}
	}
	if !inGroups {
		return nil, nil, nil, fmt.Errorf("curation: %q is not a group column", on)
	}

	keys := ids.Column(on)
	groups := make(map[string][]int)
	var order []string
	for r, k := range keys {
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	sort.Strings(order)

	cols := data.Columns()
	out := NewTable(cols, len(order), nil)
	for i, k := range order {
		for c := range cols {
			var sum float64
			for _, r := range groups[k] {
				sum += data.Matrix().At(r, c)
			}
			if sum > 0 {
				out.Matrix().Set(i, c, 1)
			}
		}
	}

	newGroups := make([]string, 0, len(groupCols)-1)
	for _, g := range groupCols {
		if g != on {
			newGroups = append(newGroups, g)
		}
	}
	idCols := append([]string{on}, newGroups...)
	rows := make([][]string, len(order))
	for i, k := range order {
		first := ids.Row(groups[k][0])
		row := make([]string, len(idCols))
		for j, c := range idCols {
			row[j] = first[indexOfCol(ids.Columns(), c)]
		}
		rows[i] = row
	}
	newIds, err := NewIds(idCols, rows, on)
	if err != nil {
		return nil, nil, nil, err
	}
	return out, newIds, newGroups, nil
}

func indexOfCol(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	panic(fmt.Sprintf("curation: no column %q", name))
}

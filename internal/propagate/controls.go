// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package propagate

import (
	"fmt"

	"ontolabel/internal/curation"
)

// propagateControls appends label rows for the control samples named
// by ctrlIDs. A control receives 2 for every term some member of its
// group is positively labelled for, and 0 elsewhere. Identity rows
// for the controls are taken from ids, which must cover them.
func (c *Converter) propagateControls(labels *curation.Labels, ids *curation.Ids, ctrlIDs []string) (*curation.Labels, error) {
	if !ids.HasColumn(c.group) {
		c.log.Printf("propagate: no %q column; controls left unlabelled", c.group)
		return labels, nil
	}

	terms := labels.NEntities()
	groups := labels.Groups(c.group)
	m := labels.Matrix()

	// Positive support per group across the labelled samples.
	support := make(map[string][]bool)
	for i, g := range groups {
		pos := support[g]
		if pos == nil {
			pos = make([]bool, terms)
			support[g] = pos
		}
		for j := 0; j < terms; j++ {
			if m.At(i, j) == curation.LabelPositive {
				pos[j] = true
			}
		}
	}

	at := make(map[string]int, ids.Len())
	for i, id := range ids.Index() {
		at[id] = i
	}
	groupCol := ids.Column(c.group)

	rows := labels.NIndices()
	data := make([]float64, 0, (rows+len(ctrlIDs))*terms)
	for i := 0; i < rows; i++ {
		for j := 0; j < terms; j++ {
			data = append(data, m.At(i, j))
		}
	}
	idRows := make([][]string, 0, rows+len(ctrlIDs))
	for i := 0; i < rows; i++ {
		idRows = append(idRows, labels.IDs().Row(i))
	}

	for _, id := range ctrlIDs {
		i, ok := at[id]
		if !ok {
			return nil, fmt.Errorf("propagate: control %q has no identity row", id)
		}
		pos := support[groupCol[i]]
		for j := 0; j < terms; j++ {
			if pos != nil && pos[j] {
				data = append(data, curation.LabelControl)
			} else {
				data = append(data, curation.LabelUnsure)
			}
		}
		idRows = append(idRows, ids.Row(i))
	}

	allIDs, err := curation.NewIds(ids.Columns(), idRows, ids.IndexCol())
	if err != nil {
		return nil, err
	}
	return curation.NewLabels(curation.NewTable(labels.Entities(), len(idRows), data), allIDs, labels.GroupCols())
}

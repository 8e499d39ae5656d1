// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"ontolabel/internal/curation"
)

// pivot accumulates long-form annotation rows into a one-hot matrix
// keyed by sample or series accession. First-seen order of keys and
// terms is kept so loads are deterministic.
type pivot struct {
	level string

	order []string
	hits  map[string]map[string]bool
	ids   map[string][]string

	terms    []string
	termSeen map[string]bool
}

func newPivot(level string) *pivot {
	return &pivot{
		level:    level,
		hits:     make(map[string]map[string]bool),
		ids:      make(map[string][]string),
		termSeen: make(map[string]bool),
	}
}

// add records one annotation row. Rows with a placeholder key or
// term are dropped. At group level only series-wide rows, those
// without a sample accession, take part.
func (p *pivot) add(sample, series, platform, term string) {
	var key string
	var id []string
	switch p.level {
	case "group":
		if sample != "NA" {
			return
		}
		key = series
		id = []string{series, platform}
	default:
		key = sample
		id = []string{sample, series, platform}
	}
	if naValues[key] || naValues[term] {
		return
	}

	hits, ok := p.hits[key]
	if !ok {
		hits = make(map[string]bool)
		p.hits[key] = hits
		p.ids[key] = id
		p.order = append(p.order, key)
	}
	hits[term] = true
	if !p.termSeen[term] {
		p.termSeen[term] = true
		p.terms = append(p.terms, term)
	}
}

// curation builds the annotation curation from the accumulated rows.
func (p *pivot) curation() (*curation.Annotations, error) {
	idCols := []string{"sample", "series", "platform"}
	groupCols := []string{"series", "platform"}
	if p.level == "group" {
		idCols = []string{"series", "platform"}
		groupCols = []string{"platform"}
	}

	data := make([]float64, 0, len(p.order)*len(p.terms))
	idRows := make([][]string, 0, len(p.order))
	for _, key := range p.order {
		hits := p.hits[key]
		for _, t := range p.terms {
			if hits[t] {
				data = append(data, 1)
			} else {
				data = append(data, 0)
			}
		}
		idRows = append(idRows, p.ids[key])
	}

	ids, err := curation.NewIds(idCols, idRows, idCols[0])
	if err != nil {
		return nil, err
	}
	return curation.NewAnnotations(curation.NewTable(p.terms, len(idRows), data), ids, groupCols)
}

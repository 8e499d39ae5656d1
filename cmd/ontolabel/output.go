// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ontolabel/internal/curation"
)

// writeCuration writes the curation as a tsv table with the identity
// columns first. An empty path selects stdout.
func writeCuration(path string, c curation.Curation) (err error) {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			cerr := f.Close()
			if err == nil {
				err = cerr
			}
		}()
		w = f
	}
	bw := bufio.NewWriter(w)

	ids := c.IDs()
	_, err = fmt.Fprintf(bw, "%s\t%s\n",
		strings.Join(ids.Columns(), "\t"),
		strings.Join(c.Entities(), "\t"))
	if err != nil {
		return err
	}
	m := c.Matrix()
	for i := 0; i < c.NIndices(); i++ {
		_, err = bw.WriteString(strings.Join(ids.Row(i), "\t"))
		if err != nil {
			return err
		}
		for j := 0; j < c.NEntities(); j++ {
			_, err = fmt.Fprintf(bw, "\t%g", m.At(i, j))
			if err != nil {
				return err
			}
		}
		err = bw.WriteByte('\n')
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SummaryDoc summarises a propagation run.
type SummaryDoc struct {
	// Attribute is the annotation attribute that was propagated.
	Attribute string

	// Mode is the propagation mode, 0 to annotate or 1 to label.
	Mode int

	// Rows is the number of propagated rows.
	Rows int

	// Terms holds the per-term label tallies.
	Terms []*TermSummary
}

// TermSummary tallies the labels assigned for one target term.
type TermSummary struct {
	// Term is the ontology term identifier.
	Term string

	// Name is the term name, if the ontology provides one.
	Name string `json:",omitempty"`

	// Label value counts over the propagated rows.
	Negative, Unsure, Positive, Control int

	// PositiveFraction is the fraction of rows labelled positive.
	PositiveFraction float64
}

// writeSummary writes per-term label tallies to path in JSON format.
func writeSummary(path, attribute string, mode int, c curation.Curation, names map[string]string) error {
	doc := SummaryDoc{Attribute: attribute, Mode: mode, Rows: c.NIndices()}

	m := c.Matrix()
	indicator := make([]float64, c.NIndices())
	for j, term := range c.Entities() {
		s := &TermSummary{Term: term, Name: names[term]}
		for i := range indicator {
			indicator[i] = 0
			switch m.At(i, j) {
			case curation.LabelNegative:
				s.Negative++
			case curation.LabelUnsure:
				s.Unsure++
			case curation.LabelPositive:
				indicator[i] = 1
			case curation.LabelControl:
				s.Control++
			}
		}
		s.Positive = int(floats.Sum(indicator))
		if len(indicator) != 0 {
			s.PositiveFraction = stat.Mean(indicator, nil)
		}
		doc.Terms = append(doc.Terms, s)
	}

	b, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package propagate

import (
	"fmt"
	"log"
	"sort"

	"ontolabel/internal/curation"
	"ontolabel/internal/ontology"
	"ontolabel/internal/relations"
)

// Mode selects the conversion performed by Run.
type Mode int

const (
	// Annotate produces a dense 0/1 annotation matrix over the
	// target terms by upward propagation only.
	Annotate Mode = iota
	// Label produces a -1/0/+1 label matrix over the target terms,
	// with control samples labelled 2 where their group has support.
	Label
)

// Defaults for the control entity column and the grouping identity
// column used by the control pass.
const (
	DefaultControl = "MONDO:0000000"
	DefaultGroup   = "series"
)

// Converter turns curated annotations into propagated annotations or
// labels over a requested set of ontology terms. The graph supplies
// term relatives for column selection and the relation index supplies
// the propagation matrices.
type Converter struct {
	graph   *ontology.Graph
	index   *relations.Index
	control string
	group   string
	workers int

	log *log.Logger
}

// NewConverter returns a converter over the given ontology graph and
// relation index. Empty control and group select the defaults;
// workers ≤ 0 selects CPU count minus one.
func NewConverter(g *ontology.Graph, ix *relations.Index, control, group string, workers int, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.Default()
	}
	if control == "" {
		control = DefaultControl
	}
	if group == "" {
		group = DefaultGroup
	}
	return &Converter{graph: g, index: ix, control: control, group: group, workers: workers, log: logger}
}

// Run dispatches to Annotate or ToLabels according to mode.
func (c *Converter) Run(anno *curation.Annotations, to []string, mode Mode) (curation.Curation, error) {
	switch mode {
	case Annotate:
		return c.Annotate(anno, to)
	case Label:
		return c.ToLabels(anno, to)
	default:
		return nil, fmt.Errorf("propagate: invalid mode %d", mode)
	}
}

// Annotate propagates the positive annotations of anno up to the
// terms in to. The annotation is restricted to the target terms and
// their descendants, rows with no relevant positive annotation are
// dropped, and the result holds 1 where a target term or any of its
// descendants is annotated.
func (c *Converter) Annotate(anno *curation.Annotations, to []string) (*curation.Annotations, error) {
	from := c.related(anno, to, false)
	if len(from) == 0 {
		return nil, fmt.Errorf("annotate %v: %w", summarize(to), ErrNoMatch)
	}
	sel, err := anno.Select(from)
	if err != nil {
		return nil, err
	}
	sel = sel.Filter(curation.AnyPositive(sel.Entities()...))

	prop, err := NewPropagator(c.index, sel, to, c.workers, c.log)
	if err != nil {
		return nil, fmt.Errorf("annotate %v: %w", summarize(to), err)
	}
	up, err := prop.Up()
	if err != nil {
		return nil, err
	}
	return curation.NewAnnotations(curation.TableOver(prop.To(), up), prop.IDs(), anno.GroupCols())
}

// ToLabels propagates the positive annotations of anno into ternary
// labels over the terms in to: +1 where the term or a descendant is
// annotated, 0 where only an ancestor is annotated, -1 otherwise.
// Control samples are excluded from propagation and labelled by
// group support afterwards.
func (c *Converter) ToLabels(anno *curation.Annotations, to []string) (*curation.Labels, error) {
	from := c.related(anno, to, true)
	if len(from) == 0 {
		return nil, fmt.Errorf("label %v: %w", summarize(to), ErrNoMatch)
	}

	hasControl := anno.Table().HasColumn(c.control)
	cols := from
	if hasControl {
		cols = append(cols, c.control)
	}
	sel, err := anno.Select(cols)
	if err != nil {
		return nil, err
	}

	// Controls sit out the propagation and are labelled afterwards
	// from group support. Collapsed curations have no per-sample
	// controls left, so there the control column is simply dropped.
	var ctrlIDs []string
	if hasControl {
		if !anno.Collapsed() {
			ctrlIDs = sel.Filter(curation.Positive(c.control)).Index()
			sel = sel.Filter(func(at func(string) float64) bool {
				return at(c.control) < curation.LabelPositive
			})
		}
		sel = sel.Drop(c.control)
	}

	prop, err := NewPropagator(c.index, sel, to, c.workers, c.log)
	if err != nil {
		return nil, fmt.Errorf("label %v: %w", summarize(to), err)
	}
	up, err := prop.Up()
	if err != nil {
		return nil, err
	}
	down, err := prop.Down()
	if err != nil {
		return nil, err
	}

	// A term with no annotated descendant and no annotated ancestor
	// carries no evidence either way.
	rows, terms := up.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < terms; j++ {
			if up.At(i, j) == 0 && down.At(i, j) == 0 {
				up.Set(i, j, curation.LabelNegative)
			}
		}
	}

	labels, err := curation.NewLabels(curation.TableOver(prop.To(), up), prop.IDs(), anno.GroupCols())
	if err != nil {
		return nil, err
	}
	if len(ctrlIDs) != 0 {
		labels, err = c.propagateControls(labels, anno.IDs(), ctrlIDs)
		if err != nil {
			return nil, err
		}
	}
	return labels, nil
}

// related returns the entity columns of anno that are target terms
// or their descendants, optionally also ancestors. Target terms
// unknown to the relation index are logged.
func (c *Converter) related(anno *curation.Annotations, to []string, ancestors bool) []string {
	var missing []string
	for _, t := range to {
		if !c.index.Has(t) {
			missing = append(missing, t)
		}
	}
	warnMissing(c.log, "requested", missing)

	want := make(map[string]bool, len(to))
	for _, t := range to {
		want[t] = true
	}
	for _, desc := range c.graph.DescendantsFrom(to) {
		for _, d := range desc {
			want[d] = true
		}
	}
	if ancestors {
		for _, anc := range c.graph.AncestorsFrom(to) {
			for _, a := range anc {
				want[a] = true
			}
		}
	}

	var from []string
	for _, e := range anno.Entities() {
		if want[e] {
			from = append(from, e)
		}
	}
	return from
}

// summarize renders a term list for error text, eliding long lists.
func summarize(terms []string) []string {
	const limit = 5
	if len(terms) <= limit {
		return terms
	}
	s := append([]string(nil), terms[:limit]...)
	sort.Strings(s)
	return append(s, fmt.Sprintf("(+%d)", len(terms)-limit))
}

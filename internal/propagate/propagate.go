// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package propagate converts sparse positive term annotations into
// dense propagated annotations or ternary labels by multiplying the
// annotation matrix against precomputed ancestor and descendant
// relation matrices.
package propagate

import (
	"errors"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"ontolabel/internal/curation"
	"ontolabel/internal/relations"
)

// ErrNoMatch is returned when none of the requested terms intersect
// the annotation entities; propagation cannot proceed.
var ErrNoMatch = errors.New("propagate: no requested terms match annotation entities")

// Row chunks are sized so that each worker task multiplies at most
// about a thousand annotation rows against the relation matrix.
const chunkDivisor = 500

// Propagator multiplies an annotation matrix against the relation
// sub-matrices restricted to rows = the annotation entities and
// columns = the target terms.
type Propagator struct {
	anno    *curation.Annotations
	sub     *relations.SubMatrix
	workers int

	log *log.Logger
}

// NewPropagator loads the relation sub-matrices for the entity
// columns of anno against the target terms to. The annotation
// columns are sorted before loading so that the matrix axes align.
// workers ≤ 0 selects CPU count minus one. If logger is nil the
// process default logger is used.
func NewPropagator(ix *relations.Index, anno *curation.Annotations, to []string, workers int, logger *log.Logger) (*Propagator, error) {
	if logger == nil {
		logger = log.Default()
	}
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}

	anno = anno.SortColumns()
	sub, err := ix.Sub(anno.Entities(), to)
	if err != nil {
		return nil, err
	}
	if len(sub.From) == 0 || len(sub.To) == 0 {
		return nil, ErrNoMatch
	}
	if len(sub.From) != anno.NEntities() {
		// Entities missing from the relation universe cannot take
		// part in the products; restrict the annotations to match.
		anno, err = anno.Select(sub.From)
		if err != nil {
			return nil, err
		}
	}
	return &Propagator{anno: anno, sub: sub, workers: workers, log: logger}, nil
}

// To returns the target term order of the result columns.
func (p *Propagator) To() []string { return p.sub.To }

// IDs returns the identity block aligned with the result rows.
func (p *Propagator) IDs() *curation.Ids { return p.anno.IDs() }

// Up propagates annotations up to the target terms: result[s][t] is
// 1 iff index s is positively annotated to t or a descendant of t.
func (p *Propagator) Up() (*mat.Dense, error) {
	hits, err := p.propagate(p.sub.Up)
	if err != nil {
		return nil, err
	}
	clamp(hits)
	return hits, nil
}

// Down propagates annotations down to the target terms: result[s][t]
// is 1 iff index s is positively annotated to t or an ancestor of t.
func (p *Propagator) Down() (*mat.Dense, error) {
	hits, err := p.propagate(p.sub.Down)
	if err != nil {
		return nil, err
	}
	clamp(hits)
	return hits, nil
}

// propagate computes anno · family in row chunks across the worker
// pool. Results are placed by chunk index, so the output row order
// is the annotation row order regardless of completion order.
func (p *Propagator) propagate(family *mat.Dense) (*mat.Dense, error) {
	rows := p.anno.NIndices()
	_, terms := family.Dims()
	if rows == 0 {
		return nil, ErrNoMatch
	}

	bounds := chunkBounds(rows)
	results := make([]*mat.Dense, len(bounds))

	var eg errgroup.Group
	eg.SetLimit(p.workers)
	for i, b := range bounds {
		i, b := i, b
		eg.Go(func() error {
			chunk := p.anno.Matrix().Slice(b[0], b[1], 0, p.anno.NEntities())
			var prod mat.Dense
			prod.Mul(chunk, family)
			results[i] = &prod
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := mat.NewDense(rows, terms, nil)
	for i, b := range bounds {
		out.Slice(b[0], b[1], 0, terms).(*mat.Dense).Copy(results[i])
	}
	return out, nil
}

// chunkBounds splits rows into len/chunkDivisor chunks (at least
// one), sized as evenly as possible with earlier chunks taking the
// remainder.
func chunkBounds(rows int) [][2]int {
	n := rows / chunkDivisor
	if n == 0 {
		n = 1
	}
	size := rows / n
	rem := rows % n
	bounds := make([][2]int, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rem {
			end++
		}
		bounds = append(bounds, [2]int{start, end})
		start = end
	}
	return bounds
}

// clamp caps every positive hit count at 1 in place.
func clamp(m *mat.Dense) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) > 1 {
				m.Set(i, j, 1)
			}
		}
	}
}

// warnMissing logs up to limit of the missing terms.
func warnMissing(logger *log.Logger, context string, missing []string) {
	if len(missing) == 0 {
		return
	}
	const limit = 10
	shown := missing
	suffix := ""
	if len(shown) > limit {
		shown = shown[:limit]
		suffix = fmt.Sprintf(" and %d more", len(missing)-limit)
	}
	logger.Printf("propagate: %d %s terms have no matching entities: %v%s", len(missing), context, shown, suffix)
}

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package relations loads the precomputed term×term ancestor and
// descendant matrices persisted for each ontology. The matrices trade
// graph walks for matrix lookups: membership extraction at query time
// never touches the ontology graph.
//
// The on-disk layout for an ontology is a directory holding
//
//	ids.txt             newline-delimited term IDs in canonical order
//	ancestors.tsv.gz    term×term 0/1 matrix, header = ids, row order = ids
//	descendants.tsv.gz  the transpose of ancestors.tsv.gz
//
// where ancestors[r][c] = 1 iff row term r is an ancestor of column
// term c. Every term is recorded as its own ancestor and descendant,
// so the diagonal is 1.
package relations

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

const (
	idsFile         = "ids.txt"
	ancestorsFile   = "ancestors.tsv.gz"
	descendantsFile = "descendants.tsv.gz"
)

// Index is a loaded relation index for one ontology. The ids vector
// is read at open time; matrix data is read per query with column
// pruning.
type Index struct {
	dir string
	ids []string
	pos map[string]int

	log *log.Logger
}

// Open reads the ids list for the ontology relation data in dir.
// If logger is nil the process default logger is used.
func Open(dir string, logger *log.Logger) (*Index, error) {
	if logger == nil {
		logger = log.Default()
	}
	ids, err := readIDs(filepath.Join(dir, idsFile))
	if err != nil {
		return nil, fmt.Errorf("relations: reading ids for %q: %w", dir, err)
	}
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := pos[id]; ok {
			return nil, fmt.Errorf("relations: duplicate term %q in %q", id, dir)
		}
		pos[id] = i
	}
	return &Index{dir: dir, ids: ids, pos: pos, log: logger}, nil
}

func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			ids = append(ids, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no term ids in %q", path)
	}
	return ids, nil
}

// IDs returns the canonical term order of the index.
func (ix *Index) IDs() []string { return ix.ids }

// Has reports whether term is in the index universe.
func (ix *Index) Has(term string) bool {
	_, ok := ix.pos[term]
	return ok
}

// AncestorsOf returns, for each term in subset present in the index,
// all terms recorded as its ancestor, including the term itself.
// Subset terms absent from the index are omitted and logged.
func (ix *Index) AncestorsOf(subset []string) (map[string][]string, error) {
	return ix.relatives(ancestorsFile, subset)
}

// DescendantsOf returns, for each term in subset present in the
// index, all terms recorded as its descendant, including the term
// itself. Subset terms absent from the index are omitted and logged.
func (ix *Index) DescendantsOf(subset []string) (map[string][]string, error) {
	return ix.relatives(descendantsFile, subset)
}

// relatives performs the set-membership extraction: unpivot the
// matrix restricted to the subset columns into (row, col, value)
// triples, keep nonzero values, and group rows by column term.
func (ix *Index) relatives(file string, subset []string) (map[string][]string, error) {
	cols := ix.known(subset)
	if len(cols) == 0 {
		return map[string][]string{}, nil
	}

	m := make(map[string][]string, len(cols))
	err := ix.scan(filepath.Join(ix.dir, file), func(row int, record []string) error {
		for _, c := range cols {
			switch record[c] {
			case "0":
			case "1":
				m[ix.ids[c]] = append(m[ix.ids[c]], ix.ids[row])
			default:
				return fmt.Errorf("invalid value %q at row %d col %d", record[c], row, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("relations: reading %q: %w", file, err)
	}
	return m, nil
}

// known maps subset terms to their column positions, dropping and
// logging unknown terms.
func (ix *Index) known(subset []string) []int {
	cols := make([]int, 0, len(subset))
	var missing int
	for _, t := range subset {
		i, ok := ix.pos[t]
		if !ok {
			missing++
			continue
		}
		cols = append(cols, i)
	}
	if missing != 0 {
		ix.log.Printf("relations: %d of %d terms not in index", missing, len(subset))
	}
	return cols
}

// SubMatrix holds the relation sub-matrices for a propagation, both
// oriented rows = From, cols = To.
type SubMatrix struct {
	// From and To are the term orders of the matrix axes. They
	// are the requested terms restricted to the index universe,
	// original order preserved.
	From, To []string

	// Up[i][j] = 1 iff To[j] is an ancestor of From[i]; a chunk
	// product against Up counts annotated descendants of To[j].
	Up *mat.Dense

	// Down[i][j] = 1 iff To[j] is a descendant of From[i]; a
	// chunk product against Down counts annotated ancestors of
	// To[j].
	Down *mat.Dense
}

// Sub loads the ancestor matrix restricted to the given from and to
// term sets and orients it for propagation. Terms unknown to the
// index are dropped with a warning. Both sub-matrices come from a
// single column-pruned pass over the ancestors file.
func (ix *Index) Sub(from, to []string) (*SubMatrix, error) {
	fromUsed, fromPos := ix.subset(from)
	toUsed, toPos := ix.subset(to)

	sub := &SubMatrix{From: fromUsed, To: toUsed}
	if len(fromUsed) == 0 || len(toUsed) == 0 {
		// Nothing to load; the caller decides whether an empty
		// intersection is an error.
		return sub, nil
	}
	sub.Up = mat.NewDense(len(fromUsed), len(toUsed), nil)
	sub.Down = mat.NewDense(len(fromUsed), len(toUsed), nil)

	err := ix.scan(filepath.Join(ix.dir, ancestorsFile), func(row int, record []string) error {
		// Row r of the ancestors matrix lists the terms r is an
		// ancestor of. A row in To fills a column of Up; a row in
		// From fills a row of Down.
		if t, ok := toPos[row]; ok {
			for f, fi := range fromPos {
				if err := setBit(sub.Up, fi, t, record[f]); err != nil {
					return err
				}
			}
		}
		if f, ok := fromPos[row]; ok {
			for t, ti := range toPos {
				if err := setBit(sub.Down, f, ti, record[t]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("relations: reading %q: %w", ancestorsFile, err)
	}
	return sub, nil
}

// subset returns the known terms of s in order and a matrix-position
// to output-position mapping.
func (ix *Index) subset(s []string) ([]string, map[int]int) {
	used := make([]string, 0, len(s))
	pos := make(map[int]int, len(s))
	var missing int
	for _, t := range s {
		i, ok := ix.pos[t]
		if !ok {
			missing++
			continue
		}
		if _, dup := pos[i]; dup {
			continue
		}
		pos[i] = len(used)
		used = append(used, t)
	}
	if missing != 0 {
		ix.log.Printf("relations: %d of %d terms not in index", missing, len(s))
	}
	return used, pos
}

func setBit(m *mat.Dense, r, c int, v string) error {
	switch v {
	case "0":
	case "1":
		m.Set(r, c, 1)
	default:
		return fmt.Errorf("invalid value %q", v)
	}
	return nil
}

// scan streams the matrix file at path, validating its shape against
// the ids vector and calling fn for each data row.
func (ix *Index) scan(path string, fn func(row int, record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	r := csv.NewReader(gz)
	r.Comma = '\t'
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if len(header) != len(ix.ids) {
		return fmt.Errorf("header has %d terms, ids list has %d", len(header), len(ix.ids))
	}
	for i, h := range header {
		if h != ix.ids[i] {
			return fmt.Errorf("header term %q at %d does not match ids list term %q", h, i, ix.ids[i])
		}
	}

	row := 0
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if row >= len(ix.ids) {
			return fmt.Errorf("more rows than the %d ids listed", len(ix.ids))
		}
		if err := fn(row, record); err != nil {
			return err
		}
		row++
	}
	if row != len(ix.ids) {
		return fmt.Errorf("got %d rows, ids list has %d", row, len(ix.ids))
	}
	return nil
}

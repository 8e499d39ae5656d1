// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package relations

import (
	"bufio"
	"compress/gzip"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"ontolabel/internal/ontology"
)

// FromGraph derives the canonical ids vector and the ancestors matrix
// from an ontology graph. The matrix is square over g.Nodes() with
// ancestors[r][c] = 1 iff r is an ancestor of c, and a 1 diagonal so
// that every term is its own ancestor.
func FromGraph(g *ontology.Graph) ([]string, *mat.Dense) {
	ids := g.Nodes()
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}

	anc := mat.NewDense(len(ids), len(ids), nil)
	for r, id := range ids {
		anc.Set(r, r, 1)
		for _, d := range g.Descendants(id) {
			anc.Set(r, pos[d], 1)
		}
	}
	return ids, anc
}

// Write persists the relation data for one ontology into dir,
// creating it if needed: the ids list, the ancestors matrix, and its
// transpose as the descendants matrix.
func Write(dir string, ids []string, anc *mat.Dense) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeIDs(filepath.Join(dir, idsFile), ids); err != nil {
		return err
	}
	if err := writeMatrix(filepath.Join(dir, ancestorsFile), ids, anc); err != nil {
		return err
	}
	return writeMatrix(filepath.Join(dir, descendantsFile), ids, anc.T())
}

func writeIDs(path string, ids []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	for _, id := range ids {
		w.WriteString(id)
		w.WriteByte('\n')
	}
	return w.Flush()
}

func writeMatrix(path string, ids []string, m mat.Matrix) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	gz := gzip.NewWriter(f)
	w := bufio.NewWriter(gz)

	for c, id := range ids {
		if c != 0 {
			w.WriteByte('\t')
		}
		w.WriteString(id)
	}
	w.WriteByte('\n')

	rows, cols := m.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c != 0 {
				w.WriteByte('\t')
			}
			if m.At(r, c) != 0 {
				w.WriteByte('1')
			} else {
				w.WriteByte('0')
			}
		}
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return gz.Close()
}

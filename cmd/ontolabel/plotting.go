// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"ontolabel/internal/curation"
)

// plotPositives plots the positive label count for each target term
// as a bar chart saved to path.
func plotPositives(path string, c curation.Curation) error {
	terms := c.Entities()
	m := c.Matrix()

	counts := make(plotter.Values, len(terms))
	for j := range terms {
		for i := 0; i < c.NIndices(); i++ {
			if m.At(i, j) == curation.LabelPositive {
				counts[j]++
			}
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Positive labels\n%d rows", c.NIndices())
	p.Y.Label.Text = "positive count"
	p.X.Tick.Label.Rotation = 1.2
	p.X.Tick.Label.XAlign = -0.9

	bars, err := plotter.NewBarChart(counts, vg.Points(20))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(terms...)

	width := vg.Length(len(terms)) * vg.Centimeter
	if width < 18*vg.Centimeter {
		width = 18 * vg.Centimeter
	}
	return p.Save(width, 15*vg.Centimeter, path)
}

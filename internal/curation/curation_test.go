// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package curation

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

var (
	testTermCols = []string{"MONDO:0001657", "MONDO:0004790", "MONDO:0005147", "MONDO:0000000"}
	testIDCols   = []string{"sample", "series", "platform"}
	testIDRows   = [][]string{
		{"GSM1", "GSE1", "GPL10"},
		{"GSM2", "GSE1", "GPL10"},
		{"GSM3", "GSE2", "GPL23"},
		{"GSM4", "GSE2", "GPL23"},
	}
	testValues = []float64{
		1, 0, 1, 0,
		0, 1, 1, 0,
		1, 0, 0, 1,
		0, 1, 0, 1,
	}
)

func testAnnotations(t *testing.T) *Annotations {
	t.Helper()
	ids, err := NewIds(testIDCols, testIDRows, "sample")
	if err != nil {
		t.Fatalf("unexpected error building ids: %v", err)
	}
	a, err := NewAnnotations(NewTable(testTermCols, 4, append([]float64(nil), testValues...)), ids, []string{"series", "platform"})
	if err != nil {
		t.Fatalf("unexpected error building annotations: %v", err)
	}
	return a
}

func TestProperties(t *testing.T) {
	a := testAnnotations(t)
	if !reflect.DeepEqual(a.Entities(), testTermCols) {
		t.Errorf("unexpected entities: %v", a.Entities())
	}
	if got, want := a.Index(), []string{"GSM1", "GSM2", "GSM3", "GSM4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected index: got %v want %v", got, want)
	}
	if got, want := a.Groups("series"), []string{"GSE1", "GSE1", "GSE2", "GSE2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected groups: got %v want %v", got, want)
	}
	if got, want := a.UniqueGroups("series"), []string{"GSE1", "GSE2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected unique groups: got %v want %v", got, want)
	}
	if a.NIndices() != 4 || a.NEntities() != 4 {
		t.Errorf("unexpected dims: %d×%d", a.NIndices(), a.NEntities())
	}
}

func TestValidate(t *testing.T) {
	ids, err := NewIds(testIDCols, testIDRows[:3], "sample")
	if err != nil {
		t.Fatal(err)
	}
	// Row misalignment.
	if _, err := NewAnnotations(NewTable(testTermCols, 4, append([]float64(nil), testValues...)), ids, []string{"series"}); err == nil {
		t.Error("expected error for row count mismatch")
	}
	// Identity/entity overlap.
	ids4, err := NewIds(testIDCols, testIDRows, "sample")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewAnnotations(NewTable([]string{"sample", "MONDO:0005147"}, 4, make([]float64, 8)), ids4, []string{"series"}); err == nil {
		t.Error("expected error for identity column in entity block")
	}
	// Duplicate index IDs.
	dup, err := NewIds(testIDCols, [][]string{
		{"GSM1", "GSE1", "GPL10"},
		{"GSM1", "GSE1", "GPL10"},
	}, "sample")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewAnnotations(NewTable(testTermCols, 2, make([]float64, 8)), dup, []string{"series"}); err == nil {
		t.Error("expected error for duplicate index IDs")
	}
}

func TestSelectKeepsIDs(t *testing.T) {
	a := testAnnotations(t)
	s, err := a.Select([]string{"MONDO:0001657", "MONDO:0005147"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := s.Entities(), []string{"MONDO:0001657", "MONDO:0005147"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected entities: got %v want %v", got, want)
	}
	if s.NIndices() != a.NIndices() {
		t.Errorf("select changed row count: %d != %d", s.NIndices(), a.NIndices())
	}
	if _, err := a.Select([]string{"MONDO:nope"}); err == nil {
		t.Error("expected error selecting absent column")
	}
}

func TestFilterMasksBothBlocks(t *testing.T) {
	a := testAnnotations(t)
	f := a.Filter(Positive("MONDO:0001657"))
	if got, want := f.Index(), []string{"GSM1", "GSM3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected index after filter: got %v want %v", got, want)
	}
	if f.NIndices() != f.IDs().Len() {
		t.Errorf("blocks out of alignment: %d != %d", f.NIndices(), f.IDs().Len())
	}
	want := mat.NewDense(2, 4, []float64{
		1, 0, 1, 0,
		1, 0, 0, 1,
	})
	if !mat.Equal(f.Matrix(), want) {
		t.Errorf("unexpected data after filter:\n%v", mat.Formatted(f.Matrix()))
	}
}

func TestFilterAnyPositive(t *testing.T) {
	a := testAnnotations(t)
	f := a.Filter(AnyPositive("MONDO:0005147", "MONDO:0000000"))
	if got, want := f.Index(), []string{"GSM1", "GSM2", "GSM3", "GSM4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected index after filter: got %v want %v", got, want)
	}
	empty := a.Filter(AnyPositive())
	if empty.NIndices() != 0 {
		t.Errorf("expected empty result, got %d rows", empty.NIndices())
	}
}

func TestSlice(t *testing.T) {
	a := testAnnotations(t)
	s := a.Slice(1, 2)
	if got, want := s.Index(), []string{"GSM2", "GSM3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected index after slice: got %v want %v", got, want)
	}
	if s.NIndices() != s.IDs().Len() {
		t.Errorf("blocks out of alignment: %d != %d", s.NIndices(), s.IDs().Len())
	}
	rest := a.Slice(3, -1)
	if got, want := rest.Index(), []string{"GSM4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected index for open slice: got %v want %v", got, want)
	}
}

func TestCollapse(t *testing.T) {
	a := testAnnotations(t)
	c, err := a.Collapse("series")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Collapsed() {
		t.Error("collapsed flag not set")
	}
	if got, want := c.Index(), []string{"GSE1", "GSE2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected collapsed index: got %v want %v", got, want)
	}
	if got, want := c.GroupCols(), []string{"platform"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected group cols: got %v want %v", got, want)
	}
	// Union within groups: GSE1 rows are [1,0,1,0] and [0,1,1,0];
	// GSE2 rows are [1,0,0,1] and [0,1,0,1].
	want := mat.NewDense(2, 4, []float64{
		1, 1, 1, 0,
		1, 1, 0, 1,
	})
	if !mat.Equal(c.Matrix(), want) {
		t.Errorf("unexpected collapsed data:\n%v", mat.Formatted(c.Matrix()))
	}

	// Collapsing on the consumed column again must fail.
	if _, err := c.Collapse("series"); err == nil {
		t.Error("expected error collapsing on consumed column")
	}
}

func TestCollapseAllZero(t *testing.T) {
	ids, err := NewIds([]string{"sample", "series"}, [][]string{
		{"GSM1", "GSE1"},
		{"GSM2", "GSE1"},
	}, "sample")
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAnnotations(NewTable([]string{"MONDO:A", "MONDO:B"}, 2, make([]float64, 4)), ids, []string{"series"})
	if err != nil {
		t.Fatal(err)
	}
	c, err := a.Collapse("series")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := mat.NewDense(1, 2, nil); !mat.Equal(c.Matrix(), want) {
		t.Errorf("unexpected collapsed data:\n%v", mat.Formatted(c.Matrix()))
	}
}

func TestCollapseInPlace(t *testing.T) {
	a := testAnnotations(t)
	if err := a.CollapseInPlace("series"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Collapsed() || a.NIndices() != 2 {
		t.Errorf("collapse in place failed: collapsed=%t rows=%d", a.Collapsed(), a.NIndices())
	}
}

func TestAddIds(t *testing.T) {
	ids, err := NewIds([]string{"sample", "series"}, [][]string{
		{"GSM1", "GSE1"},
		{"GSM2", "GSE1"},
	}, "sample")
	if err != nil {
		t.Fatal(err)
	}
	l, err := NewLabels(NewTable([]string{"MONDO:A"}, 2, []float64{1, -1}), ids, []string{"series"})
	if err != nil {
		t.Fatal(err)
	}

	more, err := NewIds([]string{"sample", "organism"}, [][]string{
		{"GSM2", "human"},
		{"GSM1", "mouse"},
	}, "sample")
	if err != nil {
		t.Fatal(err)
	}
	j := l.AddIds(more)
	if got, want := j.Index(), []string{"GSM1", "GSM2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("join reordered rows: got %v want %v", got, want)
	}
	if got, want := j.Groups("organism"), []string{"mouse", "human"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected joined column: got %v want %v", got, want)
	}

	// A missing index is an integrity bug.
	short, err := NewIds([]string{"sample", "organism"}, [][]string{{"GSM1", "mouse"}}, "sample")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing index in join")
		}
	}()
	l.AddIds(short)
}

func TestSubsetIndex(t *testing.T) {
	a := testAnnotations(t)
	l, err := NewLabels(a.Table(), a.IDs(), a.GroupCols())
	if err != nil {
		t.Fatal(err)
	}
	s := l.SubsetIndex([]string{"GSM4", "GSM2", "GSM9"})
	if got, want := s.Index(), []string{"GSM2", "GSM4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected subset index: got %v want %v", got, want)
	}
}

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import (
	"io"
	"log"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/graph/topo"

	"ontolabel/internal/obo"
)

var testTerms = []obo.Term{
	{ID: "MONDO:0000001"},
	{ID: "MONDO:0000A", IsA: []string{"MONDO:0000001"}},
	{ID: "MONDO:0000B", IsA: []string{"MONDO:0000A"}},
	{ID: "MONDO:0000C", IsA: []string{"MONDO:0000A"}},
	{ID: "MONDO:0000D", IsA: []string{"MONDO:0000B"}},
	{ID: "MONDO:0000X", IsA: []string{"MONDO:0000001"}, Obsolete: true},
	{ID: "UBERON:0001016", PartOf: []string{"MONDO:0000001"}},
}

func testGraph(t *testing.T) *Graph {
	t.Helper()
	return New(&obo.Ontology{Name: "MONDO", Terms: testTerms}, log.New(io.Discard, "", 0))
}

func TestAncestorsDescendants(t *testing.T) {
	g := testGraph(t)

	tests := []struct {
		term string
		up   bool
		want []string
	}{
		{term: "MONDO:0000D", up: true, want: []string{"MONDO:0000001", "MONDO:0000A", "MONDO:0000B"}},
		{term: "MONDO:0000A", up: true, want: []string{"MONDO:0000001"}},
		{term: "MONDO:0000001", up: true, want: nil},
		{term: "MONDO:0000A", up: false, want: []string{"MONDO:0000B", "MONDO:0000C", "MONDO:0000D"}},
		{term: "MONDO:0000D", up: false, want: nil},
		{term: "MONDO:0000X", up: false, want: nil},
	}
	for _, test := range tests {
		var got []string
		if test.up {
			got = g.Ancestors(test.term)
		} else {
			got = g.Descendants(test.term)
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("unexpected reachability for %s (up=%t): got %v want %v",
				test.term, test.up, got, test.want)
		}
	}
}

func TestObsoleteExcluded(t *testing.T) {
	g := testGraph(t)
	if g.Has("MONDO:0000X") {
		t.Error("obsolete term present in graph")
	}
}

func TestBatchedReachability(t *testing.T) {
	g := testGraph(t)

	got := g.DescendantsFrom([]string{"MONDO:0000A", "MONDO:9999999"})
	want := map[string][]string{
		"MONDO:0000A": {"MONDO:0000B", "MONDO:0000C", "MONDO:0000D"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected descendants map: got %v want %v", got, want)
	}

	up := g.AncestorsFrom([]string{"MONDO:0000B"})
	wantUp := map[string][]string{
		"MONDO:0000B": {"MONDO:0000001", "MONDO:0000A"},
	}
	if !reflect.DeepEqual(up, wantUp) {
		t.Errorf("unexpected ancestors map: got %v want %v", up, wantUp)
	}
}

func TestLeaves(t *testing.T) {
	g := testGraph(t)
	want := []string{"MONDO:0000C", "MONDO:0000D", "UBERON:0001016"}
	if got := g.Leaves(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected leaves: got %v want %v", got, want)
	}
}

func TestPropagateTerm(t *testing.T) {
	g := testGraph(t)
	tests := []struct {
		query, ref string
		want       int
	}{
		{"MONDO:0000D", "MONDO:0000A", 1},
		{"MONDO:0000001", "MONDO:0000A", 0},
		{"MONDO:0000C", "MONDO:0000B", -1},
		{"MONDO:0000A", "MONDO:0000A", -1},
	}
	for _, test := range tests {
		if got := g.PropagateTerm(test.query, test.ref); got != test.want {
			t.Errorf("PropagateTerm(%s, %s) = %d, want %d", test.query, test.ref, got, test.want)
		}
	}
}

// The known UBERON fiber/fiber-network reciprocal relation must not
// introduce a cycle.
func TestPurkinjeCycleBroken(t *testing.T) {
	terms := []obo.Term{
		{ID: purkinjeFiber, PartOf: []string{purkinjeFiberNetwork}},
		{ID: purkinjeFiberNetwork, PartOf: []string{purkinjeFiber}},
	}
	g := New(&obo.Ontology{Name: "UBERON", Terms: terms}, log.New(io.Discard, "", 0))

	if _, err := topo.Sort(g.Directed()); err != nil {
		t.Fatalf("graph is not acyclic: %v", err)
	}
	want := []string{purkinjeFiber}
	if got := g.Descendants(purkinjeFiberNetwork); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected descendants of fiber network: got %v want %v", got, want)
	}
	if got := g.Descendants(purkinjeFiber); got != nil {
		t.Errorf("unexpected descendants of fiber: got %v", got)
	}
}

func TestGraphIsDAG(t *testing.T) {
	g := testGraph(t)
	if _, err := topo.Sort(g.Directed()); err != nil {
		t.Fatalf("graph is not acyclic: %v", err)
	}
}

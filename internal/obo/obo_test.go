// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obo

import (
	"reflect"
	"strings"
	"testing"
)

const testDoc = `format-version: 1.2
data-version: releases/2025-06-03
ontology: mondo

[Term]
id: MONDO:0000001
name: Disease
synonym: "condition" EXACT []
synonym: "disorder" EXACT [NCIT:C2991]
xref: MESH:D004194
xref: UMLS:C0012634

[Term]
id: MONDO:0005071
name: nervous system disorder
is_a: MONDO:0000001 ! disease

[Term]
id: MONDO:0005560
name: old brain disease
is_a: MONDO:0005071
is_obsolete: true

[Typedef]
id: part_of
name: part of

[Term]
id: UBERON:0000955
name: brain
relationship: part_of UBERON:0001016 ! central nervous system
`

func TestParse(t *testing.T) {
	ont, err := Parse(strings.NewReader(testDoc), "mondo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ont.Name != "MONDO" {
		t.Errorf("unexpected ontology name: got %q want %q", ont.Name, "MONDO")
	}
	if ont.DataVersion != "releases/2025-06-03" {
		t.Errorf("unexpected data version: got %q", ont.DataVersion)
	}

	want := []Term{
		{
			ID: "MONDO:0000001", Name: "disease",
			Synonyms: []string{"condition", "disorder"},
			Xrefs:    []string{"MESH:D004194", "UMLS:C0012634"},
		},
		{
			ID: "MONDO:0005071", Name: "nervous system disorder",
			IsA: []string{"MONDO:0000001"},
		},
		{
			ID: "MONDO:0005560", Name: "old brain disease",
			IsA: []string{"MONDO:0005071"}, Obsolete: true,
		},
		{
			ID: "UBERON:0000955", Name: "brain",
			PartOf: []string{"UBERON:0001016"},
		},
	}
	if !reflect.DeepEqual(ont.Terms, want) {
		t.Errorf("unexpected terms:\ngot:  %+v\nwant: %+v", ont.Terms, want)
	}
}

func TestNames(t *testing.T) {
	ont, err := Parse(strings.NewReader(testDoc), "mondo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := ont.Names()
	want := map[string]string{
		"MONDO:0000001": "disease",
		"MONDO:0005071": "nervous system disorder",
		"UBERON:0000955": "brain",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("unexpected names:\ngot:  %v\nwant: %v", names, want)
	}
}

func TestXrefMap(t *testing.T) {
	ont, err := Parse(strings.NewReader(testDoc), "mondo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ont.XrefMap("MESH", false)
	if want := map[string]string{"MONDO:0000001": "MESH:D004194"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected xref map: got %v want %v", got, want)
	}
	got = ont.XrefMap("MESH", true)
	if want := map[string]string{"MESH:D004194": "MONDO:0000001"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected reverse map: got %v want %v", got, want)
	}
}

func TestFirstIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" MONDO:0000001 ! disease", "MONDO:0000001"},
		{" {source=\"x\"} UBERON:0001016", "UBERON:0001016"},
		{" ! stray comment", ""},
		{"", ""},
	}
	for _, test := range tests {
		got := firstIdent(test.in)
		if got != test.want {
			t.Errorf("firstIdent(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"reflect"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "anno.db"), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	recs := []Record{
		{Sample: "GSM1", Series: "GSE1", Platform: "GPL1", Attribute: "tissue",
			Source: "alpha", Term: "UBERON:0000001", Value: "brain", Ecode: "expert-curated", Organism: "homo sapiens"},
		// Second source agrees; the one-hot entry must not double.
		{Sample: "GSM1", Series: "GSE1", Platform: "GPL1", Attribute: "tissue",
			Source: "beta", Term: "UBERON:0000001", Value: "brain", Ecode: "expert-curated", Organism: "homo sapiens"},
		{Sample: "GSM2", Series: "GSE1", Platform: "GPL1", Attribute: "tissue",
			Source: "alpha", Term: "UBERON:0000002", Value: "liver", Ecode: "expert-curated", Organism: "homo sapiens"},
		// Unidentified term.
		{Sample: "GSM3", Series: "GSE1", Platform: "GPL1", Attribute: "tissue",
			Source: "alpha", Term: "na", Value: "unknown", Ecode: "expert-curated", Organism: "homo sapiens"},
		// Series-wide annotation with no sample accession.
		{Series: "GSE2", Platform: "GPL2", Attribute: "tissue",
			Source: "alpha", Term: "UBERON:0000001", Value: "brain", Ecode: "expert-curated", Organism: "homo sapiens"},
		// Weaker evidence.
		{Sample: "GSM4", Series: "GSE2", Platform: "GPL2", Attribute: "tissue",
			Source: "gamma", Term: "UBERON:0000002", Value: "liver", Ecode: "predicted", Organism: "homo sapiens"},
		// Wrong species.
		{Sample: "GSM5", Series: "GSE3", Platform: "GPL3", Attribute: "tissue",
			Source: "alpha", Term: "UBERON:0000001", Value: "brain", Ecode: "expert-curated", Organism: "mus musculus"},
	}
	if err := s.Add(context.Background(), recs); err != nil {
		t.Fatalf("failed to add records: %v", err)
	}
	return s
}

func TestAnnotationsIndexLevel(t *testing.T) {
	s := testStore(t)
	anno, err := s.Annotations(context.Background(), Query{Attribute: "tissue", Ecodes: []string{"expert-curated"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := anno.Index(), []string{"GSM1", "GSM2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected index: got %v want %v", got, want)
	}
	if got, want := anno.Entities(), []string{"UBERON:0000001", "UBERON:0000002"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected entities: got %v want %v", got, want)
	}
	want := [][]float64{{1, 0}, {0, 1}}
	for i, row := range want {
		for j, v := range row {
			if got := anno.Matrix().At(i, j); got != v {
				t.Errorf("unexpected value at %d,%d: got %v want %v", i, j, got, v)
			}
		}
	}
	if got, want := anno.IDs().Columns(), []string{"sample", "series", "platform"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected id columns: got %v want %v", got, want)
	}
}

func TestAnnotationsGroupLevel(t *testing.T) {
	s := testStore(t)
	anno, err := s.Annotations(context.Background(), Query{Attribute: "tissue", Level: "group"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := anno.Index(), []string{"GSE2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected index: got %v want %v", got, want)
	}
	if got, want := anno.IDs().Columns(), []string{"series", "platform"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected id columns: got %v want %v", got, want)
	}
	if got := anno.Matrix().At(0, 0); got != 1 {
		t.Errorf("unexpected value: got %v want 1", got)
	}
}

func TestAnnotationsAnyEcode(t *testing.T) {
	s := testStore(t)
	anno, err := s.Annotations(context.Background(), Query{Attribute: "tissue", Ecodes: []string{"any"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := anno.Index(), []string{"GSM1", "GSM2", "GSM4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected index: got %v want %v", got, want)
	}
}

func TestAnnotationsOrganism(t *testing.T) {
	s := testStore(t)
	anno, err := s.Annotations(context.Background(), Query{Attribute: "tissue", Organism: "mus musculus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := anno.Index(), []string{"GSM5"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected index: got %v want %v", got, want)
	}
}

func TestAnnotationsNoMatch(t *testing.T) {
	s := testStore(t)
	_, err := s.Annotations(context.Background(), Query{Attribute: "disease"})
	if !errors.Is(err, ErrNoAnnotations) {
		t.Errorf("expected ErrNoAnnotations, got %v", err)
	}
}

func TestQueryValidation(t *testing.T) {
	s := testStore(t)
	tests := []Query{
		{Attribute: "tissue", Level: "study"},
		{Attribute: "tissue", Anchor: "name"},
		{Attribute: "tissue", Ecodes: []string{"guessed"}},
	}
	for _, q := range tests {
		if _, err := s.Annotations(context.Background(), q); err == nil {
			t.Errorf("expected error for query %+v", q)
		}
	}
}

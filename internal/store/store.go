// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store persists curated sample annotations in SQLite and
// loads them as one-hot annotation curations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"ontolabel/internal/curation"
)

// Annotation attributes with curated vocabularies.
var Attributes = []string{"tissue", "disease", "sex", "age", "developmental stage", "organism"}

// Evidence codes in decreasing order of curation confidence. The
// pseudo-code "any" admits all of them.
var Ecodes = []string{"expert-curated", "semi-curated", "predicted"}

// Placeholder values recorded where an annotator left no entry.
var naValues = map[string]bool{"": true, "na": true, "NA": true}

// ErrNoAnnotations is returned when a query matches nothing.
var ErrNoAnnotations = errors.New("store: no annotations match query")

// Record is one source annotation of one sample attribute. Absent
// accessions and terms are stored as "NA".
type Record struct {
	Sample   string // index accession, e.g. GSM
	Series   string // group accession, e.g. GSE
	Platform string // platform accession, e.g. GPL

	Attribute string // tissue, disease, sex, age, ...
	Source    string // annotating source
	Term      string // standardized ontology term or category
	Value     string // free text recorded by the annotator
	Ecode     string // evidence code
	Organism  string
}

// Store is a SQLite-backed annotation database.
type Store struct {
	db  *sql.DB
	log *log.Logger
}

// Open opens or creates the annotation database at path. If logger
// is nil the process default logger is used.
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS annotations (
		sample    TEXT NOT NULL,
		series    TEXT NOT NULL,
		platform  TEXT NOT NULL,
		attribute TEXT NOT NULL,
		source    TEXT NOT NULL,
		term      TEXT NOT NULL,
		value     TEXT NOT NULL,
		ecode     TEXT NOT NULL,
		organism  TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create annotations table: %w", err)
	}
	return &Store{db: db, log: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Add inserts the given records in one transaction.
func (s *Store) Add(ctx context.Context, recs []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO annotations
		(sample, series, platform, attribute, source, term, value, ecode, organism)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for _, r := range recs {
		_, err := stmt.ExecContext(ctx, na(r.Sample), na(r.Series), na(r.Platform),
			r.Attribute, r.Source, na(r.Term), na(r.Value), r.Ecode, r.Organism)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", r.Sample, err)
		}
	}
	return tx.Commit()
}

// Query selects annotations for one attribute.
type Query struct {
	Attribute string
	Ecodes    []string // nil or "any" admits every evidence code
	Organism  string   // defaults to "homo sapiens"
	Level     string   // "index" (per sample) or "group" (per series)
	Anchor    string   // "id" (standardized terms) or "value" (free text)
}

func (q *Query) defaults() error {
	if q.Organism == "" {
		q.Organism = "homo sapiens"
	}
	if q.Level == "" {
		q.Level = "index"
	}
	if q.Level != "index" && q.Level != "group" {
		return fmt.Errorf("store: invalid level %q", q.Level)
	}
	if q.Anchor == "" {
		q.Anchor = "id"
	}
	if q.Anchor != "id" && q.Anchor != "value" {
		return fmt.Errorf("store: invalid anchor %q", q.Anchor)
	}
	if len(q.Ecodes) == 0 || (len(q.Ecodes) == 1 && q.Ecodes[0] == "any") {
		q.Ecodes = Ecodes
		return nil
	}
	for _, e := range q.Ecodes {
		if !contains(Ecodes, e) {
			return fmt.Errorf("store: invalid evidence code %q", e)
		}
	}
	return nil
}

// Annotations loads the one-hot annotation curation for q. Entries
// with placeholder accessions or terms at the queried level are
// dropped; at group level only series-wide entries (those without a
// sample accession) are used.
func (s *Store) Annotations(ctx context.Context, q Query) (*curation.Annotations, error) {
	if err := q.defaults(); err != nil {
		return nil, err
	}

	anchor := "term"
	if q.Anchor == "value" {
		anchor = "value"
	}
	args := []any{q.Attribute, q.Organism}
	marks := make([]string, len(q.Ecodes))
	for i, e := range q.Ecodes {
		marks[i] = "?"
		args = append(args, e)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT sample, series, platform, %s FROM annotations
		 WHERE attribute = ? AND organism = ? AND ecode IN (%s)`,
		anchor, strings.Join(marks, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("select annotations: %w", err)
	}
	defer rows.Close()

	p := newPivot(q.Level)
	for rows.Next() {
		var sample, series, platform, term string
		if err := rows.Scan(&sample, &series, &platform, &term); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		p.add(sample, series, platform, term)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(p.order) == 0 {
		return nil, fmt.Errorf("attribute %q organism %q ecodes %v: %w",
			q.Attribute, q.Organism, q.Ecodes, ErrNoAnnotations)
	}
	return p.curation()
}

func na(s string) string {
	if naValues[s] {
		return "NA"
	}
	return s
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package obo provides a parser for OBO flat files holding the
// ontologies used for sample curation (MONDO, UBERON and CL).
package obo

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Term is a single ontology term entry. Only the fields needed for
// graph construction and term bookkeeping are retained.
type Term struct {
	ID        string
	Name      string
	Namespace string

	// IsA and PartOf hold the IDs of the term's parents
	// by relation kind.
	IsA    []string
	PartOf []string

	// Synonyms holds the synonym texts without scope
	// qualifiers.
	Synonyms []string

	// Xrefs holds cross references to terms in other
	// ontologies, e.g. "MESH:D007680".
	Xrefs []string

	Obsolete bool
}

// Ontology is a parsed OBO document.
type Ontology struct {
	// Name is the ontology namespace in upper case,
	// e.g. "MONDO".
	Name string

	// DataVersion is the data-version header field
	// if one was present.
	DataVersion string

	Terms []Term
}

const scannerBuffer = 1 << 20

// Parse reads an OBO document from r. Non-Term stanzas are skipped.
// Obsolete terms are retained with their Obsolete flag set; graph
// construction is responsible for excluding them.
func Parse(r io.Reader, name string) (*Ontology, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, scannerBuffer), scannerBuffer)

	ont := &Ontology{Name: strings.ToUpper(name)}
	pool := make(map[string]string)

	inTerm := false
	var cur Term
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		switch {
		case line == "":
			continue
		case line == "[Term]":
			if inTerm && cur.ID != "" {
				ont.Terms = append(ont.Terms, cur)
			}
			cur = Term{}
			inTerm = true
			continue
		case strings.HasPrefix(line, "["):
			// Typedef or other stanza.
			if inTerm && cur.ID != "" {
				ont.Terms = append(ont.Terms, cur)
				cur = Term{}
			}
			inTerm = false
			continue
		}
		if !inTerm {
			if v, ok := cutTag(line, "data-version"); ok {
				ont.DataVersion = v
			}
			continue
		}
		parseTermLine(&cur, line, pool)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("obo: scan failed: %w", err)
	}
	if inTerm && cur.ID != "" {
		ont.Terms = append(ont.Terms, cur)
	}

	return ont, nil
}

// ParseFile reads the OBO document at path, transparently
// decompressing gzip input.
func ParseFile(path, name string) (*Ontology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return Parse(r, name)
}

func parseTermLine(t *Term, line string, pool map[string]string) {
	switch {
	case strings.HasPrefix(line, "id:"):
		t.ID = strings.TrimSpace(line[len("id:"):])
	case strings.HasPrefix(line, "name:"):
		t.Name = strings.ToLower(strings.TrimSpace(line[len("name:"):]))
	case strings.HasPrefix(line, "namespace:"):
		t.Namespace = intern(pool, strings.TrimSpace(line[len("namespace:"):]))
	case strings.HasPrefix(line, "is_a:"):
		if id := firstIdent(line[len("is_a:"):]); id != "" {
			t.IsA = append(t.IsA, id)
		}
	case strings.HasPrefix(line, "relationship: part_of"):
		if id := firstIdent(line[len("relationship: part_of"):]); id != "" {
			t.PartOf = append(t.PartOf, id)
		}
	case strings.HasPrefix(line, "synonym:"):
		if s := quoted(line[len("synonym:"):]); s != "" {
			t.Synonyms = append(t.Synonyms, strings.ToLower(s))
		}
	case strings.HasPrefix(line, "xref:"):
		if id := firstIdent(line[len("xref:"):]); id != "" {
			t.Xrefs = append(t.Xrefs, id)
		}
	case strings.HasPrefix(line, "is_obsolete:"):
		t.Obsolete = strings.TrimSpace(line[len("is_obsolete:"):]) == "true"
	}
}

// cutTag returns the value of the header line if it carries the
// given tag, reporting whether the tag was present.
func cutTag(line, tag string) (string, bool) {
	if !strings.HasPrefix(line, tag+":") {
		return "", false
	}
	return strings.TrimSpace(line[len(tag)+1:]), true
}

// firstIdent returns the first CURIE-shaped identifier in s,
// an upper/lower-case prefix and a local part joined by a colon.
func firstIdent(s string) string {
	for _, f := range strings.Fields(s) {
		if f == "!" {
			break
		}
		i := strings.IndexByte(f, ':')
		if i < 1 || i == len(f)-1 {
			continue
		}
		if isIdentPrefix(f[:i]) {
			return f
		}
	}
	return ""
}

func isIdentPrefix(s string) bool {
	for _, r := range s {
		switch {
		case 'A' <= r && r <= 'Z':
		case 'a' <= r && r <= 'z':
		case r == '_':
		default:
			return false
		}
	}
	return s != ""
}

// quoted returns the first double-quoted string in s, or "".
func quoted(s string) string {
	i := strings.IndexByte(s, '"')
	if i < 0 {
		return ""
	}
	j := strings.IndexByte(s[i+1:], '"')
	if j < 0 {
		return ""
	}
	return s[i+1 : i+1+j]
}

func intern(pool map[string]string, s string) string {
	if t, ok := pool[s]; ok {
		return t
	}
	pool[s] = s
	return s
}

// Names returns a term ID to term name mapping for all non-obsolete
// terms. The first name seen for an ID wins.
func (o *Ontology) Names() map[string]string {
	names := make(map[string]string, len(o.Terms))
	for _, t := range o.Terms {
		if t.Obsolete {
			continue
		}
		if _, ok := names[t.ID]; !ok {
			names[t.ID] = t.Name
		}
	}
	return names
}

// XrefMap returns a mapping from term IDs of this ontology to the
// first cross reference carrying the given prefix, e.g. "MESH".
// If reverse is true the mapping is keyed by the cross reference.
func (o *Ontology) XrefMap(prefix string, reverse bool) map[string]string {
	m := make(map[string]string)
	prefix += ":"
	for _, t := range o.Terms {
		for _, x := range t.Xrefs {
			if !strings.HasPrefix(x, prefix) {
				continue
			}
			if reverse {
				if _, ok := m[x]; !ok {
					m[x] = t.ID
				}
			} else if _, ok := m[t.ID]; !ok {
				m[t.ID] = x
			}
		}
	}
	return m
}

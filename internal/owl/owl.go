// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package owl

import (
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph/formats/rdf"
)

// Decoder decodes ontology classes from an OBO in OWL stream into RDF
// statements. Only the statements needed to reconstruct the term
// hierarchy are emitted: class identity, labels, namespaces,
// deprecation, synonyms, xrefs, subclass relations and existential
// part-of restrictions. Terms returned by Unmarshal have their UID
// fields set so that unique terms have unique IDs, based from 1.
type Decoder struct {
	xml        *xml.Decoder
	namespaces []xml.Attr

	strings store
	ids     map[string]int64
	blanks  int

	curr int
	buf  []*rdf.Statement
	seen map[[3]int64]bool
}

// NewDecoder returns a new Decoder that takes input from r.
func NewDecoder(r io.Reader) (*Decoder, error) {
	dec := &Decoder{
		xml:     xml.NewDecoder(r),
		strings: make(store),
		ids:     make(map[string]int64),
		seen:    make(map[[3]int64]bool),
	}
	for dec.namespaces == nil {
		err := dec.fillBuffer()
		if err != nil {
			return nil, err
		}
	}
	return dec, nil
}

// Namespaces returns the namespaces collected from the XML stream.
// The value is valid after the Decoder is returned by NewDecoder.
func (dec *Decoder) Namespaces() []xml.Attr {
	return dec.namespaces
}

// Unmarshal returns the next unique statement from the input stream.
func (dec *Decoder) Unmarshal() (*rdf.Statement, error) {
	for {
		for len(dec.buf[dec.curr:]) == 0 {
			err := dec.fillBuffer()
			if err != nil {
				return nil, err
			}
		}
		s := dec.buf[dec.curr]
		dec.buf[dec.curr] = nil
		dec.curr++
		if len(dec.buf[dec.curr:]) == 0 {
			dec.curr = 0
			dec.buf = dec.buf[:0]
		}
		s.Subject.Value = dec.strings.intern(s.Subject.Value)
		s.Predicate.Value = dec.strings.intern(s.Predicate.Value)
		s.Object.Value = dec.strings.intern(s.Object.Value)
		s.Subject.UID = dec.idFor(s.Subject.Value)
		s.Predicate.UID = dec.idFor(s.Predicate.Value)
		s.Object.UID = dec.idFor(s.Object.Value)
		triple := [3]int64{s.Subject.UID, s.Predicate.UID, s.Object.UID}
		if !dec.seen[triple] {
			dec.seen[triple] = true
			return s, nil
		}
	}
}

// UnmarshalLocal returns the next unique statement from the input
// stream with full IRI namespace text replaced by the qualified name
// prefixes obtained from the stream's namespace declarations.
func (dec *Decoder) UnmarshalLocal() (*rdf.Statement, error) {
	s, err := dec.Unmarshal()
	if err != nil {
		return nil, err
	}
	for _, t := range []*rdf.Term{&s.Subject, &s.Predicate, &s.Object} {
		c, err := dec.compactTerm(*t)
		if err != nil {
			return s, err
		}
		*t = c
	}
	return s, nil
}

func (dec *Decoder) compactTerm(term rdf.Term) (rdf.Term, error) {
	text, qual, kind, err := term.Parts()
	if err != nil {
		return term, err
	}
	uid := term.UID
	switch kind {
	case rdf.IRI:
		local, changed := dec.compactIRI(text)
		if changed {
			term, err := rdf.NewIRITerm(local)
			if err != nil {
				return term, err
			}
			term.UID = uid
			return term, nil
		}
	case rdf.Literal:
		if qual == "" {
			return term, nil
		}
		local, changed := dec.compactIRI(qual)
		if changed {
			term, err := rdf.NewLiteralTerm(text, local)
			if err != nil {
				return term, err
			}
			term.UID = uid
			return term, nil
		}
	}
	return term, nil
}

func (dec *Decoder) compactIRI(iri string) (local string, changed bool) {
	// dec.namespaces is ordered longest to shortest
	// to ensure prefixes are not eagerly chosen.
	for _, ns := range dec.namespaces {
		if strings.HasPrefix(iri, ns.Value) {
			suffix := strings.TrimPrefix(iri, ns.Value)
			if len(suffix) == 0 {
				return iri, false
			}
			return ns.Name.Local + ":" + suffix, true
		}
	}
	return iri, false
}

func (dec *Decoder) idFor(s string) int64 {
	id, ok := dec.ids[s]
	if ok {
		return id
	}
	id = int64(len(dec.ids)) + 1
	dec.ids[s] = id
	return id
}

// blankLabel returns a fresh blank node label. Labels are unique
// within a decoding run.
func (dec *Decoder) blankLabel() string {
	dec.blanks++
	return "b" + strconv.Itoa(dec.blanks)
}

func (dec *Decoder) fillBuffer() error {
	tok, err := dec.xml.Token()
	if err != nil {
		if err == io.EOF {
			dec.strings = nil
		}
		return err
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return nil
	}
	switch start.Name.Local {
	case "RDF":
		for _, attr := range start.Attr {
			if attr.Name.Space == "http://www.w3.org/XML/1998/namespace" {
				attr.Name.Space = "xml"
			}
			dec.namespaces = append(dec.namespaces, attr)
		}
		sort.Sort(byLength(dec.namespaces))

	case "Class":
		var c class
		err = dec.xml.DecodeElement(&c, &start)
		if err != nil {
			return err
		}
		dec.buf = c.collect(dec.buf, dec.blankLabel)

	case "Ontology":
		var o ontology
		err = dec.xml.DecodeElement(&o, &start)
		if err != nil {
			return err
		}
		dec.buf = o.collect(dec.buf)

	default:
		// Axioms, annotation and object properties carry no term
		// hierarchy information.
		err = dec.xml.Skip()
		if err != nil {
			return err
		}
	}
	return nil
}

// store is a string internment implementation.
type store map[string]string

// intern returns an interned version of the parameter.
func (is store) intern(s string) string {
	if s == "" {
		return ""
	}
	t, ok := is[s]
	if ok {
		return t
	}
	is[s] = s
	return s
}

type byLength []xml.Attr

func (a byLength) Len() int           { return len(a) }
func (a byLength) Less(i, j int) bool { return len(a[i].Value) > len(a[j].Value) }
func (a byLength) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package owl

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kortschak/gogo"
	"gonum.org/v1/gonum/graph/formats/rdf"

	"ontolabel/internal/obo"
)

// The part of object property.
const partOfIRI = "<obo:BFO_0000050>"

// Graph builds a statement graph from the OWL stream in r. The
// statements carry local qualified-name IRIs.
func Graph(r io.Reader) (*gogo.Graph, error) {
	dec, err := NewDecoder(r)
	if err != nil {
		return nil, err
	}
	g := gogo.NewGraph()
	for {
		s, err := dec.UnmarshalLocal()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			return g, nil
		}
		g.AddStatement(s)
	}
}

// Extract collects the ontology terms held in a statement graph
// built by Graph. Only classes in the obo namespace are collected.
// Terms are returned in identifier order.
func Extract(g *gogo.Graph, name string) *obo.Ontology {
	ont := &obo.Ontology{Name: name}

	nodes := g.Nodes()
	for nodes.Next() {
		t, ok := nodes.Node().(rdf.Term)
		if !ok {
			continue
		}
		id, ok := oboID(t.Value)
		if !ok {
			continue
		}
		if !isClass(g, t) {
			continue
		}

		term := obo.Term{ID: id}
		if lit, ok := literal(g, t, "<oboInOwl:id>"); ok {
			term.ID = lit
		}
		term.Name, _ = literal(g, t, "<rdfs:label>")
		term.Namespace, _ = literal(g, t, "<oboInOwl:hasOBONamespace>")
		if dep, ok := literal(g, t, "<owl:deprecated>"); ok {
			term.Obsolete = dep == "true"
		}
		term.Synonyms = literals(g, t, "<oboInOwl:hasExactSynonym>")
		term.Xrefs = literals(g, t, "<oboInOwl:hasDbXref>")

		for _, o := range g.Query(t).Out(func(s *rdf.Statement) bool {
			return s.Predicate.Value == "<rdfs:subClassOf>"
		}).Unique().Result() {
			switch kindOf(o) {
			case rdf.IRI:
				if parent, ok := oboID(o.Value); ok {
					term.IsA = append(term.IsA, parent)
				}
			case rdf.Blank:
				if parent, ok := someValuesFrom(g, o, partOfIRI); ok {
					term.PartOf = append(term.PartOf, parent)
				}
			}
		}
		sort.Strings(term.IsA)
		sort.Strings(term.PartOf)

		ont.Terms = append(ont.Terms, term)
	}

	sort.Slice(ont.Terms, func(i, j int) bool { return ont.Terms[i].ID < ont.Terms[j].ID })
	ont.DataVersion = dataVersion(g)
	return ont
}

// someValuesFrom returns the obo identifier filled by an existential
// restriction node on the given property.
func someValuesFrom(g *gogo.Graph, node rdf.Term, property string) (string, bool) {
	onProp := g.Query(node).Out(func(s *rdf.Statement) bool {
		return s.Predicate.Value == "<owl:onProperty>"
	}).Result()
	if len(onProp) != 1 || onProp[0].Value != property {
		return "", false
	}
	filler := g.Query(node).Out(func(s *rdf.Statement) bool {
		return s.Predicate.Value == "<owl:someValuesFrom>"
	}).Result()
	if len(filler) != 1 {
		return "", false
	}
	return oboID(filler[0].Value)
}

func isClass(g *gogo.Graph, t rdf.Term) bool {
	for _, typ := range g.Query(t).Out(func(s *rdf.Statement) bool {
		return s.Predicate.Value == "<rdf:type>"
	}).Result() {
		if typ.Value == "<owl:Class>" {
			return true
		}
	}
	return false
}

// dataVersion returns the version IRI of the ontology header, if any.
func dataVersion(g *gogo.Graph) string {
	nodes := g.Nodes()
	for nodes.Next() {
		t, ok := nodes.Node().(rdf.Term)
		if !ok {
			continue
		}
		for _, typ := range g.Query(t).Out(func(s *rdf.Statement) bool {
			return s.Predicate.Value == "<rdf:type>"
		}).Result() {
			if typ.Value != "<owl:Ontology>" {
				continue
			}
			version := g.Query(t).Out(func(s *rdf.Statement) bool {
				return s.Predicate.Value == "<owl:versionIRI>"
			}).Result()
			if len(version) == 1 {
				return strings.Trim(version[0].Value, "<>")
			}
			return ""
		}
	}
	return ""
}

func literal(g *gogo.Graph, t rdf.Term, predicate string) (string, bool) {
	lits := literals(g, t, predicate)
	if len(lits) == 0 {
		return "", false
	}
	return lits[0], true
}

func literals(g *gogo.Graph, t rdf.Term, predicate string) []string {
	var vals []string
	for _, o := range g.Query(t).Out(func(s *rdf.Statement) bool {
		return s.Predicate.Value == predicate
	}).Unique().Result() {
		text, _, kind, err := o.Parts()
		if err != nil || kind != rdf.Literal {
			continue
		}
		vals = append(vals, text)
	}
	sort.Strings(vals)
	return vals
}

func kindOf(t rdf.Term) rdf.Kind {
	_, _, kind, err := t.Parts()
	if err != nil {
		return rdf.Invalid
	}
	return kind
}

// oboID converts a local obo IRI such as <obo:MONDO_0000001> to the
// OBO identifier MONDO:0000001.
func oboID(iri string) (string, bool) {
	body, ok := strings.CutPrefix(iri, "<obo:")
	if !ok {
		return "", false
	}
	body, ok = strings.CutSuffix(body, ">")
	if !ok {
		return "", false
	}
	prefix, num, ok := strings.Cut(body, "_")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s:%s", prefix, num), true
}

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package owl

import (
	"encoding/xml"
	"strings"

	"gonum.org/v1/gonum/graph/formats/rdf"
)

// This file maps the RDF/XML class elements of an OBO in OWL document
// to RDF N-Triples. See https://www.w3.org/TR/owl2-mapping-to-rdf/.

var rdfType = mustTerm(rdf.NewIRITerm("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"))

type class struct {
	XMLName xml.Name

	About string `xml:"about,attr"`

	ID                []rdfValue   `xml:"id"`
	Label             []rdfValue   `xml:"label"`
	HasOBONamespace   []rdfValue   `xml:"hasOBONamespace"`
	Deprecated        []rdfValue   `xml:"deprecated"`
	HasExactSynonym   []rdfValue   `xml:"hasExactSynonym"`
	HasRelatedSynonym []rdfValue   `xml:"hasRelatedSynonym"`
	HasDbXref         []rdfValue   `xml:"hasDbXref"`
	SubClassOf        []subClassOf `xml:"subClassOf"`
}

func (c class) collect(dst []*rdf.Statement, blank func() string) []*rdf.Statement {
	if c.About == "" {
		return dst
	}
	subj := mustTerm(rdf.NewIRITerm(c.About))
	dst = append(dst, &rdf.Statement{
		Subject:   subj,
		Predicate: rdfType,
		Object:    mustTerm(rdf.NewIRITerm(c.XMLName.Space + c.XMLName.Local)),
	})
	for _, vals := range [][]rdfValue{
		c.ID,
		c.Label,
		c.HasOBONamespace,
		c.Deprecated,
		c.HasExactSynonym,
		c.HasRelatedSynonym,
		c.HasDbXref,
	} {
		for _, v := range vals {
			dst = v.collect(dst, subj)
		}
	}
	for _, s := range c.SubClassOf {
		dst = s.collect(dst, subj, blank)
	}
	return dst
}

type subClassOf struct {
	XMLName xml.Name

	Resource    string        `xml:"resource,attr"`
	Restriction []restriction `xml:"Restriction"`
}

func (s subClassOf) collect(dst []*rdf.Statement, subj rdf.Term, blank func() string) []*rdf.Statement {
	pred := mustTerm(rdf.NewIRITerm(s.XMLName.Space + s.XMLName.Local))
	if s.Resource != "" {
		dst = append(dst, &rdf.Statement{
			Subject:   subj,
			Predicate: pred,
			Object:    mustTerm(rdf.NewIRITerm(s.Resource)),
		})
	}
	for _, r := range s.Restriction {
		node := mustTerm(rdf.NewBlankTerm(blank()))
		dst = append(dst, &rdf.Statement{Subject: subj, Predicate: pred, Object: node})
		dst = append(dst, &rdf.Statement{
			Subject:   node,
			Predicate: rdfType,
			Object:    mustTerm(rdf.NewIRITerm(r.XMLName.Space + r.XMLName.Local)),
		})
		for _, v := range []rdfValue{r.OnProperty, r.SomeValuesFrom} {
			dst = v.collect(dst, node)
		}
	}
	return dst
}

// restriction is an existential property restriction; for ontology
// hierarchies the property of interest is obo:BFO_0000050, part of.
type restriction struct {
	XMLName xml.Name

	OnProperty     rdfValue `xml:"onProperty"`
	SomeValuesFrom rdfValue `xml:"someValuesFrom"`
}

type ontology struct {
	XMLName xml.Name

	About string `xml:"about,attr"`

	Title      []rdfValue `xml:"title"`
	VersionIRI []rdfValue `xml:"versionIRI"`
}

func (o ontology) collect(dst []*rdf.Statement) []*rdf.Statement {
	if o.About == "" {
		return dst
	}
	subj := mustTerm(rdf.NewIRITerm(o.About))
	dst = append(dst, &rdf.Statement{
		Subject:   subj,
		Predicate: rdfType,
		Object:    mustTerm(rdf.NewIRITerm(o.XMLName.Space + o.XMLName.Local)),
	})
	for _, vals := range [][]rdfValue{o.Title, o.VersionIRI} {
		for _, v := range vals {
			dst = v.collect(dst, subj)
		}
	}
	return dst
}

// rdfValue is a property element holding either a resource reference
// or a typed literal.
type rdfValue struct {
	XMLName xml.Name

	Resource string `xml:"resource,attr"`
	Text     string `xml:",chardata"`
	Datatype string `xml:"datatype,attr"`
}

func (v rdfValue) collect(dst []*rdf.Statement, subj rdf.Term) []*rdf.Statement {
	if v.XMLName.Local == "" {
		// An absent optional property element.
		return dst
	}
	pred := mustTerm(rdf.NewIRITerm(v.XMLName.Space + v.XMLName.Local))
	switch {
	case strings.TrimSpace(v.Resource) != "":
		dst = append(dst, &rdf.Statement{
			Subject:   subj,
			Predicate: pred,
			Object:    mustTerm(rdf.NewIRITerm(v.Resource)),
		})
	case strings.TrimSpace(v.Text) != "":
		dst = append(dst, &rdf.Statement{
			Subject:   subj,
			Predicate: pred,
			Object:    mustTerm(rdf.NewLiteralTerm(v.Text, v.Datatype)),
		})
	}
	return dst
}

func mustTerm(t rdf.Term, err error) rdf.Term {
	if err != nil {
		panic(err)
	}
	return t
}

// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ontorel builds the relation matrices for an ontology and writes
// them to a directory for use by ontolabel.
//
// The ontology is read from an OBO flat file or an OBO in OWL file,
// either of which may be gzip compressed. MONDO and UBERON releases
// can be obtained from http://purl.obolibrary.org/obo/mondo.obo and
// http://purl.obolibrary.org/obo/uberon.obo.
//
// Three files are written to the output directory:
//
//	ids.txt             term identifiers, one per line
//	ancestors.tsv.gz    term×term 0/1 matrix; row term is an
//	                    ancestor of column term
//	descendants.tsv.gz  the transpose of ancestors.tsv.gz
//
// Every term is recorded as both an ancestor and a descendant of
// itself.
package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ontolabel/internal/obo"
	"ontolabel/internal/ontology"
	"ontolabel/internal/owl"
	"ontolabel/internal/relations"
)

func main() {
	var (
		ontopath = flag.String("ontology", "", "specify the ontology file (.obo[.gz] or .owl[.gz] - required)")
		name     = flag.String("name", "", "specify the ontology name (default derived from the file name)")
		out      = flag.String("out", ".", "specify the output directory")
		help     = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s builds the relation matrices for an ontology and writes them to a
directory: ids.txt holding the term identifiers, and ancestors.tsv.gz
and descendants.tsv.gz holding the 0/1 relation matrices over those
terms. Every term is related to itself in both directions.

The ontology is read from an OBO flat file or an OBO in OWL file,
either of which may be gzip compressed.

Copyright ©2025 The ontolabel Authors. All rights reserved.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}

	if *ontopath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *name == "" {
		*name = ontologyName(*ontopath)
	}

	log.Println(os.Args)

	log.Println("[loading ontology]")
	ont, err := loadOntology(*ontopath, *name)
	if err != nil {
		log.Fatalf("failed to load ontology: %v", err)
	}
	log.Printf("loaded %s with %d terms", ont.Name, len(ont.Terms))

	log.Println("[building ontology graph]")
	g := ontology.New(ont, nil)

	log.Println("[writing relation matrices]")
	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal(err)
	}
	ids, anc := relations.FromGraph(g)
	err = relations.Write(*out, ids, anc)
	if err != nil {
		log.Fatalf("failed to write relation matrices: %v", err)
	}
	log.Printf("wrote relations for %d terms to %s", len(ids), *out)
}

// loadOntology reads an ontology from an OBO or OWL file, with
// transparent gzip decompression.
func loadOntology(path, name string) (*obo.Ontology, error) {
	if !isOWL(path) {
		return obo.ParseFile(path, name)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}

	g, err := owl.Graph(r)
	if err != nil {
		return nil, err
	}
	return owl.Extract(g, name), nil
}

func isOWL(path string) bool {
	return strings.HasSuffix(path, ".owl") || strings.HasSuffix(path, ".owl.gz")
}

// ontologyName derives an upper-case ontology name from the file
// name, so mondo.obo.gz becomes MONDO.
func ontologyName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return strings.ToUpper(base)
}

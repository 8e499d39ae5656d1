// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ontolabel propagates curated sample annotations across an ontology
// and prints the per-sample annotations or labels for a requested
// set of terms in a tsv table.
//
// Annotations are read from a SQLite database built from curated
// sample metadata, one row per source annotation. The ontology is
// read from an OBO flat file and the relation matrices from a
// directory written by ontorel for the same release.
//
// In annotate mode (-mode 0) the output holds 1 where a sample is
// annotated to a requested term or any of its descendants, and 0
// otherwise; samples with no relevant annotation are dropped. In
// label mode (-mode 1) every sample is kept and labelled +1 where a
// term or a descendant is annotated, 0 where only an ancestor is
// annotated, and -1 otherwise. Samples positively annotated to the
// control term sit out the propagation and are instead labelled 2
// for every term that some other sample of their series is positive
// for.
//
// A summary document with per-term label tallies may be written to
// the specified summary file in JSON format, and a bar plot of
// positive counts per term to the specified plot file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ontolabel/internal/obo"
	"ontolabel/internal/ontology"
	"ontolabel/internal/propagate"
	"ontolabel/internal/relations"
	"ontolabel/internal/store"
)

func main() {
	var (
		db        = flag.String("db", "", "specify the annotation database (required)")
		attribute = flag.String("attribute", "", "specify the annotation attribute, e.g. tissue or disease (required)")
		ecode     = flag.String("ecodes", "expert-curated", "comma separated evidence codes, or any")
		organism  = flag.String("organism", "homo sapiens", "specify the annotation organism")
		level     = flag.String("level", "index", "annotation level (index or group)")
		anchor    = flag.String("anchor", "id", "annotation anchor (id or value)")
		ontopath  = flag.String("ontology", "", "specify the ontology file (.obo[.gz] - required)")
		reldir    = flag.String("relations", "", "specify the relation matrix directory (required)")
		terms     = flag.String("terms", "", "comma separated target terms")
		termlist  = flag.String("termlist", "", "file of target terms, one per line")
		mode      = flag.Int("mode", 1, "0 to annotate, 1 to label")
		collapse  = flag.Bool("collapse", false, "collapse annotations to series before propagation")
		control   = flag.String("control", propagate.DefaultControl, "control entity column")
		group     = flag.String("group", propagate.DefaultGroup, "grouping identity column for controls")
		workers   = flag.Int("workers", 0, "propagation workers (0 for CPU count - 1)")
		out       = flag.String("out", "", "specify the output file (default stdout)")
		summary   = flag.String("summary", "", "specify the summary output file")
		plotfile  = flag.String("plot", "", "specify the positive count plot file (.png)")
		help      = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s propagates curated sample annotations across an ontology and
prints per-sample annotations or labels for a set of terms in a tsv
table. Annotations come from a SQLite database of curated sample
metadata; the ontology comes from an OBO flat file; the relation
matrices come from a directory written by ontorel for the same
ontology release.

In annotate mode (-mode 0) the output holds 1 where a sample is
annotated to a requested term or any of its descendants, and 0
otherwise. In label mode (-mode 1) every sample is labelled +1 where
a term or a descendant is annotated, 0 where only an ancestor is
annotated, and -1 otherwise, with series controls labelled 2 for
terms their series is positive for.

Copyright ©2025 The ontolabel Authors. All rights reserved.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}

	if *db == "" || *attribute == "" || *ontopath == "" || *reldir == "" {
		flag.Usage()
		os.Exit(2)
	}
	to, err := targetTerms(*terms, *termlist)
	if err != nil {
		log.Fatalf("failed to read target terms: %v", err)
	}
	if len(to) == 0 {
		log.Fatal("no target terms given")
	}

	log.Println(os.Args)
	ctx := context.Background()

	log.Println("[loading annotations]")
	s, err := store.Open(*db, nil)
	if err != nil {
		log.Fatalf("failed to open annotation database: %v", err)
	}
	defer s.Close()
	anno, err := s.Annotations(ctx, store.Query{
		Attribute: *attribute,
		Ecodes:    splitList(*ecode),
		Organism:  *organism,
		Level:     *level,
		Anchor:    *anchor,
	})
	if err != nil {
		log.Fatalf("failed to load annotations: %v", err)
	}
	log.Printf("loaded %d annotations over %d entities", anno.NIndices(), anno.NEntities())

	if *collapse {
		err = anno.CollapseInPlace("series")
		if err != nil {
			log.Fatalf("failed to collapse annotations: %v", err)
		}
		log.Printf("collapsed to %d series", anno.NIndices())
	}

	log.Println("[loading ontology]")
	ont, err := obo.ParseFile(*ontopath, ontologyName(*ontopath))
	if err != nil {
		log.Fatalf("failed to load ontology: %v", err)
	}
	g := ontology.New(ont, nil)

	log.Println("[loading relation matrices]")
	ix, err := relations.Open(*reldir, nil)
	if err != nil {
		log.Fatalf("failed to open relation matrices: %v", err)
	}

	log.Println("[propagating]")
	conv := propagate.NewConverter(g, ix, *control, *group, *workers, nil)
	result, err := conv.Run(anno, to, propagate.Mode(*mode))
	if err != nil {
		log.Fatalf("propagation failed: %v", err)
	}
	log.Printf("propagated %d rows over %d terms", result.NIndices(), result.NEntities())

	log.Println("[writing results]")
	err = writeCuration(*out, result)
	if err != nil {
		log.Fatalf("failed to write results: %v", err)
	}
	if *summary != "" {
		err = writeSummary(*summary, *attribute, *mode, result, ont.Names())
		if err != nil {
			log.Fatalf("failed to write summary: %v", err)
		}
	}
	if *plotfile != "" {
		err = plotPositives(*plotfile, result)
		if err != nil {
			log.Fatalf("failed to write plot: %v", err)
		}
	}
}

// targetTerms merges the comma separated terms with the term list
// file, preserving order and dropping duplicates.
func targetTerms(csv, path string) ([]string, error) {
	var to []string
	seen := make(map[string]bool)
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		to = append(to, t)
	}
	for _, t := range splitList(csv) {
		add(t)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(string(b), "\n") {
			add(line)
		}
	}
	return to, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
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

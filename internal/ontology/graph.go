// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ontology provides the directed acyclic graph model used to
// answer ancestor and descendant reachability queries over ontology
// terms.
package ontology

import (
	"log"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"ontolabel/internal/obo"
)

// The UBERON cardiac Purkinje fiber (UBERON:0002354) and cardiac
// Purkinje fiber network (UBERON:8000009) are recorded as part of
// each other. The edge making the fiber a parent of the network is
// dropped so that the graph remains acyclic; the network stays the
// parent of the fiber.
const (
	purkinjeFiber        = "UBERON:0002354"
	purkinjeFiberNetwork = "UBERON:8000009"
)

// Graph is an ontology term graph. An edge parent→child is present
// for every is_a and part_of relation of a non-obsolete term entry.
// The graph is built once and never mutated afterwards.
type Graph struct {
	dg *simple.DirectedGraph

	uids  map[string]int64
	terms map[int64]string

	log *log.Logger
}

// New builds a Graph from parsed term entries. Obsolete entries are
// skipped. Parent terms referenced by a relation are added as nodes
// even when they have no entry of their own. If logger is nil the
// process default logger is used.
func New(ont *obo.Ontology, logger *log.Logger) *Graph {
	if logger == nil {
		logger = log.Default()
	}
	g := &Graph{
		dg:    simple.NewDirectedGraph(),
		uids:  make(map[string]int64),
		terms: make(map[int64]string),
		log:   logger,
	}
	for _, t := range ont.Terms {
		if t.Obsolete || t.ID == "" {
			continue
		}
		for _, parent := range t.IsA {
			g.addEdge(parent, t.ID)
		}
		for _, parent := range t.PartOf {
			if t.ID == purkinjeFiberNetwork && parent == purkinjeFiber {
				continue
			}
			g.addEdge(parent, t.ID)
		}
	}
	return g
}

func (g *Graph) addEdge(parent, child string) {
	if parent == child {
		return
	}
	u := g.nodeFor(parent)
	v := g.nodeFor(child)
	g.dg.SetEdge(g.dg.NewEdge(u, v))
}

func (g *Graph) nodeFor(term string) graph.Node {
	uid, ok := g.uids[term]
	if ok {
		return g.dg.Node(uid)
	}
	n := g.dg.NewNode()
	g.dg.AddNode(n)
	g.uids[term] = n.ID()
	g.terms[n.ID()] = term
	return n
}

// Has reports whether term is a node in the graph.
func (g *Graph) Has(term string) bool {
	_, ok := g.uids[term]
	return ok
}

// Len returns the number of terms in the graph.
func (g *Graph) Len() int { return len(g.uids) }

// Ancestors returns all terms reachable by following edges backward
// from term, excluding term itself. The result is sorted. A term not
// in the graph yields a nil result.
func (g *Graph) Ancestors(term string) []string {
	return g.reach(term, true)
}

// Descendants returns all terms reachable by following edges forward
// from term, excluding term itself. The result is sorted. A term not
// in the graph yields a nil result.
func (g *Graph) Descendants(term string) []string {
	return g.reach(term, false)
}

// AncestorsFrom returns the ancestors of each term in terms. Terms
// absent from the graph are omitted from the result and logged.
func (g *Graph) AncestorsFrom(terms []string) map[string][]string {
	return g.reachFrom(terms, true)
}

// DescendantsFrom returns the descendants of each term in terms.
// Terms absent from the graph are omitted from the result and logged.
func (g *Graph) DescendantsFrom(terms []string) map[string][]string {
	return g.reachFrom(terms, false)
}

func (g *Graph) reachFrom(terms []string, up bool) map[string][]string {
	m := make(map[string][]string, len(terms))
	var missing int
	for _, t := range terms {
		if !g.Has(t) {
			missing++
			continue
		}
		m[t] = g.reach(t, up)
	}
	if missing != 0 {
		g.log.Printf("ontology: %d of %d terms not in graph", missing, len(terms))
	}
	return m
}

func (g *Graph) reach(term string, up bool) []string {
	uid, ok := g.uids[term]
	if !ok {
		return nil
	}
	var t traverse.Graph = g.dg
	if up {
		t = reverse{g.dg}
	}
	var found []string
	bf := traverse.BreadthFirst{}
	bf.Walk(t, g.dg.Node(uid), func(n graph.Node, _ int) bool {
		if n.ID() != uid {
			found = append(found, g.terms[n.ID()])
		}
		return false
	})
	sort.Strings(found)
	return found
}

// PropagateTerm labels query relative to ref: +1 if query is a
// descendant of ref, 0 if it is an ancestor of ref, and -1 otherwise.
func (g *Graph) PropagateTerm(query, ref string) int {
	for _, d := range g.Descendants(ref) {
		if d == query {
			return 1
		}
	}
	for _, a := range g.Ancestors(ref) {
		if a == query {
			return 0
		}
	}
	return -1
}

// Nodes returns all term IDs in the graph, sorted.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.uids))
	for t := range g.uids {
		nodes = append(nodes, t)
	}
	sort.Strings(nodes)
	return nodes
}

// Leaves returns all terms with no children, sorted.
func (g *Graph) Leaves() []string {
	var leaves []string
	for t, uid := range g.uids {
		if g.dg.From(uid).Len() == 0 {
			leaves = append(leaves, t)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Directed returns the underlying directed graph for topology
// queries.
func (g *Graph) Directed() graph.Directed { return g.dg }

// reverse reverses the direction of edges for backward traversals.
type reverse struct {
	*simple.DirectedGraph
}

func (g reverse) From(id int64) graph.Nodes      { return g.DirectedGraph.To(id) }
func (g reverse) Edge(uid, vid int64) graph.Edge { return g.DirectedGraph.Edge(vid, uid) }

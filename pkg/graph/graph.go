// Package graph holds the module dependency graph and its builder.
package graph

import "sort"

// Meta is free-form per-node metadata such as the defining file.
type Meta map[string]any

// Graph is a directed graph over module identifiers. Edges form a set per
// source, so re-adding an edge is a no-op; self-edges are allowed. Every
// edge endpoint is a node.
//
// A Graph is mutated only while it is being built. Concurrent readers are
// safe once building is done.
type Graph struct {
	adj  map[string]map[string]struct{}
	meta map[string]Meta
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		adj:  make(map[string]map[string]struct{}),
		meta: make(map[string]Meta),
	}
}

// AddNode registers id. A non-nil meta replaces any metadata previously
// stored for id.
func (g *Graph) AddNode(id string, meta Meta) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[string]struct{})
	}
	if meta != nil {
		copied := make(Meta, len(meta))
		for k, v := range meta {
			copied[k] = v
		}
		g.meta[id] = copied
	}
}

// AddEdge adds from -> to, registering both endpoints.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from, nil)
	g.AddNode(to, nil)
	g.adj[from][to] = struct{}{}
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.adj[id]
	return ok
}

// HasEdge reports whether from -> to is in the graph.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.adj[from][to]
	return ok
}

// Meta returns the metadata stored for id.
func (g *Graph) Meta(id string) (Meta, bool) {
	m, ok := g.meta[id]
	return m, ok
}

// Neighbors returns the targets of id's outgoing edges in ascending order.
// Unknown nodes have no neighbors.
func (g *Graph) Neighbors(id string) []string {
	return sortedKeys(g.adj[id])
}

// OutDegree returns the number of distinct targets of id.
func (g *Graph) OutDegree(id string) int {
	return len(g.adj[id])
}

// Nodes returns every node in ascending order.
func (g *Graph) Nodes() []string {
	return sortedKeys(g.adj)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.adj)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.adj {
		n += len(targets)
	}
	return n
}

// InDegrees returns the number of distinct sources pointing at each node.
// Every node is present, with zero when nothing imports it.
func (g *Graph) InDegrees() map[string]int {
	in := make(map[string]int, len(g.adj))
	for id := range g.adj {
		if _, ok := in[id]; !ok {
			in[id] = 0
		}
		for target := range g.adj[id] {
			in[target]++
		}
	}
	return in
}

// Adjacency returns node -> sorted neighbors for every node, including
// nodes with no outgoing edges.
func (g *Graph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.adj))
	for id, targets := range g.adj {
		out[id] = sortedKeys(targets)
	}
	return out
}

// FromAdjacency rebuilds a graph from the form produced by Adjacency.
func FromAdjacency(adj map[string][]string) *Graph {
	g := New()
	for id, targets := range adj {
		g.AddNode(id, nil)
		for _, t := range targets {
			g.AddEdge(id, t)
		}
	}
	return g
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

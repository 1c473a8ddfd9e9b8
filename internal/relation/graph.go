package relation

import "sort"

// Graph indexes a set of edges for traversal from either endpoint. It is a
// multi-edge graph: the same collection pair may be connected through
// several fields, and self-referential edges are legal.
type Graph struct {
	outgoing map[string][]Edge
	incoming map[string][]Edge
	edges    []Edge
}

// NewGraph builds the forward and reverse indexes over the given edges.
// Edge order within each index follows the input order.
func NewGraph(edges []Edge) *Graph {
	g := &Graph{
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
		edges:    make([]Edge, len(edges)),
	}
	copy(g.edges, edges)
	for _, e := range g.edges {
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
		g.incoming[e.Target] = append(g.incoming[e.Target], e)
	}
	return g
}

// Outgoing returns the edges whose source is the given collection.
func (g *Graph) Outgoing(collection string) []Edge {
	return g.outgoing[collection]
}

// Incoming returns the edges whose target is the given collection.
func (g *Graph) Incoming(collection string) []Edge {
	return g.incoming[collection]
}

// Edges returns all edges in input order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// HasCollection returns true if the collection touches at least one edge.
func (g *Graph) HasCollection(name string) bool {
	if _, ok := g.outgoing[name]; ok {
		return true
	}
	_, ok := g.incoming[name]
	return ok
}

// EqualEdges reports whether two edge slices hold the same edges in the
// same order.
func EqualEdges(a, b []Edge) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Collections returns the sorted names of all collections touching an edge.
func (g *Graph) Collections() []string {
	seen := make(map[string]struct{}, len(g.outgoing)+len(g.incoming))
	for name := range g.outgoing {
		seen[name] = struct{}{}
	}
	for name := range g.incoming {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

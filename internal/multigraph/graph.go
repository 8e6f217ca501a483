// Package multigraph provides a directed multigraph: a node set, outgoing
// adjacency, and a multimap of edge labels per ordered node pair.
package multigraph

import "slices"

type pair[N comparable] struct {
	source, target N
}

// Graph is a directed multigraph over nodes N with edge labels E. Node and
// label identity is Go equality, so pointer nodes must be canonicalized by the
// caller if content equality is wanted.
//
// Parallel edges between the same ordered pair are allowed as long as their
// labels differ. Graph is not safe for concurrent use.
type Graph[N, E comparable] struct {
	nodes     map[N]struct{}
	order     []N
	neighbors map[N][]N
	edges     map[pair[N]][]E
}

// New returns an empty graph.
func New[N, E comparable]() *Graph[N, E] {
	return &Graph[N, E]{
		nodes:     make(map[N]struct{}),
		neighbors: make(map[N][]N),
		edges:     make(map[pair[N]][]E),
	}
}

// AddNode adds n, returning false if it is already a member.
func (g *Graph[N, E]) AddNode(n N) bool {
	if _, ok := g.nodes[n]; ok {
		return false
	}
	g.nodes[n] = struct{}{}
	g.order = append(g.order, n)
	return true
}

// HasNode reports whether n is a member.
func (g *Graph[N, E]) HasNode(n N) bool {
	_, ok := g.nodes[n]
	return ok
}

// AddEdge records label on the edge source -> target. Both endpoints must
// already be members. It returns false, changing nothing, if an endpoint is
// missing or the exact (source, target, label) triple already exists.
//
// Every successful call appends target to the neighbor list of source, so a
// pair joined by k labels appears k times in Neighbors.
func (g *Graph[N, E]) AddEdge(source, target N, label E) bool {
	if !g.HasNode(source) || !g.HasNode(target) {
		return false
	}
	key := pair[N]{source, target}
	labels := g.edges[key]
	if slices.Contains(labels, label) {
		return false
	}
	g.edges[key] = append(labels, label)
	g.neighbors[source] = append(g.neighbors[source], target)
	return true
}

// FindEdge returns the labels of the edge source -> target, or nil if none.
// The returned slice must not be modified.
func (g *Graph[N, E]) FindEdge(source, target N) []E {
	return g.edges[pair[N]{source, target}]
}

// Neighbors returns the outgoing neighbor list of n (one entry per label).
// The returned slice must not be modified.
func (g *Graph[N, E]) Neighbors(n N) []N {
	return g.neighbors[n]
}

// ConnectedEdges returns every label on edges leaving n. Each distinct
// neighbor is visited once, so a label is reported exactly once.
func (g *Graph[N, E]) ConnectedEdges(n N) []E {
	var (
		out  []E
		seen = make(map[N]struct{})
	)
	for _, t := range g.neighbors[n] {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, g.edges[pair[N]{n, t}]...)
	}
	return out
}

// Nodes returns all members in insertion order.
func (g *Graph[N, E]) Nodes() []N {
	return slices.Clone(g.order)
}

// NodeCount returns the number of members.
func (g *Graph[N, E]) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the total number of labels across all node pairs.
func (g *Graph[N, E]) EdgeCount() int {
	var n int
	for _, labels := range g.edges {
		n += len(labels)
	}
	return n
}

// RemoveEdge removes one label from source -> target, dropping one matching
// neighbor list entry. It returns false if the label was not present.
func (g *Graph[N, E]) RemoveEdge(source, target N, label E) bool {
	key := pair[N]{source, target}
	labels := g.edges[key]
	i := slices.Index(labels, label)
	if i < 0 {
		return false
	}
	labels = slices.Delete(labels, i, i+1)
	if len(labels) == 0 {
		delete(g.edges, key)
	} else {
		g.edges[key] = labels
	}
	g.dropNeighbor(source, target, 1)
	return true
}

// RemoveEdgeList removes every label from source -> target.
func (g *Graph[N, E]) RemoveEdgeList(source, target N) bool {
	key := pair[N]{source, target}
	labels, ok := g.edges[key]
	if !ok {
		return false
	}
	delete(g.edges, key)
	g.dropNeighbor(source, target, len(labels))
	return true
}

// RemoveNode removes n along with every edge into or out of it.
func (g *Graph[N, E]) RemoveNode(n N) bool {
	if !g.HasNode(n) {
		return false
	}
	for key := range g.edges {
		if key.source == n || key.target == n {
			delete(g.edges, key)
		}
	}
	delete(g.neighbors, n)
	for src, list := range g.neighbors {
		list = slices.DeleteFunc(list, func(t N) bool { return t == n })
		if len(list) == 0 {
			delete(g.neighbors, src)
		} else {
			g.neighbors[src] = list
		}
	}
	delete(g.nodes, n)
	if i := slices.Index(g.order, n); i >= 0 {
		g.order = slices.Delete(g.order, i, i+1)
	}
	return true
}

func (g *Graph[N, E]) dropNeighbor(source, target N, count int) {
	list := g.neighbors[source]
	for count > 0 {
		i := slices.Index(list, target)
		if i < 0 {
			break
		}
		list = slices.Delete(list, i, i+1)
		count--
	}
	if len(list) == 0 {
		delete(g.neighbors, source)
	} else {
		g.neighbors[source] = list
	}
}

// Package graph implements the directed interaction graph built from post
// records.
//
// A Graph is a read-only value: nodes are actor handles and an edge (A, B)
// records that A mentioned or reshared B. Nodes and edges are kept in ordered
// B-trees, so every enumeration is sorted and independent of the order in
// which records were folded in. Snapshots share structure with the builder
// that produced them and are copied lazily on write.
package graph

import (
	"github.com/tidwall/btree"
)

// Edge is a directed interaction from one actor to another.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// outLess orders edges by source then target (adjacency scans).
func outLess(a, b Edge) bool {
	if a.From != b.From {
		return a.From < b.From
	}
	return a.To < b.To
}

// inLess orders edges by target then source (reverse adjacency scans).
func inLess(a, b Edge) bool {
	if a.To != b.To {
		return a.To < b.To
	}
	return a.From < b.From
}

func nodeLess(a, b string) bool { return a < b }

// Graph is an immutable directed graph over actor handles.
type Graph struct {
	nodes *btree.BTreeG[string]
	out   *btree.BTreeG[Edge]
	in    *btree.BTreeG[Edge]
}

func newGraph() *Graph {
	return &Graph{
		nodes: btree.NewBTreeG(nodeLess),
		out:   btree.NewBTreeG(outLess),
		in:    btree.NewBTreeG(inLess),
	}
}

// Empty returns a graph with no nodes.
func Empty() *Graph {
	return newGraph()
}

// clone returns a lazily copied snapshot. Writes to either side never leak
// into the other.
func (g *Graph) clone() *Graph {
	return &Graph{
		nodes: g.nodes.Copy(),
		out:   g.out.Copy(),
		in:    g.in.Copy(),
	}
}

// insertNode reports whether the node was new.
func (g *Graph) insertNode(id string) bool {
	_, replaced := g.nodes.Set(id)
	return !replaced
}

// insertEdge adds both endpoints and the edge. It reports whether the edge
// was new. Callers enforce the no-self-loop rule.
func (g *Graph) insertEdge(e Edge) bool {
	g.insertNode(e.From)
	g.insertNode(e.To)
	if _, replaced := g.out.Set(e); replaced {
		return false
	}
	g.in.Set(e)
	return true
}

// NodeCount returns the number of actors in the graph.
func (g *Graph) NodeCount() int { return g.nodes.Len() }

// EdgeCount returns the number of distinct interactions.
func (g *Graph) EdgeCount() int { return g.out.Len() }

// HasNode reports whether id is an actor in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes.Get(id)
	return ok
}

// HasEdge reports whether the interaction from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.out.Get(Edge{From: from, To: to})
	return ok
}

// Nodes returns every actor in ascending order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, g.nodes.Len())
	g.nodes.Scan(func(id string) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Edges returns every interaction ordered by source then target.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.out.Len())
	g.out.Scan(func(e Edge) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Successors returns the actors id interacted with, in ascending order.
// Unknown ids yield nil.
func (g *Graph) Successors(id string) []string {
	var out []string
	g.out.Ascend(Edge{From: id}, func(e Edge) bool {
		if e.From != id {
			return false
		}
		out = append(out, e.To)
		return true
	})
	return out
}

// Predecessors returns the actors that interacted with id, in ascending order.
func (g *Graph) Predecessors(id string) []string {
	var out []string
	g.in.Ascend(Edge{To: id}, func(e Edge) bool {
		if e.To != id {
			return false
		}
		out = append(out, e.From)
		return true
	})
	return out
}

// OutDegree returns the number of distinct actors id interacted with.
func (g *Graph) OutDegree(id string) int {
	n := 0
	g.out.Ascend(Edge{From: id}, func(e Edge) bool {
		if e.From != id {
			return false
		}
		n++
		return true
	})
	return n
}

// InDegree returns the number of distinct actors that interacted with id.
func (g *Graph) InDegree(id string) int {
	n := 0
	g.in.Ascend(Edge{To: id}, func(e Edge) bool {
		if e.To != id {
			return false
		}
		n++
		return true
	})
	return n
}

// Equal reports whether both graphs have the same node and edge sets.
func (g *Graph) Equal(o *Graph) bool {
	if g.NodeCount() != o.NodeCount() || g.EdgeCount() != o.EdgeCount() {
		return false
	}
	equal := true
	g.nodes.Scan(func(id string) bool {
		equal = o.HasNode(id)
		return equal
	})
	if !equal {
		return false
	}
	g.out.Scan(func(e Edge) bool {
		equal = o.HasEdge(e.From, e.To)
		return equal
	})
	return equal
}

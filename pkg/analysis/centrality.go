package analysis

import (
	"math"

	"github.com/sanonone/hashgraph/pkg/graph"
	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// Default PageRank parameters.
const (
	PageRankDamping   = 0.85
	PageRankTolerance = 1e-6
)

// Closeness returns the closeness centrality of every actor based on the
// distances from other actors to it (incoming paths). Scores are scaled by the
// fraction of the graph that can reach the actor (Wasserman and Faust), so
// actors reachable from few others do not get inflated scores.
func Closeness(g *graph.Graph) map[string]float64 {
	ix := index(g)
	return ix.closeness()
}

func (ix *indexed) closeness() map[string]float64 {
	out := make(map[string]float64, len(ix.handles))
	n := len(ix.handles)
	if n == 0 {
		return out
	}

	// Incoming distances to u are outgoing distances on the reversed graph.
	rev := simple.NewDirectedGraph()
	for _, h := range ix.handles {
		rev.AddNode(actorNode{id: ix.ids[h], handle: h})
	}
	edges := ix.g.Edges()
	for edges.Next() {
		e := edges.Edge()
		rev.SetEdge(rev.NewEdge(rev.Node(e.To().ID()), rev.Node(e.From().ID())))
	}

	for _, h := range ix.handles {
		var total, reached int
		bf := traverse.BreadthFirst{}
		bf.Walk(rev, rev.Node(ix.ids[h]), func(_ gonumgraph.Node, depth int) bool {
			total += depth
			reached++
			return false
		})
		if total == 0 || n == 1 {
			out[h] = 0
			continue
		}
		others := float64(reached - 1)
		out[h] = others / float64(total) * (others / float64(n-1))
	}
	return out
}

// PageRank returns the PageRank of every actor.
func PageRank(g *graph.Graph) map[string]float64 {
	return index(g).pageRank()
}

func (ix *indexed) pageRank() map[string]float64 {
	out := make(map[string]float64, len(ix.handles))
	if len(ix.handles) == 0 {
		return out
	}
	ranks := network.PageRank(ix.g, PageRankDamping, PageRankTolerance)
	for id, r := range ranks {
		out[ix.handles[id]] = r
	}
	return out
}

// ShortestPath returns the handles along a shortest interaction chain from
// one actor to another, or nil when either is unknown or no chain exists.
func ShortestPath(g *graph.Graph, from, to string) []string {
	ix := index(g)
	src, ok := ix.node(from)
	if !ok {
		return nil
	}
	dst, ok := ix.node(to)
	if !ok {
		return nil
	}
	nodes, weight := path.DijkstraFrom(src, ix.g).To(dst.ID())
	if math.IsInf(weight, 1) || len(nodes) == 0 {
		return nil
	}
	handles := make([]string, len(nodes))
	for i, n := range nodes {
		handles[i] = ix.handles[n.ID()]
	}
	return handles
}

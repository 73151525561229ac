package analysis

import (
	"github.com/sanonone/hashgraph/pkg/graph"
	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// actorNode is a gonum node carrying the actor handle.
type actorNode struct {
	id     int64
	handle string
}

func (n actorNode) ID() int64 { return n.id }

// DOTID makes the DOT encoder emit handles instead of integer IDs.
func (n actorNode) DOTID() string { return n.handle }

// indexed is an interaction graph mirrored into a gonum directed graph.
// IDs follow the sorted node order, so repeated conversions are identical.
type indexed struct {
	g       *simple.DirectedGraph
	handles []string
	ids     map[string]int64
}

func index(ig *graph.Graph) *indexed {
	handles := ig.Nodes()
	ix := &indexed{
		g:       simple.NewDirectedGraph(),
		handles: handles,
		ids:     make(map[string]int64, len(handles)),
	}
	for i, h := range handles {
		ix.ids[h] = int64(i)
		ix.g.AddNode(actorNode{id: int64(i), handle: h})
	}
	for _, e := range ig.Edges() {
		ix.g.SetEdge(ix.g.NewEdge(ix.g.Node(ix.ids[e.From]), ix.g.Node(ix.ids[e.To])))
	}
	return ix
}

func (ix *indexed) node(handle string) (gonumgraph.Node, bool) {
	id, ok := ix.ids[handle]
	if !ok {
		return nil, false
	}
	return ix.g.Node(id), true
}

package graph

import (
	"errors"
	"fmt"
)

// Table is the lossless tabular form of a graph: the node list plus the
// directed edge list. It is what gets persisted and served.
type Table struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// ErrSelfLoop is returned when a table contains an edge from a node to itself.
var ErrSelfLoop = errors.New("self-loop edge")

// Table returns the graph as sorted node and edge lists.
func (g *Graph) Table() Table {
	return Table{Nodes: g.Nodes(), Edges: g.Edges()}
}

// FromTable rebuilds a graph. Edge endpoints missing from the node list are
// added, mirroring how the builder creates sink-only nodes.
func FromTable(t Table) (*Graph, error) {
	g := newGraph()
	for i, id := range t.Nodes {
		if id == "" {
			return nil, fmt.Errorf("node %d: empty id", i)
		}
		g.insertNode(id)
	}
	for i, e := range t.Edges {
		if e.From == "" || e.To == "" {
			return nil, fmt.Errorf("edge %d: empty endpoint", i)
		}
		if e.From == e.To {
			return nil, fmt.Errorf("edge %d (%s): %w", i, e.From, ErrSelfLoop)
		}
		g.insertEdge(e)
	}
	return g, nil
}

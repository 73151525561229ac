package server

import (
	"github.com/sanonone/hashgraph/pkg/analysis"
	"github.com/sanonone/hashgraph/pkg/engine"
	"github.com/sanonone/hashgraph/pkg/graph"
)

// GraphListResponse is returned by GET /graphs.
type GraphListResponse struct {
	Graphs []engine.GraphInfo `json:"graphs"`
}

// NodesResponse is returned by GET /graphs/{name}/nodes.
type NodesResponse struct {
	Graph string   `json:"graph"`
	Nodes []string `json:"nodes"`
}

// EdgesResponse is returned by GET /graphs/{name}/edges.
type EdgesResponse struct {
	Graph string       `json:"graph"`
	Edges []graph.Edge `json:"edges"`
}

// StatsResponse is returned by GET /graphs/{name}/stats. With ?top=k the
// actor list is replaced by the k best actors for the chosen metric.
type StatsResponse struct {
	Graph  string                `json:"graph"`
	Report *analysis.Report      `json:"report,omitempty"`
	Top    []analysis.ActorStats `json:"top,omitempty"`
}

// RefreshResponse is returned by POST /graphs/{name}/refresh.
type RefreshResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

package mcp

import (
	"github.com/sanonone/hashgraph/pkg/analysis"
)

// --- Tool Arguments ---

type ListGraphsArgs struct{}

type GraphSummary struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	UpdatedAt string `json:"updated_at"` // RFC 3339
}

type ListGraphsResult struct {
	Graphs []GraphSummary `json:"graphs"`
}

type GraphStatsArgs struct {
	Graph  string `json:"graph" jsonschema:"Name of the campaign graph (e.g. 'pro', 'anti')"`
	Top    int    `json:"top,omitempty" jsonschema:"Number of top actors to return (default 10)"`
	Metric string `json:"metric,omitempty" jsonschema:"Ranking metric: in_degree, out_degree, clustering, closeness or pagerank (default pagerank)"`
}

type GraphStatsResult struct {
	Nodes             int                   `json:"nodes"`
	Edges             int                   `json:"edges"`
	Density           float64               `json:"density"`
	Reciprocity       float64               `json:"reciprocity"`
	AverageClustering float64               `json:"average_clustering"`
	TopActors         []analysis.ActorStats `json:"top_actors"`
}

type NodeInteractionsArgs struct {
	Graph string `json:"graph" jsonschema:"Name of the campaign graph"`
	Actor string `json:"actor" jsonschema:"Account handle without the leading @"`
}

type NodeInteractionsResult struct {
	Actor    string               `json:"actor"`
	Outgoing []string             `json:"outgoing"`
	Incoming []string             `json:"incoming"`
	Stats    *analysis.ActorStats `json:"stats,omitempty"`
}

type HasInteractionArgs struct {
	Graph string `json:"graph" jsonschema:"Name of the campaign graph"`
	From  string `json:"from" jsonschema:"Handle of the actor who mentioned or reshared"`
	To    string `json:"to" jsonschema:"Handle of the actor who was mentioned or reshared"`
}

type HasInteractionResult struct {
	Exists bool `json:"exists"`
}

type FindConnectionArgs struct {
	Graph  string `json:"graph" jsonschema:"Name of the campaign graph"`
	Source string `json:"source" jsonschema:"Handle where the interaction chain starts"`
	Target string `json:"target" jsonschema:"Handle where the interaction chain ends"`
}

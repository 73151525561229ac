// Package mcp exposes the campaign graphs as Model Context Protocol tools.
package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/hashgraph/pkg/engine"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

func NewMCPServer(eng *engine.Engine) *mcp.Server {
	service := NewService(eng)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "hashgraph",
		Version: Version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_graphs",
		Description: "List the available hashtag campaign interaction graphs with their node and edge counts.",
		InputSchema: mustSchema[ListGraphsArgs](),
	}, service.ListGraphs)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Summary statistics of a campaign graph and its most central accounts.",
		InputSchema: mustSchema[GraphStatsArgs](),
	}, service.GraphStats)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "node_interactions",
		Description: "Accounts a given account mentioned or reshared, and accounts that mentioned or reshared it.",
		InputSchema: mustSchema[NodeInteractionsArgs](),
	}, service.NodeInteractions)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "has_interaction",
		Description: "Check whether one account mentioned or reshared another in a campaign.",
		InputSchema: mustSchema[HasInteractionArgs](),
	}, service.HasInteraction)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "find_connection",
		Description: "Find the shortest chain of mentions and reshares leading from one account to another.",
		InputSchema: mustSchema[FindConnectionArgs](),
	}, service.FindConnection)

	return s
}

// mustSchema infers the tool input schema from the argument struct.
func mustSchema[T any]() *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(err)
	}
	return schema
}

package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/hashgraph/pkg/analysis"
	"github.com/sanonone/hashgraph/pkg/engine"
)

const defaultTop = 10

type Service struct {
	engine *engine.Engine
}

func NewService(eng *engine.Engine) *Service {
	return &Service{engine: eng}
}

// --- Tool Handlers ---

func (s *Service) ListGraphs(ctx context.Context, req *mcp.CallToolRequest, args ListGraphsArgs) (*mcp.CallToolResult, ListGraphsResult, error) {
	infos := s.engine.List()
	res := ListGraphsResult{Graphs: make([]GraphSummary, len(infos))}
	for i, info := range infos {
		res.Graphs[i] = GraphSummary{
			Name:      info.Name,
			Title:     info.Title,
			Nodes:     info.Nodes,
			Edges:     info.Edges,
			UpdatedAt: info.UpdatedAt.Format(time.RFC3339),
		}
	}
	return nil, res, nil
}

func (s *Service) GraphStats(ctx context.Context, req *mcp.CallToolRequest, args GraphStatsArgs) (*mcp.CallToolResult, GraphStatsResult, error) {
	report, err := s.engine.Report(args.Graph)
	if err != nil {
		return nil, GraphStatsResult{}, err
	}

	top := args.Top
	if top <= 0 {
		top = defaultTop
	}
	metric, err := analysis.ParseMetric(args.Metric)
	if err != nil {
		return nil, GraphStatsResult{}, err
	}

	return nil, GraphStatsResult{
		Nodes:             report.Nodes,
		Edges:             report.Edges,
		Density:           report.Density,
		Reciprocity:       report.Reciprocity,
		AverageClustering: report.AverageClustering,
		TopActors:         report.Top(top, metric),
	}, nil
}

func (s *Service) NodeInteractions(ctx context.Context, req *mcp.CallToolRequest, args NodeInteractionsArgs) (*mcp.CallToolResult, NodeInteractionsResult, error) {
	in, err := s.engine.Interactions(args.Graph, args.Actor)
	if err != nil {
		return nil, NodeInteractionsResult{}, err
	}
	res := NodeInteractionsResult{Actor: in.Actor, Outgoing: in.Outgoing, Incoming: in.Incoming}

	// Stats are best effort; the neighbour lists alone answer the question.
	if report, err := s.engine.Report(args.Graph); err == nil {
		if st, ok := report.Actor(args.Actor); ok {
			res.Stats = &st
		}
	}
	return nil, res, nil
}

func (s *Service) HasInteraction(ctx context.Context, req *mcp.CallToolRequest, args HasInteractionArgs) (*mcp.CallToolResult, HasInteractionResult, error) {
	ok, err := s.engine.HasInteraction(args.Graph, args.From, args.To)
	if err != nil {
		return nil, HasInteractionResult{}, err
	}
	return nil, HasInteractionResult{Exists: ok}, nil
}

func (s *Service) FindConnection(ctx context.Context, req *mcp.CallToolRequest, args FindConnectionArgs) (*mcp.CallToolResult, engine.PathResult, error) {
	res, err := s.engine.FindPath(args.Graph, args.Source, args.Target)
	if err != nil {
		return nil, engine.PathResult{}, err
	}
	return nil, *res, nil
}

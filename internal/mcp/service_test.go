package mcp

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/sanonone/hashgraph/pkg/engine"
	"github.com/sanonone/hashgraph/pkg/graph"
	"github.com/sanonone/hashgraph/pkg/post"
)

func newService(t *testing.T) *Service {
	t.Helper()
	eng, err := engine.Open(engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.Build([]post.Record{
		{Actor: "A", MentionedActors: []string{"hub"}},
		{Actor: "B", MentionedActors: []string{"hub"}},
		{Actor: "C", ResharedFromActor: "hub"},
		{Actor: "hub", MentionedActors: []string{"A"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	eng.Put("pro", g)
	return NewService(eng)
}

func TestListAndStats(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, list, err := s.ListGraphs(ctx, nil, ListGraphsArgs{})
	if err != nil || len(list.Graphs) != 1 {
		t.Fatalf("list: %+v %v", list, err)
	}

	_, stats, err := s.GraphStats(ctx, nil, GraphStatsArgs{Graph: "pro", Top: 1, Metric: "in_degree"})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Nodes != 4 || stats.Edges != 4 {
		t.Errorf("stats: %+v", stats)
	}
	if len(stats.TopActors) != 1 || stats.TopActors[0].Handle != "hub" {
		t.Errorf("top actor: %+v", stats.TopActors)
	}

	if _, _, err := s.GraphStats(ctx, nil, GraphStatsArgs{Graph: "pro", Metric: "karma"}); err == nil {
		t.Error("unknown metric should fail")
	}
	if _, _, err := s.GraphStats(ctx, nil, GraphStatsArgs{Graph: "nope"}); !errors.Is(err, engine.ErrGraphNotFound) {
		t.Errorf("expected ErrGraphNotFound, got %v", err)
	}
}

func TestInteractionTools(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, in, err := s.NodeInteractions(ctx, nil, NodeInteractionsArgs{Graph: "pro", Actor: "hub"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(in.Incoming, []string{"A", "B", "C"}) || !slices.Equal(in.Outgoing, []string{"A"}) {
		t.Errorf("hub: %+v", in)
	}
	if in.Stats == nil || in.Stats.InDegree != 3 {
		t.Errorf("hub stats: %+v", in.Stats)
	}

	_, has, err := s.HasInteraction(ctx, nil, HasInteractionArgs{Graph: "pro", From: "C", To: "hub"})
	if err != nil || !has.Exists {
		t.Errorf("C->hub: %+v %v", has, err)
	}
	_, has, _ = s.HasInteraction(ctx, nil, HasInteractionArgs{Graph: "pro", From: "hub", To: "C"})
	if has.Exists {
		t.Error("hub->C should not exist")
	}

	_, path, err := s.FindConnection(ctx, nil, FindConnectionArgs{Graph: "pro", Source: "B", Target: "A"})
	if err != nil {
		t.Fatal(err)
	}
	if !path.Found || !slices.Equal(path.Path, []string{"B", "hub", "A"}) {
		t.Errorf("path: %+v", path)
	}
}

func TestNewMCPServer(t *testing.T) {
	eng, _ := engine.Open(engine.Options{})
	if NewMCPServer(eng) == nil {
		t.Fatal("nil server")
	}
}

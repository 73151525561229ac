package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/sanonone/hashgraph/internal/pipeline"
	"github.com/sanonone/hashgraph/internal/server"
	"github.com/sanonone/hashgraph/pkg/analysis"
	"github.com/sanonone/hashgraph/pkg/config"
	"github.com/sanonone/hashgraph/pkg/engine"
	"github.com/sanonone/hashgraph/pkg/graph"
	"github.com/sanonone/hashgraph/pkg/post"
)

type staticRunner struct{ records []post.Record }

func (r staticRunner) RunCampaign(ctx context.Context, cp config.Campaign) (*pipeline.Result, error) {
	g, err := graph.Build(r.records)
	if err != nil {
		return nil, err
	}
	return &pipeline.Result{Campaign: cp.Name, Graph: g}, nil
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	eng, err := engine.Open(engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.Build([]post.Record{
		{Actor: "alice", MentionedActors: []string{"bob"}},
		{Actor: "bob", ResharedFromActor: "carol"},
		{Actor: "dave"},
	})
	if err != nil {
		t.Fatal(err)
	}
	eng.Put("pro", g)

	cfg := config.DefaultConfig()
	cfg.AuthToken = "secret"
	srv := server.NewServer(eng, cfg, staticRunner{records: []post.Record{{Actor: "x", MentionedActors: []string{"y"}}}})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown()
	})
	return New(ts.URL+"/", "secret")
}

func TestClientQueries(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	graphs, err := c.ListGraphs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(graphs) != 1 || graphs[0].Name != "pro" || graphs[0].Edges != 2 {
		t.Errorf("graphs: %+v", graphs)
	}

	nodes, err := c.Nodes(ctx, "pro")
	if err != nil || !slices.Equal(nodes, []string{"alice", "bob", "carol", "dave"}) {
		t.Errorf("nodes: %v %v", nodes, err)
	}

	in, err := c.Interactions(ctx, "pro", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(in.Incoming, []string{"alice"}) || !slices.Equal(in.Outgoing, []string{"carol"}) {
		t.Errorf("bob: %+v", in)
	}

	ok, err := c.HasInteraction(ctx, "pro", "alice", "bob")
	if err != nil || !ok {
		t.Errorf("alice->bob: %v %v", ok, err)
	}
	ok, _ = c.HasInteraction(ctx, "pro", "bob", "alice")
	if ok {
		t.Error("bob->alice should not exist")
	}

	p, err := c.FindPath(ctx, "pro", "alice", "carol")
	if err != nil || !p.Found || p.Hops != 2 {
		t.Errorf("path: %+v %v", p, err)
	}

	report, err := c.Stats(ctx, "pro")
	if err != nil || report.Nodes != 4 {
		t.Errorf("stats: %+v %v", report, err)
	}
	top, err := c.TopActors(ctx, "pro", 1, analysis.MetricOutDegree)
	if err != nil || len(top.Top) != 1 {
		t.Errorf("top: %+v %v", top, err)
	}
}

func TestClientErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.GetGraph(ctx, "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 APIError, got %v", err)
	}

	unauth := New(c.baseURL, "wrong")
	_, err = unauth.ListGraphs(ctx)
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 APIError, got %v", err)
	}
}

func TestClientRefresh(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	task, err := c.Refresh(ctx, "pro")
	if err != nil {
		t.Fatal(err)
	}
	if err := task.Wait(ctx, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if task.Status != "completed" || len(task.Result) == 0 {
		t.Errorf("task: %+v", task)
	}

	info, err := c.GetGraph(ctx, "pro")
	if err != nil {
		t.Fatal(err)
	}
	if info.Nodes != 2 || info.Edges != 1 {
		t.Errorf("graph after refresh: %+v", info)
	}
}

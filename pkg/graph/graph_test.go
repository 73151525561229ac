package graph

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/sanonone/hashgraph/pkg/post"
)

func TestQueries(t *testing.T) {
	g := mustBuild(t, []post.Record{
		rec("alice", []string{"bob", "carol"}, ""),
		rec("bob", nil, "alice"),
		rec("carol", []string{"bob"}, ""),
		rec("dave", nil, ""),
	})

	if got := g.Successors("alice"); !slices.Equal(got, []string{"bob", "carol"}) {
		t.Errorf("Successors(alice) = %v", got)
	}
	if got := g.Predecessors("bob"); !slices.Equal(got, []string{"alice", "carol"}) {
		t.Errorf("Predecessors(bob) = %v", got)
	}
	if got := g.Successors("dave"); len(got) != 0 {
		t.Errorf("Successors(dave) = %v", got)
	}
	if got := g.Successors("nobody"); got != nil {
		t.Errorf("unknown node should have no successors, got %v", got)
	}
	if !g.HasEdge("bob", "alice") || g.HasEdge("alice", "dave") {
		t.Error("HasEdge returned wrong answers")
	}
	if g.InDegree("bob") != 2 || g.OutDegree("alice") != 2 {
		t.Errorf("degree mismatch: in(bob)=%d out(alice)=%d", g.InDegree("bob"), g.OutDegree("alice"))
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 4 {
		t.Errorf("counts: %d nodes %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestTableRoundTrip(t *testing.T) {
	g := mustBuild(t, []post.Record{
		rec("A", []string{"B"}, "C"),
		rec("Z", nil, ""),
	})

	raw, err := json.Marshal(g.Table())
	if err != nil {
		t.Fatal(err)
	}
	var tbl Table
	if err := json.Unmarshal(raw, &tbl); err != nil {
		t.Fatal(err)
	}
	back, err := FromTable(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(g) {
		t.Errorf("round trip changed graph: %v vs %v", back.Table(), g.Table())
	}
	if !back.HasNode("Z") {
		t.Error("isolated node lost in round trip")
	}
}

func TestFromTableValidation(t *testing.T) {
	if _, err := FromTable(Table{Edges: []Edge{{"A", "A"}}}); !errors.Is(err, ErrSelfLoop) {
		t.Errorf("expected ErrSelfLoop, got %v", err)
	}
	if _, err := FromTable(Table{Nodes: []string{""}}); err == nil {
		t.Error("expected error for empty node id")
	}
	g, err := FromTable(Table{Edges: []Edge{{"A", "B"}}})
	if err != nil {
		t.Fatal(err)
	}
	if !g.HasNode("A") || !g.HasNode("B") {
		t.Error("edge endpoints should become nodes")
	}
}

package engine

import (
	"fmt"

	"github.com/sanonone/hashgraph/pkg/graph"
)

// Interactions lists an actor's neighbours in one graph.
type Interactions struct {
	Actor    string   `json:"actor"`
	Outgoing []string `json:"outgoing"` // Actors this actor mentioned or reshared
	Incoming []string `json:"incoming"` // Actors that mentioned or reshared this actor
}

// Interactions returns the direct neighbours of actor in the named graph.
func (e *Engine) Interactions(name, actor string) (*Interactions, error) {
	g, err := e.Graph(name)
	if err != nil {
		return nil, err
	}
	if !g.HasNode(actor) {
		return nil, fmt.Errorf("%w: %q in graph %q", ErrActorNotFound, actor, name)
	}
	return &Interactions{
		Actor:    actor,
		Outgoing: nonNil(g.Successors(actor)),
		Incoming: nonNil(g.Predecessors(actor)),
	}, nil
}

// HasInteraction reports whether from interacted with to in the named graph.
func (e *Engine) HasInteraction(name, from, to string) (bool, error) {
	g, err := e.Graph(name)
	if err != nil {
		return false, err
	}
	return g.HasEdge(from, to), nil
}

// Edges returns the named graph's edges, optionally restricted to a source
// and/or a target actor.
func (e *Engine) Edges(name, from, to string) ([]graph.Edge, error) {
	g, err := e.Graph(name)
	if err != nil {
		return nil, err
	}
	switch {
	case from != "" && to != "":
		if g.HasEdge(from, to) {
			return []graph.Edge{{From: from, To: to}}, nil
		}
		return []graph.Edge{}, nil
	case from != "":
		out := []graph.Edge{}
		for _, t := range g.Successors(from) {
			out = append(out, graph.Edge{From: from, To: t})
		}
		return out, nil
	case to != "":
		out := []graph.Edge{}
		for _, f := range g.Predecessors(to) {
			out = append(out, graph.Edge{From: f, To: to})
		}
		return out, nil
	}
	return nonNil(g.Edges()), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package graph

import (
	"context"
	"iter"

	"github.com/sanonone/hashgraph/pkg/post"
	"golang.org/x/sync/errgroup"
)

// BuildStats counts what a builder did with its input.
type BuildStats struct {
	Records      int `json:"records"`
	MentionEdges int `json:"mention_edges"`
	ReshareEdges int `json:"reshare_edges"`
	// SelfDropped counts self mentions and self reshares that were ignored.
	SelfDropped int `json:"self_dropped"`
	// Duplicates counts interactions that were already present.
	Duplicates int `json:"duplicates"`
}

func (s *BuildStats) add(o BuildStats) {
	s.Records += o.Records
	s.MentionEdges += o.MentionEdges
	s.ReshareEdges += o.ReshareEdges
	s.SelfDropped += o.SelfDropped
	s.Duplicates += o.Duplicates
}

// Builder folds post records into a Graph. It is not safe for concurrent use;
// use BuildParallel to spread work across goroutines.
type Builder struct {
	g     *Graph
	stats BuildStats
}

// NewBuilder returns a builder holding an empty graph.
func NewBuilder() *Builder {
	return &Builder{g: newGraph()}
}

// Add applies the interaction rules for one record:
//
//  1. each mentioned actor other than the poster gets an edge poster -> mention;
//  2. a record without mentions still registers the poster as a node;
//  3. independently, a reshare of another actor adds poster -> origin.
//
// The poster is always a node, even when every mention is a self mention.
// Adding an existing edge is a no-op. A record with an empty actor is rejected
// with *post.InvalidRecordError and leaves the graph untouched.
func (b *Builder) Add(r post.Record) error {
	return b.add(b.stats.Records, r)
}

// add is Add with the position reported in a rejection.
func (b *Builder) add(pos int, r post.Record) error {
	if err := post.Check(pos, r); err != nil {
		return err
	}
	b.stats.Records++

	actor := r.Actor
	b.g.insertNode(actor)

	for _, m := range r.MentionedActors {
		if m == "" {
			continue
		}
		switch {
		case m == actor:
			b.stats.SelfDropped++
		case b.g.insertEdge(Edge{From: actor, To: m}):
			b.stats.MentionEdges++
		default:
			b.stats.Duplicates++
		}
	}

	if origin := r.ResharedFromActor; origin != "" {
		switch {
		case origin == actor:
			b.stats.SelfDropped++
		case b.g.insertEdge(Edge{From: actor, To: origin}):
			b.stats.ReshareEdges++
		default:
			b.stats.Duplicates++
		}
	}
	return nil
}

// AddNode registers an actor without interactions. It reports whether the
// actor was new.
func (b *Builder) AddNode(id string) bool {
	return b.g.insertNode(id)
}

// AddEdge records the interaction from -> to, creating both endpoints.
// Self interactions are ignored. It reports whether the edge was new.
func (b *Builder) AddEdge(from, to string) bool {
	if from == to {
		return false
	}
	return b.g.insertEdge(Edge{From: from, To: to})
}

// Graph returns a read-only snapshot. Later calls to Add do not affect it.
func (b *Builder) Graph() *Graph {
	return b.g.clone()
}

// Stats returns the counters accumulated so far.
func (b *Builder) Stats() BuildStats {
	return b.stats
}

// Build folds records into a new graph.
func Build(records []post.Record) (*Graph, error) {
	g, _, err := BuildWithStats(records)
	return g, err
}

// BuildWithStats is Build plus the builder counters.
func BuildWithStats(records []post.Record) (*Graph, BuildStats, error) {
	b := NewBuilder()
	for _, r := range records {
		if err := b.Add(r); err != nil {
			return nil, b.stats, err
		}
	}
	return b.g, b.stats, nil
}

// BuildSeq folds a lazily produced sequence.
func BuildSeq(seq iter.Seq[post.Record]) (*Graph, error) {
	b := NewBuilder()
	for r := range seq {
		if err := b.Add(r); err != nil {
			return nil, err
		}
	}
	return b.g, nil
}

// Merge returns the union of the given graphs. Merge is commutative and
// idempotent: merging a graph with itself, or in any order, gives the same
// node and edge sets. Inputs are not modified.
func Merge(graphs ...*Graph) *Graph {
	if len(graphs) == 0 {
		return newGraph()
	}
	out := graphs[0].clone()
	for _, g := range graphs[1:] {
		g.nodes.Scan(func(id string) bool {
			out.insertNode(id)
			return true
		})
		g.out.Scan(func(e Edge) bool {
			out.insertEdge(e)
			return true
		})
	}
	return out
}

// BuildParallel partitions records into contiguous chunks, builds one graph
// per chunk on its own goroutine and merges the partial graphs.
// The result equals Build(records). Invalid record positions refer to the
// full input slice.
func BuildParallel(ctx context.Context, records []post.Record, workers int) (*Graph, BuildStats, error) {
	if workers <= 1 || len(records) < 2*workers {
		return BuildWithStats(records)
	}

	chunk := (len(records) + workers - 1) / workers
	parts := make([]*Graph, workers)
	stats := make([]BuildStats, workers)

	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(records))
		if lo >= hi {
			parts[w] = newGraph()
			continue
		}
		eg.Go(func() error {
			b := NewBuilder()
			for i, r := range records[lo:hi] {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if err := b.add(lo+i, r); err != nil {
					return err
				}
			}
			parts[w] = b.g
			stats[w] = b.stats
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, BuildStats{}, err
	}

	var total BuildStats
	for _, s := range stats {
		total.add(s)
	}
	merged := Merge(parts...)
	// Partitions cannot see each other's edges; repeats across partitions
	// only show up after the merge. The per-rule counters stay per-partition.
	total.Duplicates += total.MentionEdges + total.ReshareEdges - merged.EdgeCount()
	return merged, total, nil
}

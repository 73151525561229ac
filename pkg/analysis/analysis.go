// Package analysis computes descriptive statistics over an interaction graph:
// degree distributions, local clustering, closeness and PageRank.
// Path and ranking algorithms come from gonum; the graph is mirrored into a
// gonum directed graph with IDs assigned in sorted handle order.
package analysis

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/sanonone/hashgraph/pkg/graph"
)

// ActorStats holds the per-actor measures.
type ActorStats struct {
	Handle     string  `json:"handle"`
	InDegree   int     `json:"in_degree"`
	OutDegree  int     `json:"out_degree"`
	Clustering float64 `json:"clustering"`
	Closeness  float64 `json:"closeness"`
	PageRank   float64 `json:"pagerank"`
}

// Report is the full set of statistics for one graph.
type Report struct {
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	Density     float64 `json:"density"`
	Reciprocity float64 `json:"reciprocity"`
	// AverageClustering is the mean local clustering over all actors.
	AverageClustering float64 `json:"average_clustering"`

	InDegreeHistogram    []int `json:"in_degree_histogram"`
	OutDegreeHistogram   []int `json:"out_degree_histogram"`
	TotalDegreeHistogram []int `json:"total_degree_histogram"`

	// Actors is sorted by handle.
	Actors []ActorStats `json:"actors"`
}

// Metric names a per-actor measure used for ranking.
type Metric string

const (
	MetricInDegree   Metric = "in_degree"
	MetricOutDegree  Metric = "out_degree"
	MetricClustering Metric = "clustering"
	MetricCloseness  Metric = "closeness"
	MetricPageRank   Metric = "pagerank"
)

// ErrUnknownMetric is returned by ParseMetric for names it does not know.
var ErrUnknownMetric = errors.New("unknown metric")

// ParseMetric validates a metric name. The empty name means PageRank.
func ParseMetric(name string) (Metric, error) {
	switch m := Metric(name); m {
	case "":
		return MetricPageRank, nil
	case MetricInDegree, MetricOutDegree, MetricClustering, MetricCloseness, MetricPageRank:
		return m, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMetric, name)
}

// Analyze computes every statistic for g.
func Analyze(g *graph.Graph) *Report {
	ix := index(g)
	n, m := g.NodeCount(), g.EdgeCount()

	r := &Report{
		Nodes:                n,
		Edges:                m,
		InDegreeHistogram:    DegreeHistogram(g, InDegree),
		OutDegreeHistogram:   DegreeHistogram(g, OutDegree),
		TotalDegreeHistogram: DegreeHistogram(g, TotalDegree),
		Actors:               make([]ActorStats, 0, n),
	}
	if n > 1 {
		r.Density = float64(m) / float64(n*(n-1))
	}

	clustering := Clustering(g)
	closeness := ix.closeness()
	ranks := ix.pageRank()

	reciprocated := 0
	var clusterSum float64
	for _, h := range ix.handles {
		for _, s := range g.Successors(h) {
			if g.HasEdge(s, h) {
				reciprocated++
			}
		}
		clusterSum += clustering[h]
		r.Actors = append(r.Actors, ActorStats{
			Handle:     h,
			InDegree:   g.InDegree(h),
			OutDegree:  g.OutDegree(h),
			Clustering: clustering[h],
			Closeness:  closeness[h],
			PageRank:   ranks[h],
		})
	}
	if m > 0 {
		r.Reciprocity = float64(reciprocated) / float64(m)
	}
	if n > 0 {
		r.AverageClustering = clusterSum / float64(n)
	}
	return r
}

// Top returns up to k actors ranked by the metric, highest first. Ties are
// broken by handle.
func (r *Report) Top(k int, by Metric) []ActorStats {
	ranked := slices.Clone(r.Actors)
	slices.SortStableFunc(ranked, func(a, b ActorStats) int {
		if c := cmp.Compare(value(b, by), value(a, by)); c != 0 {
			return c
		}
		return cmp.Compare(a.Handle, b.Handle)
	})
	if k >= 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// Actor returns the stats for a handle.
func (r *Report) Actor(handle string) (ActorStats, bool) {
	i, found := slices.BinarySearchFunc(r.Actors, handle, func(a ActorStats, h string) int {
		return cmp.Compare(a.Handle, h)
	})
	if !found {
		return ActorStats{}, false
	}
	return r.Actors[i], true
}

func value(a ActorStats, by Metric) float64 {
	switch by {
	case MetricInDegree:
		return float64(a.InDegree)
	case MetricOutDegree:
		return float64(a.OutDegree)
	case MetricClustering:
		return a.Clustering
	case MetricCloseness:
		return a.Closeness
	default:
		return a.PageRank
	}
}

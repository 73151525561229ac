package analysis

import "github.com/sanonone/hashgraph/pkg/graph"

// DegreeKind selects which degree a histogram counts.
type DegreeKind string

const (
	InDegree    DegreeKind = "in"
	OutDegree   DegreeKind = "out"
	TotalDegree DegreeKind = "total"
)

// DegreeHistogram returns freq where freq[d] is the number of actors with
// degree d. The slice has length max degree + 1; an empty graph yields nil.
func DegreeHistogram(g *graph.Graph, kind DegreeKind) []int {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil
	}
	seq := make([]int, len(nodes))
	maxDeg := 0
	for i, n := range nodes {
		switch kind {
		case InDegree:
			seq[i] = g.InDegree(n)
		case OutDegree:
			seq[i] = g.OutDegree(n)
		default:
			seq[i] = g.InDegree(n) + g.OutDegree(n)
		}
		maxDeg = max(maxDeg, seq[i])
	}
	freq := make([]int, maxDeg+1)
	for _, d := range seq {
		freq[d]++
	}
	return freq
}

package engine

import (
	"github.com/sanonone/hashgraph/pkg/analysis"
)

type PathResult struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Found  bool     `json:"found"`
	Hops   int      `json:"hops"`
	Path   []string `json:"path"` // Sequence of actor handles
}

// FindPath finds a shortest interaction chain from source to target.
// A missing chain is not an error: Found is false and Path empty.
func (e *Engine) FindPath(name, source, target string) (*PathResult, error) {
	g, err := e.Graph(name)
	if err != nil {
		return nil, err
	}
	res := &PathResult{Source: source, Target: target, Path: []string{}}
	if p := analysis.ShortestPath(g, source, target); p != nil {
		res.Found = true
		res.Path = p
		res.Hops = len(p) - 1
	}
	return res, nil
}

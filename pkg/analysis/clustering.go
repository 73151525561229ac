package analysis

import "github.com/sanonone/hashgraph/pkg/graph"

// Clustering returns the local clustering coefficient of every actor,
// using the directed definition (Fagiolo 2007):
//
//	c(u) = T(u) / (2 * (dtot(u) * (dtot(u) - 1) - 2 * drecip(u)))
//
// where T(u) counts directed triangles through u, dtot is in+out degree and
// drecip the number of reciprocated edges. Actors with no possible triangle
// score 0.
func Clustering(g *graph.Graph) map[string]float64 {
	nodes := g.Nodes()
	succ := make(map[string]map[string]struct{}, len(nodes))
	pred := make(map[string]map[string]struct{}, len(nodes))
	for _, n := range nodes {
		succ[n] = toSet(g.Successors(n))
		pred[n] = toSet(g.Predecessors(n))
	}

	out := make(map[string]float64, len(nodes))
	for _, u := range nodes {
		// Neighbours counted with multiplicity: v appears twice if u<->v.
		var nbrs []string
		for v := range succ[u] {
			nbrs = append(nbrs, v)
		}
		for v := range pred[u] {
			nbrs = append(nbrs, v)
		}

		triangles := 0
		for _, v := range nbrs {
			for w := range succ[v] {
				if w == u {
					continue
				}
				if _, ok := succ[u][w]; ok {
					triangles++
				}
				if _, ok := pred[u][w]; ok {
					triangles++
				}
			}
			for w := range pred[v] {
				if w == u {
					continue
				}
				if _, ok := succ[u][w]; ok {
					triangles++
				}
				if _, ok := pred[u][w]; ok {
					triangles++
				}
			}
		}

		dtot := len(succ[u]) + len(pred[u])
		drecip := 0
		for v := range succ[u] {
			if _, ok := pred[u][v]; ok {
				drecip++
			}
		}
		denom := 2 * (dtot*(dtot-1) - 2*drecip)
		if triangles == 0 || denom == 0 {
			out[u] = 0
			continue
		}
		out[u] = float64(triangles) / float64(denom)
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

package analysis

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteDegreeSeries writes one row per degree value with the in, out and
// total frequencies, the data behind a degree distribution plot.
func WriteDegreeSeries(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"degree", "in", "out", "total"}); err != nil {
		return err
	}
	rows := max(len(r.InDegreeHistogram), len(r.OutDegreeHistogram), len(r.TotalDegreeHistogram))
	for d := 0; d < rows; d++ {
		row := []string{
			strconv.Itoa(d),
			strconv.Itoa(at(r.InDegreeHistogram, d)),
			strconv.Itoa(at(r.OutDegreeHistogram, d)),
			strconv.Itoa(at(r.TotalDegreeHistogram, d)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteActorSeries writes the per-actor measures, one row per actor in
// handle order (the x axis of the clustering and closeness plots).
func WriteActorSeries(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "handle", "in_degree", "out_degree", "clustering", "closeness", "pagerank"}); err != nil {
		return err
	}
	for i, a := range r.Actors {
		row := []string{
			strconv.Itoa(i),
			a.Handle,
			strconv.Itoa(a.InDegree),
			strconv.Itoa(a.OutDegree),
			strconv.FormatFloat(a.Clustering, 'f', 6, 64),
			strconv.FormatFloat(a.Closeness, 'f', 6, 64),
			strconv.FormatFloat(a.PageRank, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func at(s []int, i int) int {
	if i < len(s) {
		return s[i]
	}
	return 0
}

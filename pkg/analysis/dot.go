package analysis

import (
	"fmt"
	"io"

	"github.com/sanonone/hashgraph/pkg/graph"
	"gonum.org/v1/gonum/graph/encoding/dot"
)

// WriteDOT writes the graph in Graphviz DOT format, using actor handles as
// node identifiers. Rendering the file is left to external tools.
func WriteDOT(w io.Writer, g *graph.Graph, name string) error {
	b, err := dot.Marshal(index(g).g, name, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dot: %w", err)
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

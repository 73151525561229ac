package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sanonone/hashgraph/pkg/graph"
)

// File name suffixes for the two on-disk layouts of a named graph.
const (
	TableExt = ".table.json"
	LogExt   = ".graphlog"
)

// SaveTable writes the graph's node and edge lists as JSON. The file is
// written next to the target and renamed into place.
func SaveTable(path string, g *graph.Graph) error {
	data, err := json.MarshalIndent(g.Table(), "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp table: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace table file: %w", err)
	}
	return nil
}

// LoadTable reads a file written by SaveTable.
func LoadTable(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t graph.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode table %s: %w", path, err)
	}
	return graph.FromTable(t)
}

// Package engine keeps the named campaign graphs served by the HTTP API and
// the MCP tools.
//
// Graphs are immutable values: a refresh replaces the whole graph for a name
// and bumps its version, so readers never observe a partially built graph.
// Statistics reports are computed lazily and cached per graph version.
//
// Basic usage:
//
//	opts := engine.DefaultOptions("./data")
//	eng, err := engine.Open(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := eng.Report("pro")
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sanonone/hashgraph/pkg/analysis"
	"github.com/sanonone/hashgraph/pkg/graph"
	"github.com/sanonone/hashgraph/pkg/metrics"
	"github.com/sanonone/hashgraph/pkg/persistence"
)

// ErrGraphNotFound is returned for an unknown graph name.
var ErrGraphNotFound = errors.New("graph not found")

// ErrActorNotFound is returned when a graph has no node for the handle.
var ErrActorNotFound = errors.New("actor not found")

// Options configures an Engine.
type Options struct {
	// DataDir is scanned for graph tables on Open. Empty skips loading.
	DataDir string

	// ReportCacheSize bounds the number of cached statistics reports.
	ReportCacheSize int

	// Titles maps graph names to display titles.
	Titles map[string]string
}

// DefaultOptions returns options loading tables from dataDir.
func DefaultOptions(dataDir string) Options {
	return Options{
		DataDir:         dataDir,
		ReportCacheSize: 64,
	}
}

// GraphInfo describes a named graph.
type GraphInfo struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type entry struct {
	info  GraphInfo
	graph *graph.Graph
}

type reportKey struct {
	name    string
	version uint64
}

// Engine is a concurrency-safe registry of named graphs.
type Engine struct {
	opts Options

	mu      sync.RWMutex
	graphs  map[string]*entry
	version uint64

	reports *lru.Cache[reportKey, *analysis.Report]
}

// Open creates an engine and loads every table found in opts.DataDir.
// A damaged table is logged and skipped so one bad file does not keep the
// others offline.
func Open(opts Options) (*Engine, error) {
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = 64
	}
	cache, err := lru.New[reportKey, *analysis.Report](opts.ReportCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}

	e := &Engine{
		opts:    opts,
		graphs:  make(map[string]*entry),
		reports: cache,
	}
	if opts.DataDir == "" {
		return e, nil
	}

	paths, err := filepath.Glob(filepath.Join(opts.DataDir, "*"+persistence.TableExt))
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), persistence.TableExt)
		g, err := persistence.LoadTable(path)
		if err != nil {
			slog.Warn("[Engine] Skipping unreadable graph table", "path", path, "error", err)
			continue
		}
		e.Put(name, g)
		slog.Info("[Engine] Graph loaded", "name", name, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	}
	return e, nil
}

// Put publishes g under name, replacing any previous graph.
func (e *Engine) Put(name string, g *graph.Graph) GraphInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.version++
	title := e.opts.Titles[name]
	if title == "" {
		title = name
	}
	info := GraphInfo{
		Name:      name,
		Title:     title,
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		Version:   e.version,
		UpdatedAt: time.Now().UTC(),
	}
	e.graphs[name] = &entry{info: info, graph: g}

	metrics.GraphNodes.WithLabelValues(name).Set(float64(info.Nodes))
	metrics.GraphEdges.WithLabelValues(name).Set(float64(info.Edges))
	return info
}

// Graph returns the current graph for name.
func (e *Engine) Graph(name string) (*graph.Graph, error) {
	ent, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	return ent.graph, nil
}

// Info returns the description of the named graph.
func (e *Engine) Info(name string) (GraphInfo, error) {
	ent, err := e.lookup(name)
	if err != nil {
		return GraphInfo{}, err
	}
	return ent.info, nil
}

// List returns every graph sorted by name.
func (e *Engine) List() []GraphInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]GraphInfo, 0, len(e.graphs))
	for _, ent := range e.graphs {
		out = append(out, ent.info)
	}
	slices.SortFunc(out, func(a, b GraphInfo) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Report returns the statistics of the named graph, computing them at most
// once per graph version.
func (e *Engine) Report(name string) (*analysis.Report, error) {
	ent, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	key := reportKey{name: name, version: ent.info.Version}
	if r, ok := e.reports.Get(key); ok {
		return r, nil
	}
	r := analysis.Analyze(ent.graph)
	e.reports.Add(key, r)
	return r, nil
}

func (e *Engine) lookup(name string) (*entry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ent, ok := e.graphs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGraphNotFound, name)
	}
	return ent, nil
}

// Package pipeline runs the campaign workflow: fetch records, build the
// interaction graph, export the records, persist the graph and write the
// statistics series.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sanonone/hashgraph/pkg/analysis"
	"github.com/sanonone/hashgraph/pkg/config"
	"github.com/sanonone/hashgraph/pkg/fetch"
	"github.com/sanonone/hashgraph/pkg/graph"
	"github.com/sanonone/hashgraph/pkg/metrics"
	"github.com/sanonone/hashgraph/pkg/persistence"
	"github.com/sanonone/hashgraph/pkg/post"
)

// Result summarises one campaign run.
type Result struct {
	RunID    string                   `json:"run_id"`
	Campaign string                   `json:"campaign"`
	Fetched  int                      `json:"fetched"`
	Rejected int                      `json:"rejected"`
	Build    graph.BuildStats         `json:"build"`
	Appended persistence.AppendResult `json:"appended"`
	Duration time.Duration            `json:"duration"`

	// Graph is the accumulated campaign graph: this run merged with every
	// earlier run recorded in the graph log.
	Graph  *graph.Graph     `json:"-"`
	Report *analysis.Report `json:"-"`
}

// Pipeline executes campaigns against a record source.
// Runs of the same campaign are serialised: they share one graph log.
type Pipeline struct {
	cfg    config.Config
	source fetch.Source

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a pipeline. The config should already be validated.
func New(cfg config.Config, source fetch.Source) *Pipeline {
	return &Pipeline{cfg: cfg, source: source, locks: make(map[string]*sync.Mutex)}
}

// campaignLock returns the mutex guarding the files of one campaign.
func (p *Pipeline) campaignLock(name string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[name]
	if !ok {
		l = &sync.Mutex{}
		p.locks[name] = l
	}
	return l
}

// Run executes every configured campaign, at most cfg.Concurrency at a time.
// The first failure cancels the remaining campaigns.
func (p *Pipeline) Run(ctx context.Context) ([]*Result, error) {
	campaigns := p.cfg.ResolvedCampaigns()
	results := make([]*Result, len(campaigns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Concurrency, 1))
	for i, cp := range campaigns {
		g.Go(func() error {
			res, err := p.RunCampaign(gctx, cp)
			if err != nil {
				return fmt.Errorf("campaign %s: %w", cp.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunCampaign executes a single, already resolved campaign.
func (p *Pipeline) RunCampaign(ctx context.Context, cp config.Campaign) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Campaign: cp.Name}
	log := slog.With("campaign", cp.Name, "run_id", res.RunID)

	lock := p.campaignLock(cp.Name)
	lock.Lock()
	defer lock.Unlock()

	q, err := query(cp)
	if err != nil {
		return nil, err
	}

	log.Info("[Pipeline] Fetching records", "query", q.String(), "limit", q.Limit)
	fetchStart := time.Now()
	records, err := p.source.Fetch(ctx, q)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.FetchDuration.WithLabelValues(cp.Name, status).Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	res.Fetched = len(records)

	valid, rejected := post.Filter(records)
	res.Rejected = len(rejected)
	for _, e := range rejected {
		log.Warn("[Pipeline] Dropping invalid record", "error", e)
	}
	metrics.RecordsRejected.WithLabelValues(cp.Name).Add(float64(len(rejected)))

	built, stats, err := graph.BuildParallel(ctx, valid, p.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	res.Build = stats
	metrics.RecordsProcessed.WithLabelValues(cp.Name).Add(float64(stats.Records))
	metrics.EdgesAdded.WithLabelValues(cp.Name, "mention").Add(float64(stats.MentionEdges))
	metrics.EdgesAdded.WithLabelValues(cp.Name, "reshare").Add(float64(stats.ReshareEdges))
	metrics.SelfInteractionsDropped.WithLabelValues(cp.Name).Add(float64(stats.SelfDropped))

	if err := p.exportRecords(cp, valid); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.cfg.DataDir, 0755); err != nil {
		return nil, err
	}
	glog, err := persistence.OpenGraphLog(LogPath(p.cfg, cp.Name))
	if err != nil {
		return nil, err
	}
	res.Appended, err = glog.Append(built)
	res.Graph = glog.Graph()
	if cerr := glog.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("graph log: %w", err)
	}
	if err := persistence.SaveTable(TablePath(p.cfg, cp.Name), res.Graph); err != nil {
		return nil, fmt.Errorf("graph table: %w", err)
	}

	metrics.GraphNodes.WithLabelValues(cp.Name).Set(float64(res.Graph.NodeCount()))
	metrics.GraphEdges.WithLabelValues(cp.Name).Set(float64(res.Graph.EdgeCount()))

	res.Report = analysis.Analyze(res.Graph)
	if err := p.writeSeries(cp, res.Graph, res.Report); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	log.Info("[Pipeline] Campaign complete",
		"fetched", res.Fetched,
		"rejected", res.Rejected,
		"nodes", res.Graph.NodeCount(),
		"edges", res.Graph.EdgeCount(),
		"new_edges", res.Appended.Edges,
		"duration", res.Duration)
	return res, nil
}

func query(cp config.Campaign) (fetch.Query, error) {
	q := fetch.Query{Terms: cp.Hashtags, Limit: cp.MaxPosts, Lang: cp.Lang}
	if cp.Since != "" {
		since, err := time.Parse(config.DateLayout, cp.Since)
		if err != nil {
			return q, fmt.Errorf("invalid since date %q: %w", cp.Since, err)
		}
		q.Since = since
	}
	return q, nil
}

// exportRecords writes the CSV, JSON-by-actor and JSONL dumps.
func (p *Pipeline) exportRecords(cp config.Campaign, records []post.Record) error {
	if err := os.MkdirAll(p.cfg.DataDir, 0755); err != nil {
		return err
	}
	base := filepath.Join(p.cfg.DataDir, cp.FilePrefix)
	writers := []struct {
		ext   string
		write func(io.Writer, []post.Record) error
	}{
		{".csv", post.WriteCSV},
		{".json", post.WriteJSONByActor},
		{".jsonl", post.WriteJSONL},
	}
	for _, w := range writers {
		if err := writeFile(base+w.ext, func(f io.Writer) error { return w.write(f, records) }); err != nil {
			return fmt.Errorf("export %s: %w", w.ext, err)
		}
	}
	return nil
}

// writeSeries writes the degree and actor series plus the DOT export.
func (p *Pipeline) writeSeries(cp config.Campaign, g *graph.Graph, r *analysis.Report) error {
	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		return err
	}
	base := filepath.Join(p.cfg.OutputDir, cp.Name)
	if err := writeFile(base+"_degree.csv", func(w io.Writer) error { return analysis.WriteDegreeSeries(w, r) }); err != nil {
		return err
	}
	if err := writeFile(base+"_actors.csv", func(w io.Writer) error { return analysis.WriteActorSeries(w, r) }); err != nil {
		return err
	}
	return writeFile(base+".dot", func(w io.Writer) error { return analysis.WriteDOT(w, g, cp.Title) })
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LogPath is where a campaign's graph log lives.
func LogPath(cfg config.Config, campaign string) string {
	return filepath.Join(cfg.DataDir, campaign+persistence.LogExt)
}

// TablePath is where a campaign's graph table snapshot lives.
func TablePath(cfg config.Config, campaign string) string {
	return filepath.Join(cfg.DataDir, campaign+persistence.TableExt)
}

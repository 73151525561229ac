package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sanonone/hashgraph/internal/mcp"
	"github.com/sanonone/hashgraph/internal/pipeline"
	"github.com/sanonone/hashgraph/internal/server"
	"github.com/sanonone/hashgraph/pkg/analysis"
	"github.com/sanonone/hashgraph/pkg/config"
	"github.com/sanonone/hashgraph/pkg/engine"
	"github.com/sanonone/hashgraph/pkg/fetch"
	"github.com/sanonone/hashgraph/pkg/graph"
	"github.com/sanonone/hashgraph/pkg/persistence"
	"github.com/sanonone/hashgraph/pkg/post"
)

var (
	maxPosts  int
	since     string
	inputPath string
	campaign  string
	graphName string
	topK      int
	rankBy    string
	dotPath   string

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Fetch every campaign, build the graphs and write exports and statistics",
		RunE:  runPipeline,
	}

	buildCmd = &cobra.Command{
		Use:   "build [records.jsonl|records.csv]",
		Short: "Build a graph from a JSON Lines or CSV record file and persist it in the data directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}

	statsCmd = &cobra.Command{
		Use:   "stats [graph.table.json]",
		Short: "Print the statistics report of a stored graph table",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored graphs over the HTTP API",
		RunE:  runServe,
	}

	mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Serve the stored graphs as MCP tools over stdio",
		RunE:  runMCP,
	}
)

func init() {
	runCmd.Flags().IntVar(&maxPosts, "max-posts", 0, "records per campaign (overrides defaults.max_posts)")
	runCmd.Flags().StringVar(&since, "since", "", "earliest post date, YYYY-MM-DD (overrides defaults.since)")
	runCmd.Flags().StringVar(&inputPath, "input", "", "replay records from a JSON Lines file instead of calling the API")
	runCmd.Flags().StringVar(&campaign, "campaign", "", "run only the named campaign")

	buildCmd.Flags().StringVar(&graphName, "name", "", "graph name (defaults to the input file name)")

	statsCmd.Flags().IntVar(&topK, "top", 10, "number of actors to list")
	statsCmd.Flags().StringVar(&rankBy, "by", string(analysis.MetricPageRank), "ranking metric")
	statsCmd.Flags().StringVar(&dotPath, "dot", "", "also write the graph in DOT format to this file")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newSource() fetch.Source {
	if inputPath != "" {
		return fetch.FileSource{Path: inputPath}
	}
	return fetch.NewAPIClient(fetch.ClientConfig{
		BaseURL:     cfg.API.BaseURL,
		BearerToken: cfg.API.BearerToken,
		Timeout:     cfg.API.Timeout,
		PageSize:    cfg.API.PageSize,
	})
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if maxPosts > 0 {
		cfg.Defaults.MaxPosts = maxPosts
	}
	if since != "" {
		cfg.Defaults.Since = since
	}
	if campaign != "" {
		cp, err := cfg.Campaign(campaign)
		if err != nil {
			return err
		}
		cfg.Campaigns = []config.Campaign{cp}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	if inputPath == "" && cfg.API.BearerToken == "" {
		return fmt.Errorf("no API bearer token: set api.bearer_token or %s, or use --input", config.BearerTokenEnv)
	}

	ctx, stop := signalContext()
	defer stop()

	if cfg.MetricsAddr != "" {
		ms := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("[Metrics] Listener failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		defer ms.Close()
	}

	results, err := pipeline.New(cfg, newSource()).Run(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CAMPAIGN\tFETCHED\tREJECTED\tNODES\tEDGES\tNEW EDGES\tDURATION")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Campaign, r.Fetched, r.Rejected, r.Graph.NodeCount(), r.Graph.EdgeCount(), r.Appended.Edges, r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func runBuild(cmd *cobra.Command, args []string) error {
	name := graphName
	if name == "" {
		name = trimExt(filepath.Base(args[0]))
	}
	if err := checkGraphName(name); err != nil {
		return err
	}

	records, err := readRecords(args[0])
	if err != nil {
		return err
	}

	valid, rejected := post.Filter(records)
	for _, e := range rejected {
		slog.Warn("[Build] Dropping invalid record", "error", e)
	}

	ctx, stop := signalContext()
	defer stop()
	g, stats, err := graph.BuildParallel(ctx, valid, cfg.Workers)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}
	glog, err := persistence.OpenGraphLog(pipeline.LogPath(cfg, name))
	if err != nil {
		return err
	}
	appended, err := glog.Append(g)
	merged := glog.Graph()
	if cerr := glog.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if err := persistence.SaveTable(pipeline.TablePath(cfg, name), merged); err != nil {
		return err
	}

	return writeJSON(cmd, map[string]any{
		"graph":    name,
		"build":    stats,
		"rejected": len(rejected),
		"appended": appended,
		"nodes":    merged.NodeCount(),
		"edges":    merged.EdgeCount(),
	})
}

// readRecords loads a record file written by the pipeline exports: CSV by
// extension, JSON Lines otherwise.
func readRecords(path string) ([]post.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return post.ReadCSV(f)
	}
	return post.ReadJSONL(f)
}

// checkGraphName rejects names that would escape the data directory.
func checkGraphName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid graph name %q", name)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	by, err := analysis.ParseMetric(rankBy)
	if err != nil {
		return err
	}
	g, err := persistence.LoadTable(args[0])
	if err != nil {
		return err
	}
	report := analysis.Analyze(g)

	if dotPath != "" {
		f, err := os.Create(dotPath)
		if err != nil {
			return err
		}
		name := trimExt(filepath.Base(args[0]))
		if err := analysis.WriteDOT(f, g, name); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	summary := *report
	summary.Actors = nil
	return writeJSON(cmd, map[string]any{
		"report": summary,
		"top":    report.Top(topK, by),
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}

	var runner server.Runner
	if cfg.API.BearerToken != "" {
		runner = pipeline.New(cfg, newSource())
	} else {
		slog.Warn("[Server] No API bearer token configured, refresh endpoint disabled")
	}

	srv := server.NewServer(eng, cfg, runner)
	ctx, stop := signalContext()
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		srv.Shutdown()
		return nil
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	slog.Info("[MCP] Serving over stdio", "graphs", len(eng.List()))
	return mcp.NewMCPServer(eng).Run(ctx, &sdkmcp.StdioTransport{})
}

func openEngine() (*engine.Engine, error) {
	opts := engine.DefaultOptions(cfg.DataDir)
	opts.ReportCacheSize = cfg.StatsCache
	opts.Titles = make(map[string]string, len(cfg.Campaigns))
	for _, cp := range cfg.ResolvedCampaigns() {
		opts.Titles[cp.Name] = cp.Title
	}
	return engine.Open(opts)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// trimExt strips the table or record suffix from a file name.
func trimExt(name string) string {
	if n, ok := strings.CutSuffix(name, persistence.TableExt); ok {
		return n
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Package server exposes the campaign graphs over a read-only HTTP API, with
// an asynchronous refresh endpoint that re-runs a campaign pipeline.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/hashgraph/internal/pipeline"
	"github.com/sanonone/hashgraph/pkg/config"
	"github.com/sanonone/hashgraph/pkg/engine"
)

// Runner re-executes a single campaign. *pipeline.Pipeline implements it.
type Runner interface {
	RunCampaign(ctx context.Context, cp config.Campaign) (*pipeline.Result, error)
}

// Server holds the HTTP interface and the graph engine it serves.
type Server struct {
	Engine *engine.Engine

	httpServer *http.Server
	cfg        config.Config
	runner     Runner

	taskManager *TaskManager
	authToken   string

	// Refresh tasks run under this context; Shutdown cancels it.
	baseCtx    context.Context
	cancelBase context.CancelFunc
	tasks      sync.WaitGroup
}

// NewServer builds the HTTP server. runner may be nil, in which case the
// refresh endpoint answers 503.
func NewServer(eng *engine.Engine, cfg config.Config, runner Runner) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		Engine:      eng,
		cfg:         cfg,
		runner:      runner,
		taskManager: NewTaskManager(),
		authToken:   cfg.AuthToken,
		baseCtx:     ctx,
		cancelBase:  cancel,
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Chain middlewares: Recovery -> Logging -> Auth -> Mux
	var handler http.Handler = mux
	handler = s.authMiddleware(handler)
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)

	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           rootMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	slog.Info("[Server] HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server and cancels running refresh tasks.
func (s *Server) Shutdown() {
	slog.Info("[Server] Starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("[Server] HTTP server shutdown error", "error", err)
	}

	s.cancelBase()
	s.tasks.Wait()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"graphs": len(s.Engine.List()),
	})
}

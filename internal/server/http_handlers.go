package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sanonone/hashgraph/pkg/analysis"
	"github.com/sanonone/hashgraph/pkg/config"
	"github.com/sanonone/hashgraph/pkg/engine"
)

// registerHTTPHandlers sets up the REST API routes.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /graphs", s.handleListGraphs)
	mux.HandleFunc("GET /graphs/{name}", s.handleGetGraph)
	mux.HandleFunc("GET /graphs/{name}/nodes", s.handleListNodes)
	mux.HandleFunc("GET /graphs/{name}/nodes/{id}/edges", s.handleNodeEdges)
	mux.HandleFunc("GET /graphs/{name}/edges", s.handleListEdges)
	mux.HandleFunc("GET /graphs/{name}/stats", s.handleStats)
	mux.HandleFunc("GET /graphs/{name}/path", s.handlePath)
	mux.HandleFunc("POST /graphs/{name}/refresh", s.handleRefresh)
	mux.HandleFunc("GET /tasks/{id}", s.handleGetTask)
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, GraphListResponse{Graphs: s.Engine.List()})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	info, err := s.Engine.Info(r.PathValue("name"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, info)
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	g, err := s.Engine.Graph(name)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	nodes := g.Nodes()
	if nodes == nil {
		nodes = []string{}
	}
	s.writeHTTPResponse(w, http.StatusOK, NodesResponse{Graph: name, Nodes: nodes})
}

func (s *Server) handleNodeEdges(w http.ResponseWriter, r *http.Request) {
	in, err := s.Engine.Interactions(r.PathValue("name"), r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, in)
}

func (s *Server) handleListEdges(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	q := r.URL.Query()
	edges, err := s.Engine.Edges(name, q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, EdgesResponse{Graph: name, Edges: edges})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	report, err := s.Engine.Report(name)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	topParam := r.URL.Query().Get("top")
	if topParam == "" {
		s.writeHTTPResponse(w, http.StatusOK, StatsResponse{Graph: name, Report: report})
		return
	}
	k, err := strconv.Atoi(topParam)
	if err != nil || k < 0 {
		s.writeHTTPError(w, http.StatusBadRequest, "top must be a non-negative integer")
		return
	}
	by, err := analysis.ParseMetric(r.URL.Query().Get("by"))
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Summary without the full actor list.
	summary := *report
	summary.Actors = nil
	s.writeHTTPResponse(w, http.StatusOK, StatsResponse{Graph: name, Report: &summary, Top: report.Top(k, by)})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		s.writeHTTPError(w, http.StatusBadRequest, "both 'from' and 'to' are required")
		return
	}
	res, err := s.Engine.FindPath(r.PathValue("name"), from, to)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, res)
}

// handleRefresh re-runs the campaign pipeline in the background and
// publishes the resulting graph. Poll GET /tasks/{id} for the outcome.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if s.runner == nil {
		s.writeHTTPError(w, http.StatusServiceUnavailable, "refresh is not enabled on this server")
		return
	}
	cp, err := s.cfg.Campaign(name)
	if err != nil {
		if errors.Is(err, config.ErrUnknownCampaign) {
			s.writeHTTPError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
		return
	}

	task := s.taskManager.NewTask("refresh", name)
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		task.SetStatus(TaskStatusRunning)
		task.SetProgress("fetching and building")

		res, err := s.runner.RunCampaign(s.baseCtx, cp)
		if err != nil {
			slog.Error("[Server] Refresh failed", "campaign", name, "task", task.ID(), "error", err)
			task.SetError(err)
			return
		}
		info := s.Engine.Put(name, res.Graph)
		task.SetProgress("published")
		task.Complete(map[string]any{"graph": info, "run": res})
	}()

	s.writeHTTPResponse(w, http.StatusAccepted, RefreshResponse{TaskID: task.ID(), Status: string(TaskStatusStarted)})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.taskManager.GetTask(r.PathValue("id"))
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "task not found")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, task.View())
}

// --- Response helpers ---

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrGraphNotFound), errors.Is(err, engine.ErrActorNotFound):
		s.writeHTTPError(w, http.StatusNotFound, err.Error())
	default:
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}

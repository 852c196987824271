// Package api exposes the HTTP interface for the outage watch service. It is
// the presentation boundary: the core produces the full ranked result set and
// the level/search filters are applied here, downstream of it.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/outagewatch/outagewatch/internal/clock"
	"github.com/outagewatch/outagewatch/internal/config"
	"github.com/outagewatch/outagewatch/internal/crowd"
	"github.com/outagewatch/outagewatch/internal/metrics"
	"github.com/outagewatch/outagewatch/internal/poll"
	"github.com/outagewatch/outagewatch/internal/state"
	"github.com/outagewatch/outagewatch/internal/status"
)

// Server wires HTTP handlers to the scheduler, aggregator, and state store.
type Server struct {
	router     chi.Router
	scheduler  *poll.Scheduler
	aggregator *crowd.Aggregator
	store      *state.Store
	sources    config.SourceSet
	clk        clock.Clock
	cfg        config.Config
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	scheduler *poll.Scheduler,
	aggregator *crowd.Aggregator,
	store *state.Store,
	sources config.SourceSet,
	clk clock.Clock,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		scheduler:  scheduler,
		aggregator: aggregator,
		store:      store,
		sources:    sources,
		clk:        clk,
		cfg:        cfg,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(60 * time.Second))
	if cfg.Server.APIKey != "" {
		r.Use(apiKeyMiddleware(cfg.Server.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.getStatus)
		r.Post("/poll", s.runPoll)
		r.Route("/crowd", func(r chi.Router) {
			r.Get("/groups", s.getCrowdGroups)
			r.Get("/last", s.getLastCrowdRun)
			r.Post("/{group}/run", s.runCrowdGroup)
		})
		r.Post("/state/reset", s.resetState)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// Everything is in-memory; ready as soon as the process is up.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type statusResponse struct {
	Results  []status.SourceResult `json:"results"`
	RankedAt time.Time             `json:"ranked_at"`
}

// getStatus serves the last cycle's ranked results. ?refresh=1 forces a new
// cycle; ?levels=major,degraded and ?q=text filter the view without touching
// the stored full set.
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	results, at, ok := s.store.LastCycle()
	if !ok || r.URL.Query().Get("refresh") == "1" {
		results = s.scheduler.Cycle(r.Context(), s.sources.Providers)
		at = s.clk.Now()
		s.store.SetCycle(results, at)
	}

	results = filterResults(results, r.URL.Query().Get("levels"), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, statusResponse{Results: results, RankedAt: at})
}

func (s *Server) runPoll(w http.ResponseWriter, r *http.Request) {
	results := s.scheduler.Cycle(r.Context(), s.sources.Providers)
	at := s.clk.Now()
	s.store.SetCycle(results, at)
	writeJSON(w, http.StatusOK, statusResponse{Results: results, RankedAt: at})
}

func (s *Server) getCrowdGroups(w http.ResponseWriter, _ *http.Request) {
	groups := s.sources.Groups()
	if groups == nil {
		groups = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (s *Server) runCrowdGroup(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	entities := s.sources.CrowdGroup(group)
	if len(entities) == 0 {
		writeError(w, http.StatusNotFound, "unknown crowd group")
		return
	}
	run := s.aggregator.Run(r.Context(), group, entities)
	s.store.SetCrowdRun(run)
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) getLastCrowdRun(w http.ResponseWriter, _ *http.Request) {
	run, ok := s.store.LastCrowdRun()
	if !ok {
		writeError(w, http.StatusNotFound, "no crowd run yet")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) resetState(w http.ResponseWriter, _ *http.Request) {
	s.store.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// filterResults applies the user-chosen display filters: a level subset and
// a case-insensitive name substring. Unknown level names are ignored.
func filterResults(results []status.SourceResult, levelsParam, query string) []status.SourceResult {
	wanted := make(map[status.Level]struct{})
	for _, raw := range strings.Split(levelsParam, ",") {
		if lvl, ok := status.ParseLevel(strings.TrimSpace(raw)); ok {
			wanted[lvl] = struct{}{}
		}
	}
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]status.SourceResult, 0, len(results))
	for _, res := range results {
		if len(wanted) > 0 {
			if _, ok := wanted[res.Level]; !ok {
				continue
			}
		}
		if query != "" && !strings.Contains(strings.ToLower(res.Descriptor.Name), query) {
			continue
		}
		out = append(out, res)
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

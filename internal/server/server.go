// Package server exposes the connector's operational HTTP surface:
// health, last-run status, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/yairfalse/silta/journal"
)

// Server is the operational HTTP endpoint
type Server struct {
	http    *http.Server
	logger  zerolog.Logger
	journal *journal.Journal
}

// New builds a server on addr. The journal may be nil; /status then
// reports no runs. The registry may be nil; /metrics then returns 503.
func New(addr string, j *journal.Journal, registry *prometheus.Registry, logger zerolog.Logger) *Server {
	s := &Server{
		logger:  logger.With().Str("component", "server").Logger(),
		journal: j,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	} else {
		r.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics not initialized", http.StatusServiceUnavailable)
		}).Methods(http.MethodGet)
	}

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until Stop is called or the listener fails
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("status server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusResponse is the /status payload
type statusResponse struct {
	Runs    int          `json:"runs"`
	LastRun *journal.Run `json:"last_run,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{}
	if s.journal != nil {
		runs, err := s.journal.List(0)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to read journal")
			http.Error(w, "journal read failed", http.StatusInternalServerError)
			return
		}
		resp.Runs = len(runs)
		if len(runs) > 0 {
			resp.LastRun = &runs[0]
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/river-gauge-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether at least one ingestion run has finished.
type ReadinessChecker = sharedobs.ReadinessChecker

// RunReporter exposes the metadata of the last successful run.
type RunReporter interface {
	LastRun() (domain.RunMetadata, bool)
}

// Trigger queues an out-of-schedule ingestion run.
type Trigger interface {
	Trigger() bool
}

// Server exposes health, readiness, metrics, and ingestion control endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// GET /runs/last, and POST /runs routes.
func NewServer(addr string, ready ReadinessChecker, runs RunReporter, trigger Trigger, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /runs/last", handleLastRun(runs))
	mux.HandleFunc("POST /runs", s.handleTrigger(trigger))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleLastRun(runs RunReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		meta, ok := runs.LastRun()
		if !ok {
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no completed run"})
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, meta)
	}
}

func (s *Server) handleTrigger(trigger Trigger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if !trigger.Trigger() {
			sharedobs.WriteJSON(w, http.StatusConflict, map[string]string{"status": "already queued"})
			return
		}
		s.logger.Info("ingestion run queued via http")
		sharedobs.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
	}
}

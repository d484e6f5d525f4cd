package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/sites"
	"github.com/stordev/sitescout/internal/telemetry"
)

// queryTimeout bounds every store call made on behalf of a request.
const queryTimeout = 5 * time.Second

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores collects the read-side interfaces the API serves from.
type Stores struct {
	Candidates  sites.CandidateStore
	Parcels     sites.ParcelStore
	Counties    sites.CountyStore
	Saturations sites.SaturationStore
	Scores      sites.ScoreStore
	Zips        sites.ZipStore
	Permits     sites.PermitStore
	Signals     sites.SignalStore
	Runs        etl.RunStore
}

// Server wires HTTP handlers to the stores.
type Server struct {
	router chi.Router
	stores Stores
	pinger Pinger
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes. A nil pinger
// makes readyz always report ready.
func NewServer(stores Stores, pinger Pinger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{stores: stores, pinger: pinger, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))
	r.Use(corsMiddleware)
	r.Use(telemetry.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/candidates", s.listCandidates)
		r.Get("/candidates/{candidate_id}", s.getCandidate)
		r.Get("/counties", s.listCounties)
		r.Get("/zips/{zip}", s.getZip)
		r.Get("/signals", s.listSignals)
		r.Get("/permits", s.listPermits)
		r.Get("/runs", s.listRuns)
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

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Warn("readiness ping failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// An encode failure here means the client hung up; nothing left to send.
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

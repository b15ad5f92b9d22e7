// Package api exposes the assessment pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/penrisk/internal/adapters/repository"
	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/pkg/logger"
)

const (
	defaultMaxRecentLimit = 100
	defaultMaxBodyBytes   = 8 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit queues a session; true means it was already submitted.
	Submit(ctx context.Context, s model.Session, scores *model.TestScores) (bool, error)
	// Assess runs the pipeline synchronously.
	Assess(ctx context.Context, s model.Session, scores *model.TestScores) (model.RiskAssessment, error)

	Result(ctx context.Context, sessionID string) (repository.Record, error)
	Recent(ctx context.Context, n int) ([]repository.Record, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	sessionsHandler   *SessionsHandler
	assessmentHandler *AssessmentsHandler

	maxRecentLimit int
	maxBodyBytes   int64
	logger         logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMaxRecentLimit caps GET /assessments?limit.
func WithMaxRecentLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxRecentLimit = n
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		maxRecentLimit: defaultMaxRecentLimit,
		maxBodyBytes:   defaultMaxBodyBytes,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.sessionsHandler = NewSessionsHandler(deps, s.maxBodyBytes, s.logger)
	s.assessmentHandler = NewAssessmentsHandler(deps, s.maxRecentLimit)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleSubmit, "sessions"))
	mux.HandleFunc("/assess", MetricsMiddleware(s.sessionsHandler.HandleAssess, "assess"))
	mux.HandleFunc("/assessments", MetricsMiddleware(s.assessmentHandler.HandleList, "assessments"))
	mux.HandleFunc("/assessments/", MetricsMiddleware(s.assessmentHandler.HandleGet, "assessment"))
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Reasons []string `json:"reasons,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

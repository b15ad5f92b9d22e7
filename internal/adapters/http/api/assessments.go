package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/penrisk/internal/adapters/repository"
	"github.com/okian/penrisk/internal/domain/types"
)

// AssessmentDependencies defines the interface for reading stored results.
type AssessmentDependencies interface {
	Result(ctx context.Context, sessionID string) (repository.Record, error)
	Recent(ctx context.Context, n int) ([]repository.Record, error)
}

// AssessmentsHandler serves stored assessment outcomes.
type AssessmentsHandler struct {
	deps     AssessmentDependencies
	maxLimit int
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps AssessmentDependencies, maxLimit int) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps, maxLimit: maxLimit}
}

// recordResponse is the wire view of a stored outcome.
type recordResponse struct {
	SessionID   string        `json:"sessionId"`
	Status      string        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Result      *types.Result `json:"result,omitempty"`
	SubmittedAt time.Time     `json:"submittedAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func toResponse(r repository.Record) recordResponse {
	out := recordResponse{
		SessionID:   r.SessionID,
		Status:      string(r.Status),
		Error:       r.Error,
		SubmittedAt: r.SubmittedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Assessment != nil {
		res := types.FromAssessment(r.Assessment)
		out.Result = &res
	}
	return out
}

// HandleGet handles GET /assessments/{sessionId}.
func (h *AssessmentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_assessment"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/assessments/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, nil))
		return
	}
	rec, err := h.deps.Result(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toResponse(rec))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", wrapKind(op, ErrNotFound, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// HandleList handles GET /assessments?limit=N, newest first.
func (h *AssessmentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_assessments"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		limit = n
	}
	limit = min(limit, h.maxLimit)

	recs, err := h.deps.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	out := make([]recordResponse, len(recs))
	for i, rec := range recs {
		out[i] = toResponse(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

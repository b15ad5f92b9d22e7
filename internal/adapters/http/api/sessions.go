package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	service "github.com/okian/penrisk/internal/app"
	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/internal/domain/shape"
	"github.com/okian/penrisk/internal/domain/types"
	"github.com/okian/penrisk/pkg/logger"
)

// SessionDependencies defines the interface for session intake.
type SessionDependencies interface {
	Submit(ctx context.Context, s model.Session, scores *model.TestScores) (bool, error)
	Assess(ctx context.Context, s model.Session, scores *model.TestScores) (model.RiskAssessment, error)
}

// SessionsHandler accepts drawing sessions for assessment.
type SessionsHandler struct {
	deps     SessionDependencies
	maxBytes int64
	logger   logger.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies, maxBytes int64, l logger.Logger) *SessionsHandler {
	return &SessionsHandler{deps: deps, maxBytes: maxBytes, logger: l}
}

// sessionData is the nested drawing payload some clients send.
type sessionData struct {
	Strokes    []model.Stroke   `json:"strokes"`
	TotalTime  uint64           `json:"totalTime"`
	CanvasSize model.CanvasSize `json:"canvasSize"`
}

// sessionRequest accepts both the flat session shape and the envelope
// {id, testType, createdAt, data: {strokes, totalTime, canvasSize}}.
type sessionRequest struct {
	ID         string            `json:"id"`
	TestType   string            `json:"testType"`
	CreatedAt  int64             `json:"createdAt"`
	Data       *sessionData      `json:"data"`
	Strokes    []model.Stroke    `json:"strokes"`
	TotalTime  uint64            `json:"totalTime"`
	CanvasSize model.CanvasSize  `json:"canvasSize"`
	TestScores *model.TestScores `json:"testScores"`
}

func (r *sessionRequest) session() model.Session {
	s := model.Session{
		ID:          strings.TrimSpace(r.ID),
		TestType:    r.TestType,
		CreatedAt:   r.CreatedAt,
		Strokes:     r.Strokes,
		Canvas:      r.CanvasSize,
		TotalTimeMS: r.TotalTime,
	}
	if r.Data != nil {
		s.Strokes = r.Data.Strokes
		s.Canvas = r.Data.CanvasSize
		s.TotalTimeMS = r.Data.TotalTime
	}
	for i := range s.Strokes {
		st := &s.Strokes[i]
		if st.Tool == "" {
			st.Tool = model.ToolPen
		}
		if n := len(st.Points); n > 0 && st.StartTime == 0 && st.EndTime == 0 {
			st.StartTime = st.Points[0].Timestamp
			st.EndTime = st.Points[n-1].Timestamp
		}
	}
	return s
}

func (r *sessionRequest) validate() error {
	canvas := r.CanvasSize
	strokes := r.Strokes
	if r.Data != nil {
		canvas = r.Data.CanvasSize
		strokes = r.Data.Strokes
	}
	if canvas.Width < 0 || canvas.Height < 0 {
		return errors.New("canvas size must not be negative")
	}
	for i, st := range strokes {
		if len(st.Points) == 0 {
			return fmt.Errorf("stroke %d has no points", i)
		}
		for j, pt := range st.Points {
			if !(pt.Pressure >= 0 && pt.Pressure <= 1) {
				return fmt.Errorf("stroke %d point %d: pressure %g must be within [0,1]", i, j, pt.Pressure)
			}
		}
	}
	if t := r.TestScores; t != nil {
		for name, v := range map[string]float64{
			"clockDrawing":     t.ClockDrawing,
			"wordRecall":       t.WordRecall,
			"imageAssociation": t.ImageAssociation,
			"selectionMemory":  t.SelectionMemory,
		} {
			if v < 0 || v > 100 {
				return fmt.Errorf("test score %s must be within [0,100]", name)
			}
		}
	}
	return nil
}

func (h *SessionsHandler) decode(w http.ResponseWriter, r *http.Request, op string) (*sessionRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, wrapKind(op, ErrBadRequest, err)
	}
	if err := req.validate(); err != nil {
		return nil, wrapKind(op, ErrBadRequest, err)
	}
	return &req, nil
}

type ackResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId"`
	Duplicate bool   `json:"duplicate"`
}

// HandleSubmit handles POST /sessions: the session is queued and its
// result fetched later from /assessments/{id}.
func (h *SessionsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := h.decode(w, r, op)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	s := req.session()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	dup, err := h.deps.Submit(r.Context(), s, req.TestScores)
	switch {
	case err == nil && dup:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", SessionID: s.ID, Duplicate: true})
	case err == nil:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", SessionID: s.ID})
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", wrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		h.logger.Error(r.Context(), "submit failed", logger.String("sessionID", s.ID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// HandleAssess handles POST /assess: the pipeline runs inline and the
// result is returned in the response.
func (h *SessionsHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	const op = "api.assess_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := h.decode(w, r, op)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	s := req.session()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	a, err := h.deps.Assess(r.Context(), s, req.TestScores)
	var verr *shape.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, types.FromAssessment(&a))
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    "invalid_session",
			Message: verr.Error(),
			Reasons: verr.Reasons,
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "cancelled", err)
	default:
		h.logger.Error(r.Context(), "assessment failed", logger.String("sessionID", s.ID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// Package repository keeps the outcome of every submitted session.
package repository

import (
	"context"
	"time"

	"github.com/okian/penrisk/internal/domain/model"
)

// Status is the lifecycle state of a submitted session.
type Status string

// Record states.
const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Record is one stored session outcome.
type Record struct {
	SessionID   string                `json:"sessionId"`
	Status      Status                `json:"status"`
	Assessment  *model.RiskAssessment `json:"assessment,omitempty"`
	Error       string                `json:"error,omitempty"`
	SubmittedAt time.Time             `json:"submittedAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// Store provides read/write access to assessment outcomes.
type Store interface {
	// MarkPending registers an accepted submission.
	MarkPending(ctx context.Context, sessionID string) error
	// Complete stores a finished assessment, creating the record if needed.
	Complete(ctx context.Context, a model.RiskAssessment) error
	// Fail records that assessment of the session failed.
	Fail(ctx context.Context, sessionID string, cause error) error

	// Get returns ErrNotFound for unknown sessions.
	Get(ctx context.Context, sessionID string) (Record, error)
	// Recent returns up to n records, newest first.
	Recent(ctx context.Context, n int) ([]Record, error)
	Count(ctx context.Context) int
}

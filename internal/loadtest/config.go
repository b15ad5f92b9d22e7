package loadtest

import (
	"time"

	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/pkg/logger"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Sessions     int           // Number of sessions to generate and submit
	Workers      int           // Number of concurrent workers
	Seed         uint64        // Seed for the synthetic generator
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between result polls
	PollTimeout  time.Duration // How long to wait for all results
	OutputFile   string        // Optional file for the generated sessions
	Verbose      bool          // Log every failure
	Logger       logger.Logger
}

// submission is the POST /sessions body.
type submission struct {
	model.Session
	TestScores *model.TestScores `json:"testScores,omitempty"`
}

// AckResponse represents the response from session submission.
type AckResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId"`
	Duplicate bool   `json:"duplicate"`
}

// Outcome is the subset of GET /assessments/{id} the run inspects.
type Outcome struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Error     string `json:"error"`
	Result    *struct {
		OverallRisk string  `json:"overallRisk"`
		Probability float64 `json:"probability"`
		Degraded    bool    `json:"degraded"`
	} `json:"result"`

	risk float64 // generator risk, not on the wire
}

// Stats holds run statistics.
type Stats struct {
	SessionsGenerated int
	Submitted         int
	Accepted          int
	Duplicate         int
	Rejected          int
	Failed            int
	Completed         int
	Invalid           int
	Pending           int
	ByLevel           map[string]int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

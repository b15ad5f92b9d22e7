// Package loadtest drives a running penrisk server with synthetic sessions
// and checks what comes back.
package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/okian/penrisk/internal/synthetic"
	"github.com/okian/penrisk/pkg/logger"
)

// Error constants.
var (
	ErrUnhealthy  = errors.New("service unhealthy")
	ErrIncomplete = errors.New("results incomplete")
)

// Run executes the complete load test and returns its statistics.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	applyDefaults(&cfg)
	stats := &Stats{StartTime: time.Now(), ByLevel: map[string]int{}}

	cfg.Logger.Info(ctx, "starting penrisk load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Any("seed", cfg.Seed))

	client := newHTTPClient(&cfg)

	if err := checkServiceHealth(ctx, &cfg, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	samples, err := synthetic.New(cfg.Seed).Batch(cfg.Sessions)
	if err != nil {
		return stats, fmt.Errorf("session generation failed: %w", err)
	}
	stats.SessionsGenerated = len(samples)

	taken := submitSessions(ctx, &cfg, client, samples, stats)

	outcomes, err := awaitOutcomes(ctx, &cfg, client, samples, taken)
	if err != nil {
		return stats, fmt.Errorf("result retrieval failed: %w", err)
	}

	if err := saveSessions(ctx, &cfg, samples); err != nil {
		cfg.Logger.Warn(ctx, "failed to save sessions to file", logger.Error(err))
	}

	verifyResults(ctx, &cfg, outcomes, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, &cfg, stats)

	if stats.Pending > 0 {
		return stats, fmt.Errorf("%w: %d sessions still pending", ErrIncomplete, stats.Pending)
	}
	return stats, nil
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Sessions <= 0 {
		cfg.Sessions = DefaultSessions
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config, client *httpClient) error {
	resp, err := client.get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_, _ = readBody(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	cfg.Logger.Info(ctx, "service is healthy")
	return nil
}

// awaitOutcomes polls every accepted session until it leaves the pending
// state or the poll timeout passes.
func awaitOutcomes(ctx context.Context, cfg *Config, client *httpClient, samples []synthetic.Sample, taken []bool) ([]Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.PollTimeout)
	defer cancel()

	outcomes := make([]Outcome, 0, len(samples))
	var mu sync.Mutex
	idx := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				o := pollOne(ctx, cfg, client, samples[i])
				mu.Lock()
				outcomes = append(outcomes, o)
				mu.Unlock()
			}
		}()
	}
	for i := range samples {
		if taken[i] {
			idx <- i
		}
	}
	close(idx)
	wg.Wait()

	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	return outcomes, nil
}

func pollOne(ctx context.Context, cfg *Config, client *httpClient, smp synthetic.Sample) Outcome {
	id := smp.Session.ID
	last := Outcome{SessionID: id, Status: "pending"}
	for {
		out, err := fetchOutcome(ctx, client, cfg.BaseURL, id)
		switch {
		case err == nil && out.Status != "pending":
			out.risk = smp.Risk
			return out
		case err != nil && cfg.Verbose:
			cfg.Logger.Debug(ctx, "poll failed", logger.String("sessionID", id), logger.Error(err))
		}
		select {
		case <-ctx.Done():
			last.risk = smp.Risk
			return last
		case <-time.After(cfg.PollInterval):
		}
	}
}

// saveSessions writes the generated sessions as a JSON array.
func saveSessions(ctx context.Context, cfg *Config, samples []synthetic.Sample) error {
	if cfg.OutputFile == "" {
		return nil
	}
	if dir := filepath.Dir(cfg.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	out := make([]submission, len(samples))
	for i := range samples {
		scores := samples[i].TestScores
		out[i] = submission{Session: samples[i].Session, TestScores: &scores}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}
	if err := os.WriteFile(cfg.OutputFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	cfg.Logger.Info(ctx, "sessions saved to file", logger.String("filename", cfg.OutputFile))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, cfg *Config, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Completed) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	cfg.Logger.Info(ctx, "final statistics",
		logger.Int("generated", stats.SessionsGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("completed", stats.Completed),
		logger.Int("invalid", stats.Invalid),
		logger.Int("pending", stats.Pending),
		logger.Any("byLevel", stats.ByLevel),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("sessionsPerSecond", perSecond))
}

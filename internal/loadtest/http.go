package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/okian/penrisk/internal/synthetic"
	"github.com/okian/penrisk/pkg/logger"
)

// Submission results.
const (
	resultAccepted  = "accepted"
	resultDuplicate = "duplicate"
	resultRejected  = "rejected"
	resultFailed    = "failed"
)

var errStatus = errors.New("unexpected status")

// httpClient wraps http.Client with context-aware helpers.
type httpClient struct {
	client *http.Client
}

func newHTTPClient(cfg *Config) *httpClient {
	return &httpClient{client: &http.Client{Timeout: cfg.Timeout}}
}

func (c *httpClient) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

func (c *httpClient) post(ctx context.Context, u string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readBody reads and closes the response body.
func readBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitSessions posts samples with a worker pool and tallies the replies.
// The returned slice marks which samples the server took.
func submitSessions(ctx context.Context, cfg *Config, client *httpClient, samples []synthetic.Sample, stats *Stats) []bool {
	cfg.Logger.Info(ctx, "submitting sessions", logger.Int("count", len(samples)), logger.Int("workers", cfg.Workers))

	endpoint := cfg.BaseURL + "/sessions"
	var submitted, accepted, duplicate, rejected, failed atomic.Int64

	taken := make([]bool, len(samples))
	work := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				submitted.Add(1)
				switch submitOne(ctx, client, endpoint, samples[i]) {
				case resultAccepted:
					accepted.Add(1)
					taken[i] = true
				case resultDuplicate:
					duplicate.Add(1)
					taken[i] = true
				case resultRejected:
					rejected.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range samples {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Rejected = int(rejected.Load())
	stats.Failed = int(failed.Load())

	cfg.Logger.Info(ctx, "session submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed))
	return taken
}

func submitOne(ctx context.Context, client *httpClient, endpoint string, smp synthetic.Sample) string {
	scores := smp.TestScores
	resp, err := client.post(ctx, endpoint, submission{Session: smp.Session, TestScores: &scores})
	if err != nil {
		return resultFailed
	}
	body, err := readBody(resp)
	if err != nil {
		return resultFailed
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		return resultAccepted
	case http.StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return resultDuplicate
		}
		return resultAccepted
	case http.StatusTooManyRequests:
		return resultRejected
	default:
		return resultFailed
	}
}

// fetchOutcome reads the stored outcome of one session.
func fetchOutcome(ctx context.Context, client *httpClient, baseURL, id string) (Outcome, error) {
	resp, err := client.get(ctx, baseURL+"/assessments/"+url.PathEscape(id))
	if err != nil {
		return Outcome{}, fmt.Errorf("request failed: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Outcome{}, fmt.Errorf("%w: HTTP %d: %s", errStatus, resp.StatusCode, string(body))
	}
	var out Outcome
	if err := json.Unmarshal(body, &out); err != nil {
		return Outcome{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return out, nil
}

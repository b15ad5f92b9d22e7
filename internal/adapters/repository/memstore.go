package repository

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/pkg/metrics"
)

const (
	defaultSnapshotInterval = time.Second
	metricsUpdateInterval   = 5 * time.Second
)

// Snapshot is an immutable summary of the store.
type Snapshot struct {
	Total           int                     `json:"total"`
	Pending         int                     `json:"pending"`
	Failed          int                     `json:"failed"`
	ByLevel         map[model.RiskLevel]int `json:"byLevel"`
	Degraded        int                     `json:"degraded"`
	MeanProbability float64                 `json:"meanProbability"`
	TakenAt         time.Time               `json:"takenAt"`
}

// MemoryStore is an in-memory Store. Reads of the summary go through an
// atomically published Snapshot rebuilt on a timer.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*list.Element // value is *Record
	order    *list.List               // oldest at front
	capacity int
	now      func() time.Time

	snapshotInterval time.Duration
	snapshot         atomic.Pointer[Snapshot]

	wg       sync.WaitGroup
	stopChan chan struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs the store and starts its background goroutines,
// which stop on ctx cancellation or Close.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:             make(map[string]*list.Element),
		order:            list.New(),
		now:              time.Now,
		snapshotInterval: defaultSnapshotInterval,
		stopChan:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.publishSnapshot()
	s.every(ctx, s.snapshotInterval, s.publishSnapshot)
	s.every(ctx, metricsUpdateInterval, s.updateMetrics)
	return s
}

func (s *MemoryStore) every(ctx context.Context, d time.Duration, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Close stops the background goroutines.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// upsert returns the record for id, creating it when absent. Caller holds mu.
func (s *MemoryStore) upsert(id string, now time.Time) *Record {
	if el, ok := s.byID[id]; ok {
		return el.Value.(*Record)
	}
	r := &Record{SessionID: id, Status: StatusPending, SubmittedAt: now}
	s.byID[id] = s.order.PushBack(r)
	if s.capacity > 0 {
		for s.order.Len() > s.capacity {
			oldest := s.order.Front()
			s.order.Remove(oldest)
			delete(s.byID, oldest.Value.(*Record).SessionID)
		}
	}
	return r
}

func (s *MemoryStore) write(id string, fn func(r *Record, now time.Time)) error {
	if id == "" {
		metrics.RecordErrorByComponent("repository", "empty_id")
		return ErrEmptyID
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.upsert(id, now)
	fn(r, now)
	r.UpdatedAt = now
	return nil
}

// MarkPending implements Store.
func (s *MemoryStore) MarkPending(_ context.Context, sessionID string) error {
	return s.write(sessionID, func(r *Record, now time.Time) {
		r.Status = StatusPending
		r.Assessment = nil
		r.Error = ""
		r.SubmittedAt = now
	})
}

// Complete implements Store.
func (s *MemoryStore) Complete(_ context.Context, a model.RiskAssessment) error {
	return s.write(a.SessionID, func(r *Record, _ time.Time) {
		r.Status = StatusDone
		r.Assessment = &a
		r.Error = ""
	})
}

// Fail implements Store.
func (s *MemoryStore) Fail(_ context.Context, sessionID string, cause error) error {
	return s.write(sessionID, func(r *Record, _ time.Time) {
		r.Status = StatusFailed
		r.Assessment = nil
		r.Error = "unknown error"
		if cause != nil {
			r.Error = cause.Error()
		}
	})
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	el, ok := s.byID[sessionID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Record{}, ErrNotFound
	}
	return *el.Value.(*Record), nil
}

// Recent implements Store.
func (s *MemoryStore) Recent(_ context.Context, n int) ([]Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, min(n, s.order.Len()))
	for el := s.order.Back(); el != nil && len(out) < n; el = el.Prev() {
		out = append(out, *el.Value.(*Record))
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Snapshot returns the most recently published summary. It may lag writes
// by up to the snapshot interval; Refresh forces a rebuild.
func (s *MemoryStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Refresh rebuilds the snapshot immediately and returns it.
func (s *MemoryStore) Refresh() *Snapshot {
	s.publishSnapshot()
	return s.snapshot.Load()
}

func (s *MemoryStore) publishSnapshot() {
	start := time.Now()
	snap := &Snapshot{ByLevel: map[model.RiskLevel]int{
		model.RiskLow:      0,
		model.RiskModerate: 0,
		model.RiskHigh:     0,
	}}

	s.mu.RLock()
	var sum float64
	var done int
	for el := s.order.Front(); el != nil; el = el.Next() {
		r := el.Value.(*Record)
		snap.Total++
		switch r.Status {
		case StatusPending:
			snap.Pending++
		case StatusFailed:
			snap.Failed++
		case StatusDone:
			done++
			snap.ByLevel[r.Assessment.OverallRisk]++
			sum += r.Assessment.Probability
			if r.Assessment.Degraded {
				snap.Degraded++
			}
		}
	}
	s.mu.RUnlock()

	if done > 0 {
		snap.MeanProbability = sum / float64(done)
	}
	snap.TakenAt = s.now()
	s.snapshot.Store(snap)
	metrics.RecordRepositorySnapshot(float64(time.Since(start).Milliseconds()))
}

func (s *MemoryStore) updateMetrics() {
	snap := s.snapshot.Load()
	if snap == nil {
		return
	}
	metrics.UpdateStoredAssessments(snap.Total)
	for level, n := range snap.ByLevel {
		metrics.UpdateStoredRiskLevel(string(level), n)
	}
}

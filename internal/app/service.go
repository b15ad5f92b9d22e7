// Package service runs the assessment pipeline, synchronously for a single
// session or asynchronously through the job queue and worker pool.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/penrisk/internal/adapters/mq/queue"
	"github.com/okian/penrisk/internal/adapters/mq/worker"
	"github.com/okian/penrisk/internal/adapters/repository"
	"github.com/okian/penrisk/internal/domain/dedupe"
	"github.com/okian/penrisk/internal/domain/features"
	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/internal/domain/scoring"
	"github.com/okian/penrisk/internal/domain/shape"
	"github.com/okian/penrisk/internal/modelconfig"
	"github.com/okian/penrisk/pkg/logger"
	"github.com/okian/penrisk/pkg/metrics"
)

// Stats is a point-in-time view of the service.
type Stats struct {
	Started     bool                 `json:"started"`
	WorkerCount int                  `json:"workerCount"`
	QueueSize   int                  `json:"queueSize"`
	QueueLength int                  `json:"queueLength"`
	DedupeSize  int64                `json:"dedupeSize"`
	Stored      int                  `json:"stored"`
	ModelSlots  int                  `json:"modelSlots"`
	Summary     *repository.Snapshot `json:"summary,omitempty"`
}

// Service implements the pipeline behind the HTTP API and CLI.
type Service struct {
	mu sync.RWMutex

	store   *repository.MemoryStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	engine  *scoring.Engine

	model        *scoring.Model
	engineOpts   []scoring.Option
	requirements shape.Requirements
	reference    model.ReferenceShapeConfig

	workerCount   int
	queueSize     int
	dedupeSize    int
	storeCapacity int

	started bool
	cancel  context.CancelFunc
	now     func() time.Time

	logger logger.Logger
}

// New constructs a Service. Assess works immediately; Submit and Result
// need Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    1024,
		dedupeSize:   50000,
		requirements: shape.DefaultRequirements(),
		reference:    model.ReferenceShapeConfig{Type: model.ShapeCircle},
		now:          time.Now,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.model == nil {
		s.model = defaultModel()
	}
	s.engine = scoring.NewEngine(s.model, s.engineOpts...)
	return s
}

// defaultModel builds the proxy from the embedded tables. Those tables are
// validated by tests, so a failure here is a packaging bug.
func defaultModel() *scoring.Model {
	cfg, err := modelconfig.Default()
	if err != nil {
		panic(fmt.Sprintf("embedded model tables: %v", err))
	}
	m, err := scoring.NewModel(cfg)
	if err != nil {
		panic(fmt.Sprintf("embedded model tables: %v", err))
	}
	return m
}

// Start creates the store, queue, and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting assessment service...")

	// Background work outlives the request that started it; Stop cancels it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.store = repository.NewMemoryStore(runCtx, repository.WithCapacity(s.storeCapacity))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.store, worker.WithLogger(s.logger))
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "assessment service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("modelSlots", s.model.Slots()),
		logger.String("referenceShape", string(s.reference.Type)),
	)
	return nil
}

// Stop drains the queue and shuts the workers and store down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping assessment service...")

	err := s.pool.Shutdown(ctx)
	_ = s.store.Close()
	s.cancel()
	s.started = false

	s.logger.Info(ctx, "assessment service stopped")
	return err
}

// Assess runs the whole pipeline for one sealed session. A session that
// fails the requirements returns a *shape.ValidationError. Cancellation is
// checked between stages and yields ctx.Err() with no partial result.
func (s *Service) Assess(ctx context.Context, session model.Session, scores *model.TestScores) (model.RiskAssessment, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return model.RiskAssessment{}, err
	}
	if verr := shape.CheckSession(session, s.requirements); verr != nil {
		metrics.RecordValidationFailure()
		return model.RiskAssessment{}, verr
	}

	var fv model.FeatureVector
	stage("extract", func() { fv = features.Extract(session) })
	if err := ctx.Err(); err != nil {
		return model.RiskAssessment{}, err
	}

	var vr model.ValidationResult
	stage("validate", func() { vr = shape.Validate(s.reference, session.Strokes, session.Canvas) })
	if err := ctx.Err(); err != nil {
		return model.RiskAssessment{}, err
	}

	var a model.RiskAssessment
	stage("score", func() {
		a = s.engine.Assess(scoring.Input{
			SessionID:  session.ID,
			Features:   fv,
			Validation: &vr,
			TestScores: scores,
		})
	})
	if err := ctx.Err(); err != nil {
		return model.RiskAssessment{}, err
	}

	metrics.RecordAssessment(string(a.OverallRisk), a.Probability, a.Degraded)
	metrics.RecordAssessmentLatency(float64(time.Since(start).Milliseconds()))
	if a.Degraded {
		s.logger.Warn(ctx, "model proxy degraded, using neutral probability",
			logger.String("sessionID", session.ID))
	}
	return a, nil
}

func stage(name string, fn func()) {
	start := time.Now()
	fn()
	metrics.RecordStageLatency(name, float64(time.Since(start).Microseconds())/1000)
}

// Submit queues a session for asynchronous assessment. It reports true
// without queueing when the session id was already submitted.
func (s *Service) Submit(ctx context.Context, session model.Session, scores *model.TestScores) (bool, error) {
	if session.ID == "" {
		return false, ErrEmptySession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false, ErrNotStarted
	}

	if s.deduper.SeenAndRecord(ctx, session.ID) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission", logger.String("sessionID", session.ID))
		return true, nil
	}
	if err := s.store.MarkPending(ctx, session.ID); err != nil {
		s.deduper.Unrecord(ctx, session.ID)
		return false, fmt.Errorf("mark pending: %w", err)
	}
	job := model.AssessmentJob{Session: session.Clone(), TestScores: scores, SubmittedAt: s.now()}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.deduper.Unrecord(ctx, session.ID)
		_ = s.store.Fail(ctx, session.ID, err)
		if errors.Is(err, queue.ErrFull) {
			return false, ErrBackpressure
		}
		return false, fmt.Errorf("enqueue: %w", err)
	}
	metrics.RecordSubmission()
	return false, nil
}

// Result returns the stored outcome for a submitted session.
func (s *Service) Result(ctx context.Context, sessionID string) (repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return repository.Record{}, ErrNotStarted
	}
	return s.store.Get(ctx, sessionID)
}

// Recent lists the newest stored outcomes.
func (s *Service) Recent(ctx context.Context, n int) ([]repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store.Recent(ctx, n)
}

// Explain returns how each model slot was filled for session.
func (s *Service) Explain(session model.Session) []scoring.SlotTrace {
	return s.model.Trace(features.Extract(session))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:     s.started,
		WorkerCount: s.workerCount,
		QueueSize:   s.queueSize,
		ModelSlots:  s.model.Slots(),
	}
	if s.started {
		st.QueueLength = s.queue.Len()
		st.DedupeSize = s.deduper.Size()
		st.Stored = s.store.Count(ctx)
		st.Summary = s.store.Snapshot()
		metrics.UpdateQueueSize(st.QueueLength)
		metrics.UpdateWorkerCount(s.pool.Size())
	}
	return st
}

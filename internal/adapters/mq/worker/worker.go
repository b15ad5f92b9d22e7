// Package worker drains the assessment queue and records results.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/pkg/logger"
	"github.com/okian/penrisk/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // assessment is CPU bound
	metricsUpdateInterval   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = model.AssessmentJob

// Assessor turns a sealed session into a risk assessment.
type Assessor interface {
	Assess(ctx context.Context, s model.Session, scores *model.TestScores) (model.RiskAssessment, error)
}

// Store records the outcome of a job.
type Store interface {
	Complete(ctx context.Context, a model.RiskAssessment) error
	Fail(ctx context.Context, sessionID string, cause error) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	assessor Assessor
	store    Store
	name     string

	shutdown chan struct{}
	done     chan struct{}

	// called after every handled job, successful or not
	onProcessed func()

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, a Assessor, s Store, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		assessor: a,
		store:    s,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(logger.String("worker", w.name))
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
			if w.onProcessed != nil {
				w.onProcessed()
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	id := j.Session.ID
	a, err := w.assessor.Assess(ctx, j.Session, j.TestScores)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordAssessmentError()
		metrics.RecordErrorByComponent("worker", "assessment_error")
		if ferr := w.store.Fail(ctx, id, err); ferr != nil {
			return fmt.Errorf("record failure for session %s: %w", id, ferr)
		}
		return fmt.Errorf("assess session %s: %w", id, err)
	}
	if err := w.store.Complete(ctx, a); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("store assessment for session %s: %w", id, err)
	}
	w.logger.Debug(ctx, "assessment stored",
		logger.String("sessionID", id),
		logger.String("risk", string(a.OverallRisk)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown chan struct{}

	processed atomic.Int64
	active    atomic.Int64
	last      time.Time

	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive count defaults to a small
// multiple of the CPU count. Options apply to every worker.
func NewPool(workerCount int, q Queue, a Assessor, s Store, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		last:     time.Now(),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, a, s, wopts...)
		w.onProcessed = func() { p.processed.Add(1) }
		p.workers[i] = w
	}
	probe := InMemoryWorker{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&probe)
	}
	p.logger = probe.logger.With(logger.String("component", "worker-pool"))

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)
	metrics.UpdateWorkerMessagesPerSecond(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns how many jobs were handled since the last metrics tick.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Start starts all workers and the metrics updater.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.active.Add(1)
		go func(w *InMemoryWorker) {
			defer p.active.Add(-1)
			w.Run(ctx)
		}(w)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
	metrics.UpdateWorkerIdleCount(0)
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

func (p *Pool) updateMetrics() {
	now := time.Now()
	if elapsed := now.Sub(p.last).Seconds(); elapsed > 0 {
		metrics.UpdateWorkerMessagesPerSecond(float64(p.processed.Swap(0)) / elapsed)
	}
	p.last = now
	active := int(p.active.Load())
	metrics.UpdateWorkerActiveCount(active)
	metrics.UpdateWorkerIdleCount(len(p.workers) - active)
}

// Shutdown closes the queue, lets the workers drain it, and waits for them
// until ctx or the pool timeout expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	select {
	case <-p.shutdown:
		return nil
	default:
		close(p.shutdown)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(len(p.workers))
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}

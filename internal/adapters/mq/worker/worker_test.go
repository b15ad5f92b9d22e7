package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/penrisk/internal/adapters/mq/queue"
	"github.com/okian/penrisk/internal/adapters/mq/worker"
	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan worker.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan worker.Job, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan worker.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

type mockAssessor struct {
	mu     sync.Mutex
	errors map[string]error
	calls  int
}

func (m *mockAssessor) Assess(_ context.Context, s model.Session, scores *model.TestScores) (model.RiskAssessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.errors[s.ID]; err != nil {
		return model.RiskAssessment{}, err
	}
	a := model.RiskAssessment{SessionID: s.ID, OverallRisk: model.RiskLow, Probability: 0.1}
	if scores != nil {
		a.TestScores = *scores
	}
	return a, nil
}

type mockStore struct {
	mu        sync.Mutex
	completed map[string]model.RiskAssessment
	failed    map[string]error
	storeErr  error
}

func newMockStore() *mockStore {
	return &mockStore{completed: map[string]model.RiskAssessment{}, failed: map[string]error{}}
}

func (m *mockStore) Complete(_ context.Context, a model.RiskAssessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.completed[a.SessionID] = a
	return nil
}

func (m *mockStore) Fail(_ context.Context, id string, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[id] = cause
	return nil
}

func (m *mockStore) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completed), len(m.failed)
}

func job(id string) worker.Job {
	return model.AssessmentJob{Session: model.Session{ID: id}}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	Convey("Given a worker over a mock queue", t, func() {
		q := newMockQueue()
		assessor := &mockAssessor{errors: map[string]error{"bad": errors.New("boom")}}
		store := newMockStore()
		w := worker.NewInMemoryWorker(q, assessor, store, worker.WithName("w1"), worker.WithLogger(logger.Nop()))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When a good and a bad job arrive", func() {
			scores := &model.TestScores{ClockDrawing: 80}
			good := job("good")
			good.TestScores = scores
			q.jobs <- good
			q.jobs <- job("bad")

			Convey("Then one completes and one is recorded as failed", func() {
				So(waitFor(func() bool { c, f := store.counts(); return c == 1 && f == 1 }), ShouldBeTrue)
				store.mu.Lock()
				So(store.completed["good"].TestScores.ClockDrawing, ShouldEqual, 80)
				So(store.failed["bad"].Error(), ShouldEqual, "boom")
				store.mu.Unlock()
			})
		})

		Convey("When the store rejects a result", func() {
			store.mu.Lock()
			store.storeErr = errors.New("disk full")
			store.mu.Unlock()
			q.jobs <- job("s1")

			Convey("Then the worker keeps running", func() {
				So(waitFor(func() bool { assessor.mu.Lock(); defer assessor.mu.Unlock(); return assessor.calls == 1 }), ShouldBeTrue)
				store.mu.Lock()
				store.storeErr = nil
				store.mu.Unlock()
				q.jobs <- job("s2")
				So(waitFor(func() bool { c, _ := store.counts(); return c == 1 }), ShouldBeTrue)
			})
		})

		Convey("When the worker is shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			So(w.Shutdown(sctx), ShouldBeNil)
			So(w.Shutdown(sctx), ShouldBeNil)

			Convey("Then Done is closed", func() {
				_, open := <-w.Done()
				So(open, ShouldBeFalse)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool over a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		assessor := &mockAssessor{errors: map[string]error{}}
		store := newMockStore()
		p := worker.NewPool(4, q, assessor, store, worker.WithLogger(logger.Nop()))
		So(p.Size(), ShouldEqual, 4)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p.Start(ctx)

		for i := 0; i < 40; i++ {
			So(q.Enqueue(ctx, job(fmt.Sprintf("s%d", i))), ShouldBeNil)
		}

		Convey("When the pool shuts down", func() {
			So(p.Shutdown(context.Background()), ShouldBeNil)

			Convey("Then every queued job was drained first", func() {
				c, f := store.counts()
				So(c, ShouldEqual, 40)
				So(f, ShouldEqual, 0)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a non-positive worker count", t, func() {
		p := worker.NewPool(0, newMockQueue(), &mockAssessor{}, newMockStore())
		So(p.Size(), ShouldBeGreaterThan, 0)
	})
}

package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	service "github.com/okian/penrisk/internal/app"
	"github.com/okian/penrisk/internal/adapters/repository"
	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/internal/domain/shape"
	. "github.com/smartystreets/goconvey/convey"
)

func circleSession(id string) model.Session {
	const n = 50
	pts := make([]model.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / n
		pts[i] = model.Point{
			X:         200 + 140*math.Cos(a),
			Y:         200 + 140*math.Sin(a),
			Pressure:  0.4 + 0.1*math.Sin(3*a),
			Timestamp: uint64(i * 20),
		}
	}
	return model.Session{
		ID:          id,
		Strokes:     []model.Stroke{{ID: "st-1", Points: pts, StartTime: 0, EndTime: (n - 1) * 20}},
		Canvas:      model.CanvasSize{Width: 400, Height: 400},
		TotalTimeMS: 1500,
	}
}

func waitForStatus(svc *service.Service, id string, want repository.Status) (repository.Record, bool) {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		r, err := svc.Result(context.Background(), id)
		if err == nil && r.Status == want {
			return r, true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return repository.Record{}, false
}

func TestAssess(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with default options", t, func() {
		svc := service.New()

		Convey("When a complete circle session is assessed", func() {
			a, err := svc.Assess(ctx, circleSession("s-1"), nil)

			Convey("Then a full assessment is produced", func() {
				So(err, ShouldBeNil)
				So(a.SessionID, ShouldEqual, "s-1")
				So(a.Probability, ShouldBeBetweenOrEqual, 0, 1)
				So([]model.RiskLevel{model.RiskLow, model.RiskModerate, model.RiskHigh}, ShouldContain, a.OverallRisk)
				So(len(a.Recommendations), ShouldBeGreaterThanOrEqualTo, 5)
				So(a.Validation, ShouldNotBeNil)
				So(a.Validation.Completion, ShouldEqual, 100)
				So(a.Degraded, ShouldBeFalse)
			})

			Convey("Then assessing again gives an identical result", func() {
				b, err := svc.Assess(ctx, circleSession("s-1"), nil)
				So(err, ShouldBeNil)
				So(b, ShouldResemble, a)
			})
		})

		Convey("When test scores are supplied", func() {
			scores := &model.TestScores{ClockDrawing: 90, WordRecall: 80, ImageAssociation: 70, SelectionMemory: 60}
			a, err := svc.Assess(ctx, circleSession("s-2"), scores)
			So(err, ShouldBeNil)
			So(a.TestScores, ShouldResemble, *scores)
		})

		Convey("When the session has no strokes", func() {
			_, err := svc.Assess(ctx, model.Session{ID: "empty", Canvas: model.CanvasSize{Width: 400, Height: 400}}, nil)

			Convey("Then a validation error names the reason", func() {
				So(errors.Is(err, shape.ErrInvalidSession), ShouldBeTrue)
				var verr *shape.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Reasons, ShouldContain, "no strokes captured")
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			a, err := svc.Assess(cctx, circleSession("s-3"), nil)

			Convey("Then no partial result is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(a, ShouldResemble, model.RiskAssessment{})
			})
		})

		Convey("When the model is explained", func() {
			trace := svc.Explain(circleSession("s-4"))
			So(len(trace), ShouldEqual, 45)
		})
	})

	Convey("Given a service that ignores the model proxy", t, func() {
		svc := service.New(service.WithBlend(0))
		a, err := svc.Assess(ctx, circleSession("s-5"), nil)
		So(err, ShouldBeNil)
		So(a.Probability, ShouldEqual, a.Components.Composite)
	})

	Convey("Given stricter session requirements", t, func() {
		svc := service.New(service.WithRequirements(shape.Requirements{MinStrokes: 2, MinDurationMS: 5000}))
		_, err := svc.Assess(ctx, circleSession("s-6"), nil)

		var verr *shape.ValidationError
		So(errors.As(err, &verr), ShouldBeTrue)
		So(len(verr.Reasons), ShouldEqual, 2)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that is not started", t, func() {
		svc := service.New()
		_, err := svc.Submit(ctx, circleSession("s"), nil)
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		_, err = svc.Result(ctx, "s")
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		So(svc.GetStats(ctx).Started, ShouldBeFalse)
		So(svc.Stop(ctx), ShouldBeNil)
	})

	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(16))
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When a session is submitted", func() {
			dup, err := svc.Submit(ctx, circleSession("async-1"), nil)
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)

			Convey("Then the stored result matches a synchronous assessment", func() {
				r, ok := waitForStatus(svc, "async-1", repository.StatusDone)
				So(ok, ShouldBeTrue)
				want, err := svc.Assess(ctx, circleSession("async-1"), nil)
				So(err, ShouldBeNil)
				So(*r.Assessment, ShouldResemble, want)
			})

			Convey("Then submitting it again is a duplicate", func() {
				dup, err := svc.Submit(ctx, circleSession("async-1"), nil)
				So(err, ShouldBeNil)
				So(dup, ShouldBeTrue)
			})
		})

		Convey("When an incomplete session is submitted", func() {
			_, err := svc.Submit(ctx, model.Session{ID: "async-empty"}, nil)
			So(err, ShouldBeNil)

			Convey("Then it is recorded as failed with the reason", func() {
				r, ok := waitForStatus(svc, "async-empty", repository.StatusFailed)
				So(ok, ShouldBeTrue)
				So(r.Error, ShouldContainSubstring, "no strokes captured")
			})
		})

		Convey("When the session has no id", func() {
			_, err := svc.Submit(ctx, circleSession(""), nil)
			So(errors.Is(err, service.ErrEmptySession), ShouldBeTrue)
		})

		Convey("When an unknown result is requested", func() {
			_, err := svc.Result(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When stats are read", func() {
			_, _ = svc.Submit(ctx, circleSession("stats-1"), nil)
			_, ok := waitForStatus(svc, "stats-1", repository.StatusDone)
			So(ok, ShouldBeTrue)
			st := svc.GetStats(ctx)
			So(st.Started, ShouldBeTrue)
			So(st.WorkerCount, ShouldEqual, 2)
			So(st.QueueSize, ShouldEqual, 16)
			So(st.Stored, ShouldEqual, 1)
			So(st.DedupeSize, ShouldEqual, 1)
			So(st.ModelSlots, ShouldEqual, 45)

			rs, err := svc.Recent(ctx, 10)
			So(err, ShouldBeNil)
			So(len(rs), ShouldEqual, 1)
		})
	})
}

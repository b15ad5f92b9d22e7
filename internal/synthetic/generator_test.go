package synthetic_test

import (
	"math"
	"testing"

	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/internal/domain/shape"
	"github.com/okian/penrisk/internal/synthetic"
	. "github.com/smartystreets/goconvey/convey"
)

// radialSpread is the standard deviation of point distances from the canvas
// centre.
func radialSpread(s model.Session) float64 {
	cx, cy := s.Canvas.Width/2, s.Canvas.Height/2
	var ds []float64
	for _, st := range s.Strokes {
		for _, p := range st.Points {
			ds = append(ds, math.Hypot(p.X-cx, p.Y-cy))
		}
	}
	var mean float64
	for _, d := range ds {
		mean += d
	}
	mean /= float64(len(ds))
	var v float64
	for _, d := range ds {
		v += (d - mean) * (d - mean)
	}
	return math.Sqrt(v / float64(len(ds)))
}

func points(s model.Session) []model.Point {
	var out []model.Point
	for _, st := range s.Strokes {
		out = append(out, st.Points...)
	}
	return out
}

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := synthetic.New(42)

		Convey("When a session is generated", func() {
			s, err := g.Session("s-1", 0.3)

			Convey("Then it is a complete, valid drawing", func() {
				So(err, ShouldBeNil)
				So(s.ID, ShouldEqual, "s-1")
				So(s.Canvas, ShouldResemble, model.CanvasSize{Width: 400, Height: 400})
				So(len(s.Strokes), ShouldBeBetweenOrEqual, 1, 4)
				So(s.TotalTimeMS, ShouldBeGreaterThan, 0)
				So(shape.CheckSession(s, shape.DefaultRequirements()), ShouldBeNil)
				for _, st := range s.Strokes {
					So(st.Tool, ShouldEqual, model.ToolPen)
					So(st.EndTime, ShouldBeGreaterThanOrEqualTo, st.StartTime)
				}
			})

			Convey("Then a validator sees a circle", func() {
				res := shape.Validate(model.ReferenceShapeConfig{Type: model.ShapeCircle}, s.Strokes, s.Canvas)
				So(res.Completion, ShouldBeGreaterThan, 80)
			})
		})

		Convey("When two generators share a seed", func() {
			a, err := synthetic.New(7).Session("x", 0.5)
			So(err, ShouldBeNil)
			b, err := synthetic.New(7).Session("x", 0.5)
			So(err, ShouldBeNil)

			Convey("Then the drawings are identical", func() {
				So(points(a), ShouldResemble, points(b))
				So(a.TotalTimeMS, ShouldEqual, b.TotalTimeMS)
				So(synthetic.New(7).Recording("x", 0.5), ShouldResemble, synthetic.New(7).Recording("x", 0.5))
			})
		})

		Convey("When risk rises", func() {
			var low, high float64
			for range 10 {
				l, err := g.Session("low", 0.02)
				So(err, ShouldBeNil)
				h, err := g.Session("high", 0.98)
				So(err, ShouldBeNil)
				low += radialSpread(l)
				high += radialSpread(h)
			}

			Convey("Then the stroke wanders further from the circle", func() {
				So(high, ShouldBeGreaterThan, 3*low)
			})
		})
	})
}

func TestBatch(t *testing.T) {
	Convey("Given a batch request", t, func() {
		samples, err := synthetic.New(1, synthetic.WithTestTypes("clockDrawing")).Batch(25)

		Convey("Then every sample is distinct and bounded", func() {
			So(err, ShouldBeNil)
			So(len(samples), ShouldEqual, 25)
			seen := map[string]bool{}
			for _, smp := range samples {
				So(seen[smp.Session.ID], ShouldBeFalse)
				seen[smp.Session.ID] = true
				So(smp.Session.TestType, ShouldEqual, "clockDrawing")
				So(smp.Risk, ShouldBeBetweenOrEqual, 0.1, 0.9)
				So(smp.Recording.SessionID, ShouldEqual, smp.Session.ID)
				for _, v := range []float64{smp.TestScores.ClockDrawing, smp.TestScores.WordRecall,
					smp.TestScores.ImageAssociation, smp.TestScores.SelectionMemory} {
					So(v, ShouldBeBetweenOrEqual, 0, 100)
				}
			}
		})
	})
}

func TestOptions(t *testing.T) {
	Convey("Given generator options", t, func() {
		Convey("When a canvas and stroke count are set", func() {
			g := synthetic.New(3, synthetic.WithCanvas(model.CanvasSize{Width: 800, Height: 600}), synthetic.WithStrokes(2, 2), synthetic.WithPoints(40))
			s, err := g.Session("c", 0.1)
			So(err, ShouldBeNil)
			So(s.Canvas.Width, ShouldEqual, 800)
			So(len(s.Strokes), ShouldEqual, 2)
			So(len(points(s)), ShouldEqual, 40)
		})

		Convey("When invalid values are given they are ignored", func() {
			g := synthetic.New(3, synthetic.WithCanvas(model.CanvasSize{}), synthetic.WithStrokes(3, 1), synthetic.WithPoints(4))
			s, err := g.Session("d", 0.1)
			So(err, ShouldBeNil)
			So(s.Canvas.Width, ShouldEqual, 400)
			So(len(points(s)), ShouldBeGreaterThanOrEqualTo, 60)
		})
	})
}

func TestRiskRange(t *testing.T) {
	Convey("Given a fixed risk range", t, func() {
		samples, err := synthetic.New(5, synthetic.WithRiskRange(0.7, 0.7)).Batch(4)

		Convey("Then every sample uses that risk", func() {
			So(err, ShouldBeNil)
			for _, smp := range samples {
				So(smp.Risk, ShouldEqual, 0.7)
			}
		})

		Convey("Then an inverted range is ignored", func() {
			samples, err := synthetic.New(5, synthetic.WithRiskRange(0.9, 0.2)).Batch(10)
			So(err, ShouldBeNil)
			for _, smp := range samples {
				So(smp.Risk, ShouldBeBetweenOrEqual, 0.1, 0.9)
			}
		})
	})
}

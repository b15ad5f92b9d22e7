package features_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/okian/penrisk/internal/domain/features"
	"github.com/okian/penrisk/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func p(x, y float64, ts uint64) model.Point {
	return model.Point{X: x, Y: y, Pressure: 0.5, Timestamp: ts}
}

func stroke(pts ...model.Point) model.Stroke {
	return model.Stroke{Points: pts, StartTime: pts[0].Timestamp, EndTime: pts[len(pts)-1].Timestamp}
}

func session(strokes ...model.Stroke) model.Session {
	return model.Session{ID: "s", Strokes: strokes, Canvas: model.CanvasSize{Width: 400, Height: 400}}
}

func allFinite(fv model.FeatureVector) bool {
	for _, v := range fv {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func TestExtractKeys(t *testing.T) {
	Convey("Given an empty session", t, func() {
		fv := features.Extract(model.Session{})

		Convey("Then every declared key is present and zero", func() {
			So(len(fv), ShouldEqual, len(features.Keys()))
			for _, k := range features.Keys() {
				v, ok := fv[k]
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0)
			}
		})
	})
}

func TestExtractKinematics(t *testing.T) {
	Convey("Given strokes of increasing length", t, func() {
		Convey("When the stroke has one point", func() {
			fv := features.Extract(session(stroke(p(5, 5, 0))))
			So(allFinite(fv), ShouldBeTrue)
			So(fv[features.VelocityMean], ShouldEqual, 0)
			So(fv[features.PointCount], ShouldEqual, 1)
		})

		Convey("When the stroke has two points", func() {
			fv := features.Extract(session(stroke(p(0, 0, 0), p(10, 0, 10))))

			Convey("Then velocity is one px/ms and higher orders are zero", func() {
				So(fv[features.VelocityMean], ShouldEqual, 1.0)
				So(fv[features.VelocityStd], ShouldEqual, 0)
				So(fv[features.AccelerationMean], ShouldEqual, 0)
				So(fv[features.JerkMean], ShouldEqual, 0)
				So(fv[features.PathLengthPx], ShouldEqual, 10)
				So(allFinite(fv), ShouldBeTrue)
			})
		})

		Convey("When the stroke has three points", func() {
			fv := features.Extract(session(stroke(p(0, 0, 0), p(10, 0, 10), p(30, 0, 20))))

			Convey("Then one acceleration sample exists", func() {
				So(fv[features.VelocityMean], ShouldAlmostEqual, 1.5, 1e-12)
				So(fv[features.VelocityStd], ShouldAlmostEqual, 0.5, 1e-12)
				So(fv[features.AccelerationMean], ShouldAlmostEqual, 0.1, 1e-12)
				So(fv[features.JerkMean], ShouldEqual, 0)
				So(fv[features.VelocityMax], ShouldEqual, 2)
			})
		})

		Convey("When the stroke has four points", func() {
			fv := features.Extract(session(stroke(p(0, 0, 0), p(10, 0, 10), p(30, 0, 20), p(70, 0, 30))))

			Convey("Then jerk is computed from consecutive accelerations", func() {
				So(fv[features.AccelerationMean], ShouldAlmostEqual, 0.15, 1e-12)
				So(fv[features.JerkMean], ShouldAlmostEqual, 0.01, 1e-12)
				So(fv[features.PathLengthPx], ShouldEqual, 70)
				So(allFinite(fv), ShouldBeTrue)
			})
		})

		Convey("When timestamps repeat or go backwards", func() {
			fv := features.Extract(session(stroke(p(0, 0, 10), p(3, 4, 10), p(6, 8, 5))))

			Convey("Then the time step is floored at one millisecond", func() {
				So(fv[features.VelocityMean], ShouldEqual, 5)
				So(allFinite(fv), ShouldBeTrue)
			})
		})

		Convey("When derivatives would span two strokes", func() {
			fv := features.Extract(session(
				stroke(p(0, 0, 0), p(10, 0, 10)),
				stroke(p(100, 0, 50), p(130, 0, 60)),
			))

			Convey("Then no acceleration crosses the boundary", func() {
				So(fv[features.VelocityMean], ShouldEqual, 2)
				So(fv[features.AccelerationMean], ShouldEqual, 0)
			})
		})
	})
}

func TestExtractCurvature(t *testing.T) {
	Convey("Given a right-angle turn", t, func() {
		fv := features.Extract(session(stroke(p(0, 0, 0), p(10, 0, 10), p(10, 10, 20))))

		Convey("Then the angle is pi/2 and counts as a corner", func() {
			So(fv[features.CurvatureMean], ShouldAlmostEqual, math.Pi/2, 1e-12)
			So(fv[features.CornerCount], ShouldEqual, 1)
		})
	})

	Convey("Given a straight line", t, func() {
		fv := features.Extract(session(stroke(p(0, 0, 0), p(10, 0, 10), p(20, 0, 20))))
		So(fv[features.CurvatureMean], ShouldEqual, 0)
		So(fv[features.CornerCount], ShouldEqual, 0)
	})

	Convey("Given a degenerate zero-length segment", t, func() {
		fv := features.Extract(session(stroke(p(0, 0, 0), p(0, 0, 10), p(10, 0, 20))))
		So(allFinite(fv), ShouldBeTrue)
		So(fv[features.CurvatureMean], ShouldEqual, 0)
		So(fv[features.CornerCount], ShouldEqual, 0)
	})
}

func TestExtractTiming(t *testing.T) {
	Convey("Given three strokes with one overlap", t, func() {
		s1 := model.Stroke{Points: []model.Point{p(0, 0, 0), p(1, 0, 100)}, StartTime: 0, EndTime: 100}
		s2 := model.Stroke{Points: []model.Point{p(0, 0, 150), p(1, 0, 250)}, StartTime: 150, EndTime: 250}
		s3 := model.Stroke{Points: []model.Point{p(0, 0, 240), p(1, 0, 300)}, StartTime: 240, EndTime: 300}
		fv := features.Extract(session(s1, s2, s3))

		Convey("Then negative pauses clamp to zero", func() {
			So(fv[features.StrokeDurationMeanMS], ShouldAlmostEqual, 260.0/3, 1e-9)
			So(fv[features.StrokeDurationMaxMS], ShouldEqual, 100)
			So(fv[features.InterStrokePauseMeanMS], ShouldEqual, 25)
			So(fv[features.InterStrokePauseStdMS], ShouldEqual, 25)
			So(fv[features.InterStrokePauseMaxMS], ShouldEqual, 50)
			So(fv[features.TotalPauseMS], ShouldEqual, 50)
			So(fv[features.StrokeCount], ShouldEqual, 3)
		})
	})

	Convey("Given a stroke whose end precedes its start", t, func() {
		s := model.Stroke{Points: []model.Point{p(0, 0, 0)}, StartTime: 50, EndTime: 10}
		fv := features.Extract(session(s))
		So(fv[features.StrokeDurationMeanMS], ShouldEqual, 0)
	})
}

func TestExtractPressureAndSpatial(t *testing.T) {
	Convey("Given points with two pressure levels", t, func() {
		a, b := p(100, 100, 0), p(300, 200, 10)
		a.Pressure, b.Pressure = 0.2, 0.4
		fv := features.Extract(session(stroke(a, b)))

		Convey("Then pressure statistics are population-style", func() {
			So(fv[features.PressureMean], ShouldAlmostEqual, 0.3, 1e-12)
			So(fv[features.PressureStd], ShouldAlmostEqual, 0.1, 1e-12)
			So(fv[features.PressureRange], ShouldAlmostEqual, 0.2, 1e-12)
			So(fv[features.PressureCV], ShouldAlmostEqual, 1.0/3, 1e-9)
		})

		Convey("Then the bounding box and centre offset are computed", func() {
			So(fv[features.BBoxWidth], ShouldEqual, 200)
			So(fv[features.BBoxHeight], ShouldEqual, 100)
			So(fv[features.CanvasCoverage], ShouldAlmostEqual, 20000.0/160000, 1e-12)
			So(fv[features.CenterOffsetX], ShouldEqual, 0)
			So(fv[features.CenterOffsetY], ShouldEqual, 50)
			So(fv[features.CenterOffsetTotal], ShouldEqual, 50)
		})
	})

	Convey("Given a session on a zero-sized canvas", t, func() {
		s := session(stroke(p(0, 0, 0), p(10, 10, 10)))
		s.Canvas = model.CanvasSize{}
		fv := features.Extract(s)
		So(fv[features.CanvasCoverage], ShouldEqual, 0)
		So(allFinite(fv), ShouldBeTrue)
	})
}

func TestExtractIdempotent(t *testing.T) {
	Convey("Given the same sealed session", t, func() {
		s := session(
			stroke(p(0, 0, 0), p(10, 3, 12), p(25, 9, 20), p(31, 30, 33), p(50, 44, 41)),
			stroke(p(60, 60, 90), p(61, 75, 99), p(80, 80, 120)),
		)

		Convey("When extracting twice", func() {
			a := features.Extract(s)
			b := features.Extract(s)

			Convey("Then the vectors are bit-identical", func() {
				So(a, ShouldResemble, b)
				ja, _ := json.Marshal(a)
				jb, _ := json.Marshal(b)
				So(string(ja), ShouldEqual, string(jb))
			})
		})
	})
}

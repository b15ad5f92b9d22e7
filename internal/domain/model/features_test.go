package model_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/okian/penrisk/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFeatureVector(t *testing.T) {
	Convey("Given a feature vector with non-finite values", t, func() {
		fv := model.FeatureVector{"b": 2.5, "a": math.NaN(), "c": math.Inf(1)}

		Convey("When exporting it as JSON", func() {
			raw, err := json.Marshal(fv)

			Convey("Then keys are sorted and non-finite values become zero", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, `{"a":0,"b":2.5,"c":0}`)
			})
		})

		Convey("When sanitizing it", func() {
			fv.Sanitize()
			So(fv["a"], ShouldEqual, 0)
			So(fv["c"], ShouldEqual, 0)
			So(fv.Get("missing"), ShouldEqual, 0)
		})
	})
}

func TestSessionClone(t *testing.T) {
	Convey("Given a session", t, func() {
		s := model.Session{Strokes: []model.Stroke{{Points: []model.Point{{X: 1}}, StartTime: 5, EndTime: 2}}}

		Convey("When cloned and the clone is mutated", func() {
			c := s.Clone()
			c.Strokes[0].Points[0].X = 99

			Convey("Then the original is untouched", func() {
				So(s.Strokes[0].Points[0].X, ShouldEqual, 1)
				So(s.PointCount(), ShouldEqual, 1)
				So(s.Strokes[0].Duration(), ShouldEqual, 0)
			})
		})
	})
}

package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/penrisk/internal/domain/model"
	types "github.com/okian/penrisk/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromAssessment(t *testing.T) {
	Convey("Given a canonical risk assessment", t, func() {
		a := &model.RiskAssessment{
			SessionID:   "s-1",
			OverallRisk: model.RiskModerate,
			Probability: 0.42,
			Components:  model.Components{LinearProxy: 0.5, Composite: 0.25, Model: 0.75},
		}

		Convey("When converting it for presentation", func() {
			r := types.FromAssessment(a)

			Convey("Then only the boundary view is scaled to 0..100", func() {
				So(r.Probability, ShouldEqual, 0.42)
				So(r.ProbabilityPct, ShouldAlmostEqual, 42.0, 1e-9)
				So(r.Components.LinearProxy, ShouldEqual, 50.0)
				So(r.Components.Composite, ShouldEqual, 25.0)
				So(r.Components.Model, ShouldEqual, 75.0)
				So(a.Probability, ShouldEqual, 0.42)
			})

			Convey("And recommendations serialize as an empty list, not null", func() {
				b, err := json.Marshal(r)
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"recommendations":[]`)
				So(string(b), ShouldContainSubstring, `"overallRisk":"moderate"`)
			})
		})
	})
}

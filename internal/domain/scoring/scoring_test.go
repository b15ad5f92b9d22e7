package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/penrisk/internal/domain/features"
	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/internal/domain/recommend"
	"github.com/okian/penrisk/internal/domain/scoring"
	"github.com/okian/penrisk/internal/modelconfig"
	. "github.com/smartystreets/goconvey/convey"
)

func rank(l model.RiskLevel) int {
	switch l {
	case model.RiskLow:
		return 0
	case model.RiskModerate:
		return 1
	default:
		return 2
	}
}

func TestBucket(t *testing.T) {
	Convey("Given probabilities across [0,1]", t, func() {
		Convey("Then the boundaries belong to the upper bucket", func() {
			So(scoring.Bucket(0), ShouldEqual, model.RiskLow)
			So(scoring.Bucket(math.Nextafter(0.3, 0)), ShouldEqual, model.RiskLow)
			So(scoring.Bucket(0.3), ShouldEqual, model.RiskModerate)
			So(scoring.Bucket(math.Nextafter(0.6, 0)), ShouldEqual, model.RiskModerate)
			So(scoring.Bucket(0.6), ShouldEqual, model.RiskHigh)
			So(scoring.Bucket(1), ShouldEqual, model.RiskHigh)
		})

		Convey("Then levels never decrease as probability grows", func() {
			prev := 0
			for i := 0; i <= 1000; i++ {
				r := rank(scoring.Bucket(float64(i) / 1000))
				So(r, ShouldBeGreaterThanOrEqualTo, prev)
				prev = r
			}
			So(prev, ShouldEqual, 2)
		})

		Convey("Then NaN is moderate", func() {
			So(scoring.Bucket(math.NaN()), ShouldEqual, model.RiskModerate)
		})
	})
}

func TestLinearProxy(t *testing.T) {
	Convey("Given the rule-based linear proxy", t, func() {
		Convey("When every feature is zero", func() {
			So(scoring.LinearProxy(model.FeatureVector{}), ShouldAlmostEqual, 0.05, 1e-12)
		})

		Convey("When fast strokes push the sum negative", func() {
			So(scoring.LinearProxy(model.FeatureVector{features.VelocityMean: 1}), ShouldEqual, 0)
		})

		Convey("When long pauses dominate", func() {
			p := scoring.LinearProxy(model.FeatureVector{features.InterStrokePauseMeanMS: 100000})
			So(p, ShouldEqual, 1)
		})

		Convey("When pressure varies", func() {
			So(scoring.LinearProxy(model.FeatureVector{features.PressureStd: 1}), ShouldAlmostEqual, 0.09, 1e-12)
		})
	})
}

func tables(names []string, imp []float64, mapping ...modelconfig.MappingRule) modelconfig.Config {
	mean := make([]float64, len(names))
	scale := make([]float64, len(names))
	for i := range scale {
		scale[i] = 1
	}
	return modelconfig.Config{FeatureNames: names, Mean: mean, Scale: scale, Importances: imp, Mapping: mapping}
}

func TestModel(t *testing.T) {
	Convey("Given a two-slot model", t, func() {
		cfg := modelconfig.Config{
			FeatureNames: []string{"a1", "a2"},
			Mean:         []float64{0, 1},
			Scale:        []float64{1, 2},
			Importances:  []float64{3, 0},
			Mapping: []modelconfig.MappingRule{
				{Source: "a", Target: "a1"},
				{Source: "b", Target: "a2"},
			},
		}
		m, err := scoring.NewModel(cfg)
		So(err, ShouldBeNil)
		So(m.Slots(), ShouldEqual, 2)

		Convey("When predicting", func() {
			p := m.Predict(model.FeatureVector{"a": 2, "b": 100})

			Convey("Then only positive-importance slots contribute", func() {
				So(p.Degraded, ShouldBeFalse)
				So(p.Probability, ShouldAlmostEqual, 1/(1+math.Exp(-2)), 1e-12)
			})
		})

		Convey("When a source feature is missing", func() {
			p := m.Predict(model.FeatureVector{})
			So(p.Probability, ShouldAlmostEqual, 0.5, 1e-12)
			So(p.Degraded, ShouldBeFalse)
		})
	})

	Convey("Given several features mapped onto one slot", t, func() {
		names := []string{"s"}
		imp := []float64{1}
		fv := model.FeatureVector{"x": 1, "y": 5, "z": 3}

		Convey("When the rule is overwrite", func() {
			m, err := scoring.NewModel(tables(names, imp,
				modelconfig.MappingRule{Source: "x", Target: "s"},
				modelconfig.MappingRule{Source: "y", Target: "s"},
				modelconfig.MappingRule{Source: "z", Target: "s"},
			))
			So(err, ShouldBeNil)

			Convey("Then the last mapping wins and the trace shows every writer", func() {
				tr := m.Trace(fv)
				So(tr[0].Raw, ShouldEqual, 3)
				So(tr[0].Sources, ShouldResemble, []string{"x", "y", "z"})
				So(tr[0].Combine, ShouldEqual, modelconfig.CombineOverwrite)
			})

			Convey("Then an absent later source does not clobber an earlier one", func() {
				tr := m.Trace(model.FeatureVector{"x": 1, "y": 5})
				So(tr[0].Raw, ShouldEqual, 5)
				So(tr[0].Sources, ShouldResemble, []string{"x", "y"})
			})
		})

		Convey("When the rule is max", func() {
			m, err := scoring.NewModel(tables(names, imp,
				modelconfig.MappingRule{Source: "x", Target: "s", Combine: modelconfig.CombineMax},
				modelconfig.MappingRule{Source: "y", Target: "s", Combine: modelconfig.CombineMax},
				modelconfig.MappingRule{Source: "z", Target: "s", Combine: modelconfig.CombineMax},
			))
			So(err, ShouldBeNil)
			So(m.Trace(fv)[0].Raw, ShouldEqual, 5)
		})

		Convey("When the rule is mean", func() {
			m, err := scoring.NewModel(tables(names, imp,
				modelconfig.MappingRule{Source: "x", Target: "s", Combine: modelconfig.CombineMean},
				modelconfig.MappingRule{Source: "y", Target: "s", Combine: modelconfig.CombineMean},
				modelconfig.MappingRule{Source: "z", Target: "s", Combine: modelconfig.CombineMean},
			))
			So(err, ShouldBeNil)
			So(m.Trace(fv)[0].Raw, ShouldAlmostEqual, 3, 1e-12)
			So(m.Predict(fv).Probability, ShouldAlmostEqual, 1/(1+math.Exp(-3)), 1e-12)
		})
	})

	Convey("Given unusable tables", t, func() {
		Convey("When every importance is zero", func() {
			m, err := scoring.NewModel(tables([]string{"a", "b"}, []float64{0, 0}))
			So(err, ShouldBeNil)
			p := m.Predict(model.FeatureVector{"a": 1})
			So(p.Degraded, ShouldBeTrue)
			So(p.Probability, ShouldEqual, scoring.NeutralProbability)
		})

		Convey("When the model is nil", func() {
			var m *scoring.Model
			So(m.Predict(model.FeatureVector{}).Degraded, ShouldBeTrue)
			So(m.Trace(model.FeatureVector{}), ShouldBeNil)
		})

		Convey("When the tables do not line up", func() {
			_, err := scoring.NewModel(modelconfig.Config{FeatureNames: []string{"a"}, Mean: []float64{}, Scale: []float64{1}, Importances: []float64{1}})
			So(err, ShouldNotBeNil)
		})

		Convey("When a scale is zero", func() {
			cfg := tables([]string{"a"}, []float64{1}, modelconfig.MappingRule{Source: "a", Target: "a"})
			cfg.Scale[0] = 0
			m, err := scoring.NewModel(cfg)
			So(err, ShouldBeNil)
			p := m.Predict(model.FeatureVector{"a": 1})
			So(p.Degraded, ShouldBeFalse)
			So(p.Probability, ShouldAlmostEqual, 1/(1+math.Exp(-1)), 1e-12)
		})
	})

	Convey("Given the embedded default tables", t, func() {
		cfg, err := modelconfig.Default()
		So(err, ShouldBeNil)
		m, err := scoring.NewModel(cfg)
		So(err, ShouldBeNil)

		Convey("Then an extracted vector scores to a finite probability", func() {
			p := m.Predict(features.Extract(model.Session{}))
			So(p.Degraded, ShouldBeFalse)
			So(p.Probability, ShouldBeBetweenOrEqual, 0, 1)
		})
	})
}

func TestComputeBiomarkers(t *testing.T) {
	Convey("Given a feature vector", t, func() {
		fv := model.FeatureVector{
			features.PressureCV:             0.2,
			features.CurvatureStd:           math.Pi / 2,
			features.VelocityMean:           1,
			features.VelocityStd:            0.5,
			features.TotalPauseMS:           100,
			features.StrokeDurationMeanMS:   100,
			features.StrokeCount:            3,
			features.InterStrokePauseMeanMS: 600,
		}

		Convey("When no shape validation is available", func() {
			b := scoring.ComputeBiomarkers(fv, nil)
			So(b.Pressure, ShouldAlmostEqual, 80, 1e-9)
			So(b.SpatialAccuracy, ShouldAlmostEqual, 50, 1e-9)
			So(b.TemporalConsistency, ShouldAlmostEqual, 75, 1e-9)
			So(b.CognitiveLoad, ShouldAlmostEqual, 22.5, 1e-9)
		})

		Convey("When shape validation is available", func() {
			b := scoring.ComputeBiomarkers(fv, &model.ValidationResult{Accuracy: 77})
			So(b.SpatialAccuracy, ShouldEqual, 77)
		})

		Convey("When the vector is empty", func() {
			b := scoring.ComputeBiomarkers(model.FeatureVector{}, nil)
			So(b.Pressure, ShouldEqual, 100)
			So(b.TemporalConsistency, ShouldEqual, 100)
			So(b.CognitiveLoad, ShouldEqual, 0)
		})
	})
}

func TestEngine(t *testing.T) {
	fv := model.FeatureVector{
		features.PressureCV:             0.2,
		features.VelocityMean:           1,
		features.VelocityStd:            0.5,
		features.TotalPauseMS:           100,
		features.StrokeDurationMeanMS:   100,
		features.StrokeCount:            3,
		features.InterStrokePauseMeanMS: 600,
	}
	validation := &model.ValidationResult{Completion: 100, Accuracy: 77, Notes: []string{}}
	scores := &model.TestScores{ClockDrawing: 50, WordRecall: 50, ImageAssociation: 50, SelectionMemory: 50}

	cfg, err := modelconfig.Default()
	if err != nil {
		t.Fatal(err)
	}
	m, err := scoring.NewModel(cfg)
	if err != nil {
		t.Fatal(err)
	}

	Convey("Given an engine that ignores the model", t, func() {
		e := scoring.NewEngine(m, scoring.WithBlend(0))
		a := e.Assess(scoring.Input{SessionID: "s1", Features: fv, Validation: validation, TestScores: scores})

		Convey("Then the probability is the weighted composite", func() {
			// biomarker risk (20+23+25+22.5)/400, test risk 0.5
			So(a.Components.Composite, ShouldAlmostEqual, 0.6*0.22625+0.4*0.5, 1e-9)
			So(a.Probability, ShouldAlmostEqual, a.Components.Composite, 1e-12)
			So(a.OverallRisk, ShouldEqual, model.RiskModerate)
			So(a.SessionID, ShouldEqual, "s1")
			So(a.Recommendations[len(a.Recommendations)-1], ShouldEqual, recommend.Clinical)
			So(a.Validation, ShouldResemble, validation)
		})
	})

	Convey("Given an engine with the default blend", t, func() {
		e := scoring.NewEngine(m)
		a := e.Assess(scoring.Input{Features: fv, TestScores: scores})

		Convey("Then composite and model are averaged", func() {
			So(a.Probability, ShouldAlmostEqual, 0.5*a.Components.Composite+0.5*a.Components.Model, 1e-12)
			So(a.Degraded, ShouldBeFalse)
		})
	})

	Convey("Given no test scores", t, func() {
		e := scoring.NewEngine(m)
		a := e.Assess(scoring.Input{Features: fv})

		Convey("Then each task score derives from the linear proxy", func() {
			So(a.TestScores, ShouldResemble, scoring.DefaultTestScores(a.Components.LinearProxy))
		})
	})

	Convey("Given custom linear weights", t, func() {
		e := scoring.NewEngine(m, scoring.WithLinearWeights(map[string]float64{features.VelocityMean: 100}))
		a := e.Assess(scoring.Input{Features: fv, TestScores: scores})

		Convey("Then only those weights drive the linear proxy", func() {
			// (50 + 100*1) / 10 / 100
			So(a.Components.LinearProxy, ShouldAlmostEqual, 0.15, 1e-12)
		})
	})

	Convey("Given a model that cannot score", t, func() {
		e := scoring.NewEngine(nil, scoring.WithBlend(0))
		a := e.Assess(scoring.Input{Features: fv, TestScores: scores})

		Convey("Then the neutral fallback is returned and flagged", func() {
			So(a.Probability, ShouldEqual, 0.5)
			So(a.OverallRisk, ShouldEqual, model.RiskModerate)
			So(a.Degraded, ShouldBeTrue)
		})
	})

	Convey("Given the same sealed session assessed twice", t, func() {
		s := model.Session{
			ID:     "twice",
			Canvas: model.CanvasSize{Width: 400, Height: 400},
			Strokes: []model.Stroke{{
				Points: []model.Point{
					{X: 10, Y: 10, Pressure: 0.4, Timestamp: 0},
					{X: 30, Y: 14, Pressure: 0.5, Timestamp: 16},
					{X: 55, Y: 30, Pressure: 0.6, Timestamp: 33},
					{X: 70, Y: 61, Pressure: 0.5, Timestamp: 49},
				},
				StartTime: 0, EndTime: 49,
			}},
		}
		e := scoring.NewEngine(m)
		a := e.Assess(scoring.Input{SessionID: s.ID, Features: features.Extract(s)})
		b := e.Assess(scoring.Input{SessionID: s.ID, Features: features.Extract(s)})

		Convey("Then the assessments are identical", func() {
			So(a, ShouldResemble, b)
		})
	})
}

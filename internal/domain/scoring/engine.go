package scoring

import (
	"slices"

	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/internal/domain/recommend"
)

// Default blending configuration.
const (
	defaultBlend          = 0.5
	defaultBiomarkerShare = 0.6
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBlend sets the share of the model proxy in the final probability.
// Values outside [0,1] are ignored.
func WithBlend(blend float64) Option {
	return func(e *Engine) {
		if blend >= 0 && blend <= 1 {
			e.blend = blend
		}
	}
}

// WithBiomarkerShare sets the biomarker share of the composite; tests get
// the rest. Values outside [0,1] are ignored.
func WithBiomarkerShare(share float64) Option {
	return func(e *Engine) {
		if share >= 0 && share <= 1 {
			e.biomarkerShare = share
		}
	}
}

// WithLinearWeights replaces the linear proxy weight table.
func WithLinearWeights(weights map[string]float64) Option {
	return func(e *Engine) {
		if len(weights) == 0 {
			return
		}
		// Copy the weights map to avoid external modifications
		e.weights = make(map[string]float64, len(weights))
		for k, w := range weights {
			e.weights[k] = w
		}
	}
}

// Input is everything the engine needs for one session.
type Input struct {
	SessionID  string
	Features   model.FeatureVector
	Validation *model.ValidationResult
	// TestScores may be nil; scores are then derived from the linear proxy.
	TestScores *model.TestScores
}

// Engine combines biomarkers, test scores, and the model proxy. It is pure:
// identical inputs give bit-identical assessments.
type Engine struct {
	model          *Model
	blend          float64
	biomarkerShare float64
	weights        map[string]float64
}

// NewEngine creates an engine around m. A nil model makes every assessment
// degraded.
func NewEngine(m *Model, opts ...Option) *Engine {
	e := &Engine{
		model:          m,
		blend:          defaultBlend,
		biomarkerShare: defaultBiomarkerShare,
		weights:        DefaultLinearWeights(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the engine's model proxy.
func (e *Engine) Model() *Model { return e.model }

// Assess scores one session.
func (e *Engine) Assess(in Input) model.RiskAssessment {
	fv := in.Features
	lin := linear(fv, e.weights)
	bio := ComputeBiomarkers(fv, in.Validation)

	scores := DefaultTestScores(lin)
	if in.TestScores != nil {
		scores = *in.TestScores
	}
	testRisk := clamp(1-scores.Mean()/maxPct, 0, 1)
	composite := clamp(e.biomarkerShare*biomarkerRisk(bio)+(1-e.biomarkerShare)*testRisk, 0, 1)

	pred := e.model.Predict(fv)
	probability := NeutralProbability
	if !pred.Degraded {
		probability = clamp((1-e.blend)*composite+e.blend*pred.Probability, 0, 1)
	}
	level := Bucket(probability)

	out := model.RiskAssessment{
		SessionID:       in.SessionID,
		OverallRisk:     level,
		Probability:     probability,
		Biomarkers:      bio,
		TestScores:      scores,
		Recommendations: recommend.Generate(bio, level),
		Components: model.Components{
			LinearProxy: lin,
			Composite:   composite,
			Model:       pred.Probability,
		},
		Degraded: pred.Degraded,
		Features: fv.Clone(),
	}
	if in.Validation != nil {
		v := *in.Validation
		v.Notes = slices.Clone(in.Validation.Notes)
		out.Validation = &v
	}
	return out
}

// DefaultTestScores stands in for missing task scores: every task gets
// 100*(1-linear proxy).
func DefaultTestScores(linearProxy float64) model.TestScores {
	s := clamp(maxPct*(1-linearProxy), 0, maxPct)
	return model.TestScores{ClockDrawing: s, WordRecall: s, ImageAssociation: s, SelectionMemory: s}
}

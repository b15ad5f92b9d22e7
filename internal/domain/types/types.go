// Package types contains the presentation shapes shared by the HTTP and CLI
// boundaries. Scores here are on the 0..100 scale; nothing inside the
// scoring math uses these types.
package types

import "github.com/okian/penrisk/internal/domain/model"

// percent converts a canonical 0..1 value for display.
const percent = 100

// Result is the exported result schema consumed by persistence and export
// collaborators.
type Result struct {
	SessionID       string           `json:"sessionId"`
	OverallRisk     string           `json:"overallRisk"`
	Probability     float64          `json:"probability"`
	ProbabilityPct  float64          `json:"probabilityPct"`
	TestScores      model.TestScores `json:"testScores"`
	Biomarkers      model.Biomarkers `json:"biomarkers"`
	Recommendations []string         `json:"recommendations"`
	Degraded        bool             `json:"degraded"`
	Components      ComponentsPct    `json:"componentsPct"`
}

// ComponentsPct is model.Components scaled to 0..100.
type ComponentsPct struct {
	LinearProxy float64 `json:"linearProxy"`
	Composite   float64 `json:"composite"`
	Model       float64 `json:"model"`
}

// FromAssessment builds the presentation view. This is the only place a
// probability is multiplied by 100.
func FromAssessment(a *model.RiskAssessment) Result {
	recs := a.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return Result{
		SessionID:       a.SessionID,
		OverallRisk:     string(a.OverallRisk),
		Probability:     a.Probability,
		ProbabilityPct:  a.Probability * percent,
		TestScores:      a.TestScores,
		Biomarkers:      a.Biomarkers,
		Recommendations: recs,
		Degraded:        a.Degraded,
		Components: ComponentsPct{
			LinearProxy: a.Components.LinearProxy * percent,
			Composite:   a.Components.Composite * percent,
			Model:       a.Components.Model * percent,
		},
	}
}

// Package recommend turns biomarkers and a risk level into lifestyle and
// follow-up guidance.
package recommend

import "github.com/okian/penrisk/internal/domain/model"

// Baseline guidance, always present and always first.
var baseline = []string{
	"Engage in regular physical exercise, at least 150 minutes of moderate activity per week",
	"Keep your mind active with puzzles, reading, or learning new skills",
	"Follow a balanced diet rich in vegetables, fish, and whole grains",
	"Maintain a regular sleep schedule of 7-8 hours per night",
	"Stay socially active with friends, family, and community groups",
}

// Conditional guidance.
const (
	Spatial  = "Practice drawing and copying simple shapes to support visuospatial skills"
	Rhythm   = "Try rhythmic activities such as music or dancing to improve motor timing"
	Stress   = "Practice stress management such as mindfulness, breathing exercises, or meditation"
	Clinical = "Schedule a follow-up with a healthcare professional for clinical monitoring"
)

const threshold = 70

// Generate returns the baseline set followed by spatial, rhythm, stress, and
// clinical guidance, each only when it applies. The result is a fresh slice.
func Generate(b model.Biomarkers, level model.RiskLevel) []string {
	out := make([]string, len(baseline), len(baseline)+4)
	copy(out, baseline)
	if b.SpatialAccuracy < threshold {
		out = append(out, Spatial)
	}
	if b.TemporalConsistency < threshold {
		out = append(out, Rhythm)
	}
	if b.CognitiveLoad > threshold {
		out = append(out, Stress)
	}
	if level == model.RiskModerate || level == model.RiskHigh {
		out = append(out, Clinical)
	}
	return out
}

// Baseline returns a copy of the always-present guidance.
func Baseline() []string {
	out := make([]string, len(baseline))
	copy(out, baseline)
	return out
}

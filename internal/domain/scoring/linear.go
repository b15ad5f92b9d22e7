// Package scoring turns a feature vector into a risk assessment. Two paths run
// independently: a rule-based linear proxy feeding the biomarker composite,
// and an importance-weighted model proxy built from static tables.
package scoring

import (
	"math"

	"github.com/okian/penrisk/internal/domain/features"
	"github.com/okian/penrisk/internal/domain/model"
)

const (
	linearBase  = 50
	linearScale = 10
	maxPct      = 100
)

// DefaultLinearWeights returns the rule-based weight table.
func DefaultLinearWeights() map[string]float64 {
	return map[string]float64{
		features.VelocityMean:           -80,
		features.VelocityStd:            30,
		features.StrokeDurationMeanMS:   0.05,
		features.InterStrokePauseMeanMS: 0.08,
		features.CurvatureStd:           25,
		features.PressureStd:            40,
	}
}

// LinearProxy scores fv with the default weights on the 0..1 scale.
func LinearProxy(fv model.FeatureVector) float64 {
	return linear(fv, DefaultLinearWeights())
}

func linear(fv model.FeatureVector, weights map[string]float64) float64 {
	// sorted keys keep the float sum order, and the result, stable
	sum := float64(linearBase)
	for _, k := range model.FeatureVector(weights).Keys() {
		sum += weights[k] * fv.Get(k)
	}
	return clamp(sum/linearScale, 0, maxPct) / maxPct
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func safeDiv(a, b float64) float64 {
	if b == 0 || math.IsNaN(b) || math.IsInf(b, 0) {
		return 0
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

package scoring

import (
	"math"

	"github.com/okian/penrisk/internal/domain/features"
	"github.com/okian/penrisk/internal/domain/model"
)

// pauseNorm converts mean pause milliseconds into a 0..100 load component.
const pauseNorm = 30

// ComputeBiomarkers derives the four 0..100 indicators straight from stroke
// statistics. When a shape validation is given, its accuracy stands in for
// spatial accuracy.
func ComputeBiomarkers(fv model.FeatureVector, validation *model.ValidationResult) model.Biomarkers {
	pressure := clamp(maxPct*(1-fv.Get(features.PressureCV)), 0, maxPct)

	var spatial float64
	if validation != nil {
		spatial = clamp(validation.Accuracy, 0, maxPct)
	} else {
		spatial = clamp(maxPct*(1-fv.Get(features.CurvatureStd)/math.Pi), 0, maxPct)
	}

	velocityCV := safeDiv(fv.Get(features.VelocityStd), fv.Get(features.VelocityMean))
	temporal := clamp(maxPct*(1-velocityCV/2), 0, maxPct)

	pause := fv.Get(features.TotalPauseMS)
	drawing := fv.Get(features.StrokeDurationMeanMS) * fv.Get(features.StrokeCount)
	ratio := safeDiv(pause, pause+drawing)
	cognitive := clamp(0.5*ratio*maxPct+0.5*math.Min(maxPct, fv.Get(features.InterStrokePauseMeanMS)/pauseNorm), 0, maxPct)

	return model.Biomarkers{
		Pressure:            pressure,
		SpatialAccuracy:     spatial,
		TemporalConsistency: temporal,
		CognitiveLoad:       cognitive,
	}
}

// biomarkerRisk folds the indicators into one 0..1 risk, higher is worse.
func biomarkerRisk(b model.Biomarkers) float64 {
	sum := (maxPct - b.Pressure) + (maxPct - b.SpatialAccuracy) + (maxPct - b.TemporalConsistency) + b.CognitiveLoad
	return clamp(sum/4/maxPct, 0, 1)
}

package capture

import "math"

// Default pressure normalization parameters.
const (
	defaultSensitivity  = 1.0
	defaultMinPressure  = 0.1
	defaultMaxPressure  = 1.0
	fallbackPressure    = 1.0
	defaultSmoothFactor = 0.1
)

// PressureNormalizer maps raw device pressure into [Min, Max].
type PressureNormalizer struct {
	Sensitivity float64
	Min         float64
	Max         float64
}

// DefaultPressure returns the normalizer used when no option overrides it.
func DefaultPressure() PressureNormalizer {
	return PressureNormalizer{
		Sensitivity: defaultSensitivity,
		Min:         defaultMinPressure,
		Max:         defaultMaxPressure,
	}
}

// Normalize returns clamp(raw*Sensitivity, Min, Max). NaN input maps to Min.
func (p PressureNormalizer) Normalize(raw float64) float64 {
	v := raw * p.Sensitivity
	if math.IsNaN(v) {
		return p.Min
	}
	return math.Max(p.Min, math.Min(p.Max, v))
}

// smooth applies exponential smoothing of raw toward prev.
func smooth(prev, raw, factor float64) float64 {
	return prev + (raw-prev)*factor
}

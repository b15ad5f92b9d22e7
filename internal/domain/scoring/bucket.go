package scoring

import (
	"math"

	"github.com/okian/penrisk/internal/domain/model"
)

// Bucket boundaries on the 0..1 scale.
const (
	LowUpper      = 0.3
	ModerateUpper = 0.6
)

// Bucket maps a probability onto [0,0.3) low, [0.3,0.6) moderate, and
// [0.6,1] high. NaN is treated as moderate.
func Bucket(p float64) model.RiskLevel {
	switch {
	case math.IsNaN(p):
		return model.RiskModerate
	case p < LowUpper:
		return model.RiskLow
	case p < ModerateUpper:
		return model.RiskModerate
	default:
		return model.RiskHigh
	}
}

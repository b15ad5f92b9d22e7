package loadtest

import (
	"context"

	"github.com/okian/penrisk/pkg/logger"
)

// verifyResults tallies outcomes and checks that modelled probability
// tracks the risk the sessions were generated at.
func verifyResults(ctx context.Context, cfg *Config, outcomes []Outcome, stats *Stats) {
	for _, o := range outcomes {
		switch o.Status {
		case "done":
			stats.Completed++
			if o.Result != nil {
				stats.ByLevel[o.Result.OverallRisk]++
			}
		case "failed":
			stats.Invalid++
			if cfg.Verbose {
				cfg.Logger.Warn(ctx, "session failed", logger.String("sessionID", o.SessionID), logger.String("error", o.Error))
			}
		default:
			stats.Pending++
		}
	}

	lower, upper, ok := splitMeans(outcomes)
	if !ok {
		return
	}
	if upper < lower {
		cfg.Logger.Warn(ctx, "probability does not rise with generated risk",
			logger.Float64("lowerHalf", lower), logger.Float64("upperHalf", upper))
		return
	}
	cfg.Logger.Info(ctx, "probability tracks generated risk",
		logger.Float64("lowerHalf", lower), logger.Float64("upperHalf", upper))
}

// splitMeans returns the mean probability of finished sessions generated
// below and at-or-above risk 0.5.
func splitMeans(outcomes []Outcome) (lower, upper float64, ok bool) {
	var nl, nu int
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		if o.risk < 0.5 {
			lower += o.Result.Probability
			nl++
		} else {
			upper += o.Result.Probability
			nu++
		}
	}
	if nl == 0 || nu == 0 {
		return 0, 0, false
	}
	return lower / float64(nl), upper / float64(nu), true
}

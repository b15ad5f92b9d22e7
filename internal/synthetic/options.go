package synthetic

import (
	"time"

	"github.com/okian/penrisk/internal/domain/model"
)

// Option configures a Generator.
type Option func(*Generator)

// WithCanvas sets the drawing surface every recording uses.
func WithCanvas(c model.CanvasSize) Option {
	return func(g *Generator) {
		if c.Width > 0 && c.Height > 0 {
			g.canvas = c
		}
	}
}

// WithStrokes bounds how many arcs a circle is drawn in.
func WithStrokes(minStrokes, maxStrokes int) Option {
	return func(g *Generator) {
		if minStrokes > 0 && maxStrokes >= minStrokes {
			g.minStrokes, g.maxStrokes = minStrokes, maxStrokes
		}
	}
}

// WithPoints sets the number of samples along the full circle.
func WithPoints(n int) Option {
	return func(g *Generator) {
		if n >= minPoints {
			g.points = n
		}
	}
}

// WithTestTypes sets the task labels sessions are drawn from.
func WithTestTypes(types ...string) Option {
	return func(g *Generator) {
		if len(types) > 0 {
			g.testTypes = types
		}
	}
}

// WithStart sets the wall time of the first generated event.
func WithStart(t time.Time) Option {
	return func(g *Generator) {
		if !t.IsZero() {
			g.start = t
		}
	}
}

// WithRiskRange sets the interval Batch draws sample risk from. Equal
// bounds fix the risk.
func WithRiskRange(lo, hi float64) Option {
	return func(g *Generator) {
		if lo >= 0 && hi <= 1 && lo <= hi {
			g.riskLo, g.riskHi = lo, hi
		}
	}
}

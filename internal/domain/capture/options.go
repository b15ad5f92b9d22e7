package capture

import (
	"time"

	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/pkg/logger"
)

// ConflictPolicy decides what StartStroke does while a stroke is active.
type ConflictPolicy int

const (
	// RejectNew keeps the active stroke and returns ErrStrokeActive.
	RejectNew ConflictPolicy = iota
	// CancelAndRestart discards the active buffer and starts a new stroke.
	CancelAndRestart
)

// Option applies a configuration option to the Capturer.
type Option func(*Capturer)

// WithSmoothing sets the exponential smoothing factor in (0, 1].
// A factor of 1 disables smoothing.
func WithSmoothing(factor float64) Option {
	return func(c *Capturer) {
		if factor > 0 && factor <= 1 {
			c.smoothing = factor
		}
	}
}

// WithPressure sets the pressure normalization parameters. Values outside
// sensitivity > 0 and 0 <= min <= max <= 1 leave the defaults in place.
func WithPressure(sensitivity, minPressure, maxPressure float64) Option {
	return func(c *Capturer) {
		if sensitivity > 0 && minPressure >= 0 && maxPressure >= minPressure && maxPressure <= 1 {
			c.pressure = PressureNormalizer{Sensitivity: sensitivity, Min: minPressure, Max: maxPressure}
		}
	}
}

// WithSource sets the active input source.
func WithSource(kind SourceKind) Option {
	return func(c *Capturer) {
		if kind != "" {
			c.source = kind
		}
	}
}

// WithConflictPolicy sets how a StartStroke during an active stroke resolves.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(c *Capturer) {
		c.policy = p
	}
}

// WithClock overrides the wall clock used for elapsed task time.
func WithClock(now func() time.Time) Option {
	return func(c *Capturer) {
		if now != nil {
			c.now = now
		}
	}
}

// WithObserver subscribes an observer to capture callbacks.
func WithObserver(o Observer) Option {
	return func(c *Capturer) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithLogger sets a logger for state-transition diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Capturer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSession sets the identity and canvas of the session being captured.
func WithSession(id, testType string, canvas model.CanvasSize) Option {
	return func(c *Capturer) {
		if id != "" {
			c.sessionID = id
		}
		c.testType = testType
		c.canvas = canvas
	}
}

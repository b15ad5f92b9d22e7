// Package capture turns pointer, touch, and mouse input into sealed strokes.
//
// A Capturer owns exactly one session and one in-progress stroke buffer.
// It moves Idle -> Active on StartStroke and back to Idle on EndStroke
// (stroke sealed) or CancelStroke (buffer discarded). Pause stops both
// point ingestion and the task clock.
package capture

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/pkg/logger"
	"github.com/okian/penrisk/pkg/metrics"
)

// State is the capture state machine position.
type State int

// Capture states.
const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// Capturer assembles points into strokes for a single drawing surface.
// It is safe for concurrent use; observers are notified outside the lock.
type Capturer struct {
	mu sync.Mutex

	state  State
	paused bool

	buf     []model.Point
	bufTool model.Tool
	strokes []model.Stroke

	sessionID string
	testType  string
	createdAt time.Time
	canvas    model.CanvasSize

	pressure  PressureNormalizer
	smoothing float64
	source    SourceKind
	policy    ConflictPolicy

	now          func() time.Time
	elapsed      time.Duration
	runningSince time.Time

	observers []Observer
	logger    logger.Logger
}

// New creates an idle Capturer with its own empty session.
func New(opts ...Option) *Capturer {
	c := &Capturer{
		state:     StateIdle,
		sessionID: uuid.NewString(),
		pressure:  DefaultPressure(),
		smoothing: defaultSmoothFactor,
		source:    SourcePen,
		policy:    RejectNew,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.createdAt = c.now()
	c.runningSince = c.createdAt
	return c
}

// Capabilities returns the static capabilities of the active input source.
func (c *Capturer) Capabilities() Capabilities {
	return CapabilitiesOf(c.source)
}

// State returns the current state.
func (c *Capturer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Paused reports whether input is currently ignored.
func (c *Capturer) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// StartStroke opens a new stroke seeded with p.
func (c *Capturer) StartStroke(p model.Point) error {
	return c.StartStrokeTool(model.ToolPen, p)
}

// StartStrokeTool opens a new stroke for tool, seeded with p.
func (c *Capturer) StartStrokeTool(tool model.Tool, p model.Point) error {
	c.mu.Lock()
	if c.paused {
		c.mu.Unlock()
		return ErrPaused
	}
	cancelled := false
	if c.state == StateActive {
		if c.policy != CancelAndRestart {
			c.mu.Unlock()
			return ErrStrokeActive
		}
		c.discardLocked()
		cancelled = true
	}
	p.Pressure = c.pressureLocked(p.Pressure)
	c.buf = append(c.buf[:0], p)
	c.bufTool = tool
	c.state = StateActive
	obs := c.observers
	c.mu.Unlock()

	if cancelled {
		metrics.RecordStrokeCancelled()
		c.debug("active stroke cancelled by restart")
	}
	for _, o := range obs {
		if cancelled {
			o.OnCancel()
		}
		o.OnStrokeStart(p)
	}
	return nil
}

// AddPoint appends p to the active stroke after pressure normalization and
// smoothing. While paused it is a no-op.
func (c *Capturer) AddPoint(p model.Point) error {
	c.mu.Lock()
	if c.paused {
		c.mu.Unlock()
		metrics.RecordPointDropped()
		return nil
	}
	if c.state != StateActive {
		c.mu.Unlock()
		return ErrNoActiveStroke
	}
	p.Pressure = c.pressureLocked(p.Pressure)
	prev := c.buf[len(c.buf)-1]
	p.X = smooth(prev.X, p.X, c.smoothing)
	p.Y = smooth(prev.Y, p.Y, c.smoothing)
	c.buf = append(c.buf, p)
	obs := c.observers
	c.mu.Unlock()

	for _, o := range obs {
		o.OnPointAdded(p)
	}
	return nil
}

// pressureLocked normalizes raw pressure. A source that cannot sense
// pressure always records the fallback constant.
func (c *Capturer) pressureLocked(raw float64) float64 {
	if !CapabilitiesOf(c.source).Pressure {
		return fallbackPressure
	}
	return c.pressure.Normalize(raw)
}

// AddRaw converts a raw sample and routes it: a sample arriving while idle
// starts a stroke, otherwise it is appended.
func (c *Capturer) AddRaw(in RawInput) error {
	p := FromRaw(in)
	if c.State() == StateIdle {
		return c.StartStrokeTool(ToolOf(in), p)
	}
	return c.AddPoint(p)
}

// EndStroke seals the active buffer, appends it to the session, and
// returns the sealed stroke.
func (c *Capturer) EndStroke() (model.Stroke, error) {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return model.Stroke{}, ErrNoActiveStroke
	}
	pts := make([]model.Point, len(c.buf))
	copy(pts, c.buf)
	s := model.Stroke{
		ID:        uuid.NewString(),
		Tool:      c.bufTool,
		Points:    pts,
		StartTime: pts[0].Timestamp,
		EndTime:   pts[len(pts)-1].Timestamp,
	}
	c.strokes = append(c.strokes, s)
	c.buf = c.buf[:0]
	c.state = StateIdle
	obs := c.observers
	c.mu.Unlock()

	metrics.RecordStrokeCaptured(len(pts))
	for _, o := range obs {
		o.OnStrokeEnd(s)
	}
	return s, nil
}

// CancelStroke discards the in-progress buffer unconditionally.
func (c *Capturer) CancelStroke() {
	c.mu.Lock()
	had := c.state == StateActive
	c.discardLocked()
	obs := c.observers
	c.mu.Unlock()

	if !had {
		return
	}
	metrics.RecordStrokeCancelled()
	for _, o := range obs {
		o.OnCancel()
	}
}

// Pause stops point ingestion and the task clock together.
func (c *Capturer) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.elapsed += c.now().Sub(c.runningSince)
	c.paused = true
}

// Resume restarts point ingestion and the task clock together.
func (c *Capturer) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.runningSince = c.now()
	c.paused = false
}

// Clear drops the in-progress buffer and every sealed stroke and restarts
// the task clock.
func (c *Capturer) Clear() {
	c.mu.Lock()
	had := c.state == StateActive
	c.discardLocked()
	c.strokes = nil
	c.elapsed = 0
	c.runningSince = c.now()
	obs := c.observers
	c.mu.Unlock()

	if had {
		for _, o := range obs {
			o.OnCancel()
		}
	}
	c.debug("capture cleared")
}

// Elapsed returns the task time excluding paused intervals.
func (c *Capturer) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedLocked()
}

// StrokeCount returns the number of sealed strokes.
func (c *Capturer) StrokeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.strokes)
}

// Snapshot returns a deep copy of the sealed session. The in-progress
// buffer is never included.
func (c *Capturer) Snapshot() model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	strokes := make([]model.Stroke, len(c.strokes))
	for i, s := range c.strokes {
		strokes[i] = s.Clone()
	}
	return model.Session{
		ID:          c.sessionID,
		TestType:    c.testType,
		CreatedAt:   c.createdAt.UnixMilli(),
		Strokes:     strokes,
		Canvas:      c.canvas,
		TotalTimeMS: uint64(c.elapsedLocked().Milliseconds()),
	}
}

func (c *Capturer) elapsedLocked() time.Duration {
	if c.paused {
		return c.elapsed
	}
	return c.elapsed + c.now().Sub(c.runningSince)
}

// discardLocked must be called with c.mu held.
func (c *Capturer) discardLocked() {
	c.buf = c.buf[:0]
	c.state = StateIdle
}

func (c *Capturer) debug(msg string) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(context.Background(), msg, logger.String("session", c.sessionID))
}

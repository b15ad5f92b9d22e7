package capture

import (
	"fmt"
	"time"

	"github.com/okian/penrisk/internal/domain/model"
)

// EventType is the kind of a recorded input event.
type EventType string

// Recorded event types, mirroring pointer down/move/up plus the session
// controls.
const (
	EventDown   EventType = "down"
	EventMove   EventType = "move"
	EventUp     EventType = "up"
	EventCancel EventType = "cancel"
	EventPause  EventType = "pause"
	EventResume EventType = "resume"
)

// Event is one recorded input event.
type Event struct {
	Type EventType `json:"type"`
	RawInput
}

// Recording is an ordered input log for one drawing task.
type Recording struct {
	SessionID string           `json:"sessionId"`
	TestType  string           `json:"testType,omitempty"`
	Canvas    model.CanvasSize `json:"canvasSize"`
	Events    []Event          `json:"events"`
}

// Replay drives a fresh Capturer with rec and returns the sealed session.
// The task clock follows event timestamps, so replays are deterministic.
// A stroke still open at the end of the log is discarded.
func Replay(rec Recording, opts ...Option) (model.Session, error) {
	var clock uint64
	if len(rec.Events) > 0 {
		clock = rec.Events[0].Timestamp
	}
	now := func() time.Time { return time.UnixMilli(int64(clock)) }

	opts = append(opts, WithSession(rec.SessionID, rec.TestType, rec.Canvas), WithClock(now))
	c := New(opts...)

	for i, ev := range rec.Events {
		if ev.Timestamp > clock {
			clock = ev.Timestamp
		}
		var err error
		switch ev.Type {
		case EventDown:
			err = c.StartStrokeTool(ToolOf(ev.RawInput), FromRaw(ev.RawInput))
		case EventMove:
			err = c.AddPoint(FromRaw(ev.RawInput))
		case EventUp:
			_, err = c.EndStroke()
		case EventCancel:
			c.CancelStroke()
		case EventPause:
			c.Pause()
		case EventResume:
			c.Resume()
		default:
			err = ErrUnknownEvent
		}
		if err != nil {
			return model.Session{}, fmt.Errorf("event %d (%s): %w", i, ev.Type, err)
		}
	}
	c.CancelStroke()
	return c.Snapshot(), nil
}

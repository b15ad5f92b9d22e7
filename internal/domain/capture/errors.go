package capture

import "errors"

// Sentinel errors for capture state transitions.
var (
	ErrStrokeActive   = errors.New("stroke already active")
	ErrNoActiveStroke = errors.New("no active stroke")
	ErrPaused         = errors.New("capture paused")
)

// ErrUnknownEvent is returned by Replay for an unrecognized event type.
var ErrUnknownEvent = errors.New("unknown capture event")

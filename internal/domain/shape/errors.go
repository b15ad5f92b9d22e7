package shape

import (
	"errors"
	"strings"
)

// ErrInvalidSession is matched by every ValidationError via errors.Is.
var ErrInvalidSession = errors.New("invalid session")

// ValidationError carries the human-readable reasons a session was rejected.
// It is returned as a value, not used for control flow.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "session validation failed: " + strings.Join(e.Reasons, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidSession }

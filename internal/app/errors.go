package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("assessment queue is full")
	ErrEmptySession = errors.New("session id is required")
)

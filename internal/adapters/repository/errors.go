package repository

import "errors"

// Sentinel kinds for assessment store errors.
var (
	ErrNotFound     = errors.New("assessment not found")
	ErrInvalidLimit = errors.New("invalid listing limit")
	ErrEmptyID      = errors.New("empty session id")
)

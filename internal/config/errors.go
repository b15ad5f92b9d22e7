package config

import "errors"

// Sentinel kinds returned by Load and Validate.
var (
	ErrInvalidConfig = errors.New("invalid penrisk config")
	ErrLoadConfig    = errors.New("load penrisk config")
)

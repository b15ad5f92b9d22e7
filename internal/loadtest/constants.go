package loadtest

import "time"

// Defaults applied to zero Config fields.
const (
	DefaultBaseURL      = "http://localhost:9080"
	DefaultSessions     = 500
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
	DefaultPollTimeout  = 2 * time.Minute
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	directoryPermission     = 0o750
	percentageMultiplier    = 100
)

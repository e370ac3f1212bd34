package loadgen

import "time"

// Session outcome statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
)

// Defaults applied by Normalize.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 250 * time.Millisecond
	DefaultVideoBytes   = 64 << 10
	DefaultEmail        = "demo@example.com"
	DefaultPassword     = "password123"
)

// Runner configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
	maxRunWait              = 2 * time.Minute
)

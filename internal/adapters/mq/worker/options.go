package worker

import (
	"time"

	"github.com/okian/motionlab/pkg/logger"
)

// Option configures an InMemoryWorker. Pool options apply to every worker.
type Option func(*InMemoryWorker)

// WithName labels the worker's log lines.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger replaces the worker's base logger.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRunTimeout fails any analysis still running after d. Zero means no
// limit beyond the worker's context.
func WithRunTimeout(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d >= 0 {
			w.runTimeout = d
		}
	}
}

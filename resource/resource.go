// Package resource provides admission control for enumeration runs:
// a weighted semaphore bounding concurrent runs and a rate limiter
// that throttles progress fan-out to UI consumers.
package resource

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource control limits.
type Config struct {
	// MaxConcurrentRuns bounds how many enumeration runs may execute at
	// once across the process. Zero or negative means 1.
	MaxConcurrentRuns int64

	// ProgressEventsPerSec caps how often merged progress snapshots are
	// delivered to the progress handler. Zero or negative disables
	// throttling.
	ProgressEventsPerSec float64

	// ProgressBurst is the limiter burst size. Zero means 1.
	ProgressBurst int
}

// DefaultConfig returns limits suitable for an interactive application:
// one run at a time, progress at most 30 times per second.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentRuns:    1,
		ProgressEventsPerSec: 30,
		ProgressBurst:        1,
	}
}

// Controller enforces the limits in Config.
type Controller struct {
	runSem  *semaphore.Weighted
	limiter *rate.Limiter
}

// NewController creates a Controller from cfg.
func NewController(cfg Config) *Controller {
	runs := cfg.MaxConcurrentRuns
	if runs <= 0 {
		runs = 1
	}

	var limiter *rate.Limiter
	if cfg.ProgressEventsPerSec > 0 {
		burst := cfg.ProgressBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.ProgressEventsPerSec), burst)
	}

	return &Controller{
		runSem:  semaphore.NewWeighted(runs),
		limiter: limiter,
	}
}

// AcquireRun blocks until a run slot is available or ctx is cancelled.
func (c *Controller) AcquireRun(ctx context.Context) error {
	return c.runSem.Acquire(ctx, 1)
}

// TryAcquireRun acquires a run slot without blocking. It reports whether
// the slot was acquired.
func (c *Controller) TryAcquireRun() bool {
	return c.runSem.TryAcquire(1)
}

// ReleaseRun releases a previously acquired run slot.
func (c *Controller) ReleaseRun() {
	c.runSem.Release(1)
}

// ProgressLimiter returns the progress rate limiter, or nil when progress
// throttling is disabled.
func (c *Controller) ProgressLimiter() *rate.Limiter {
	return c.limiter
}

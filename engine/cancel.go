package engine

import "sync/atomic"

// Cancel is the shared stop flag for one run. It is set asynchronously by
// the caller and polled cooperatively by every worker at the top of each
// recursive call and before each candidate value, so workers unwind within
// one candidate-iteration granularity. There is no preemptive interruption.
type Cancel struct {
	flag atomic.Bool
}

// NewCancel returns an unset cancellation flag.
func NewCancel() *Cancel { return &Cancel{} }

// Stop sets the flag. Idempotent and safe from any goroutine.
func (c *Cancel) Stop() { c.flag.Store(true) }

// Stopped reports whether Stop has been called.
func (c *Cancel) Stopped() bool { return c.flag.Load() }

package engine

import "errors"

var (
	// ErrPoolClosed is returned when work is submitted to a closed pool.
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrRunInProgress is returned when Run is called on a coordinator that
	// is already running.
	ErrRunInProgress = errors.New("run already in progress")
)

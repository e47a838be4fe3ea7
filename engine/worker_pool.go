package engine

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs enumeration shards on a fixed set of goroutines, one per
// worker, so a run never spawns more execution contexts than it was sized
// for.
type WorkerPool struct {
	workCh   chan func()
	stopCh   chan struct{}
	wg       sync.WaitGroup
	closed   atomic.Bool
	submitMu sync.RWMutex
}

// NewWorkerPool creates a pool with n goroutines. n <= 0 defaults to
// GOMAXPROCS.
func NewWorkerPool(n int) *WorkerPool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	wp := &WorkerPool{
		workCh: make(chan func(), n),
		stopCh: make(chan struct{}),
	}
	wp.wg.Add(n)
	for i := 0; i < n; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case <-wp.stopCh:
			// Drain already-enqueued work before exiting so every submitted
			// shard still reports its Done message.
			for {
				select {
				case task, ok := <-wp.workCh:
					if !ok {
						return
					}
					task()
				default:
					return
				}
			}
		case task, ok := <-wp.workCh:
			if !ok {
				return
			}
			task()
		}
	}
}

// Submit enqueues a task. It returns ErrPoolClosed after Close, or the
// context error if ctx ends before the task is accepted.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	wp.submitMu.RLock()
	defer wp.submitMu.RUnlock()

	if wp.closed.Load() {
		return ErrPoolClosed
	}
	select {
	case wp.workCh <- task:
		return nil
	case <-wp.stopCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the pool down and waits for in-flight tasks to finish.
// Idempotent.
func (wp *WorkerPool) Close() {
	if !wp.closed.CompareAndSwap(false, true) {
		return
	}
	wp.submitMu.Lock()
	close(wp.stopCh)
	close(wp.workCh)
	wp.submitMu.Unlock()
	wp.wg.Wait()
}

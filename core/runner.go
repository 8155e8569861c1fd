package core

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

const defaultMaxWorkers = 8

// Runner starts operations on worker goroutines, bounded by a
// semaphore. Exhausting the worker budget is not an error: Start
// simply reports failure and the operation stays in Init.
type Runner struct {
	workers *semaphore.Weighted
}

func NewRunner(maxWorkers int64) *Runner {
	if maxWorkers < 1 {
		maxWorkers = defaultMaxWorkers
	}
	return &Runner{
		workers: semaphore.NewWeighted(maxWorkers),
	}
}

// Start begins executing the operation on its own goroutine. Returns
// false if no worker slot could be acquired or the operation is not
// startable (already started or cancelled before starting).
func (r *Runner) Start(op *Operation) bool {
	if !r.workers.TryAcquire(1) {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	if !op.begin(cancel) {
		cancel()
		r.workers.Release(1)
		return false
	}

	go func() {
		defer r.workers.Release(1)
		op.run(ctx)
		cancel()
	}()

	return true
}

// Poll returns the operation's current state without blocking.
func (r *Runner) Poll(op *Operation) OperationState {
	return op.State()
}

// Cancel requests cooperative cancellation; no-op once terminal.
func (r *Runner) Cancel(op *Operation) {
	op.Cancel()
}

// Wait blocks until the operation reaches a terminal state or the
// timeout elapses, whichever comes first, and returns the state seen
// at that point. Only used during teardown.
func (r *Runner) Wait(op *Operation, timeout time.Duration) OperationState {
	select {
	case <-op.Done():
	case <-time.After(timeout):
	}
	return op.State()
}

// Free releases any result the caller never claimed. Must be called
// after a terminal state was observed; repeated calls are no-ops.
func (r *Runner) Free(op *Operation) {
	op.free()
}

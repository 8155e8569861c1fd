package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrResultNotReady       = errors.New("operation result is not ready")
	ErrResultAlreadyClaimed = errors.New("operation result already claimed")
)

type OperationID string

// Operation is a single cancellable unit of driver work. It is created
// per request, handed to a Runner, observed through polling and freed
// after a terminal state was seen - never reused.
type Operation struct {
	id    OperationID
	kind  OperationKind
	label string

	executor func(context.Context) (any, error)
	// discard releases a result the caller never claimed
	discard func(any)

	timestamp time.Time
	timeTaken time.Duration

	mu          sync.Mutex
	state       OperationState
	result      any
	resultTaken bool
	err         error
	freed       bool

	cancelFunc context.CancelFunc
	done       chan struct{}
}

// NewOperation wraps an executor into an operation in the Init state.
// The label is used for progress and status messages.
func NewOperation(kind OperationKind, label string, executor func(context.Context) (any, error)) *Operation {
	return &Operation{
		id:       OperationID(uuid.New().String()),
		kind:     kind,
		label:    label,
		executor: executor,
		state:    OperationStateInit,
		done:     make(chan struct{}),
	}
}

// WithDiscardFunc registers a cleanup for results that reach a terminal
// state without ever being claimed (e.g. a connection handle produced
// by an operation that was cancelled during shutdown).
func (o *Operation) WithDiscardFunc(discard func(any)) *Operation {
	o.discard = discard
	return o
}

func (o *Operation) ID() OperationID {
	return o.id
}

func (o *Operation) Kind() OperationKind {
	return o.kind
}

func (o *Operation) Label() string {
	return o.label
}

// State returns the current state. Non-blocking and allocation free.
func (o *Operation) State() OperationState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// TimeTaken is valid once the operation is terminal.
func (o *Operation) TimeTaken() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.timeTaken
}

// Done returns a channel that is closed when the operation reaches a
// terminal state.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Cancel requests cooperative cancellation. Safe to call multiple
// times and after completion, in which case it is a no-op. The
// operation does not transition immediately: the worker observes the
// request and lands in Cancelled itself, unless the driver call
// already finished - then it lands in Completed or Error instead.
func (o *Operation) Cancel() {
	o.mu.Lock()
	if o.state.IsTerminal() {
		o.mu.Unlock()
		return
	}

	// not started yet: nobody will ever run it, terminate here
	if o.state == OperationStateInit {
		o.state = OperationStateCancelled
		close(o.done)
		o.mu.Unlock()
		return
	}

	cancel := o.cancelFunc
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// TakeResult transfers ownership of the result to the caller. It
// succeeds exactly once, and only on a Completed operation.
func (o *Operation) TakeResult() (any, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != OperationStateCompleted {
		return nil, ErrResultNotReady
	}
	if o.resultTaken {
		return nil, ErrResultAlreadyClaimed
	}

	o.resultTaken = true
	result := o.result
	o.result = nil
	return result, nil
}

// begin moves Init -> Running and installs the cancel function.
// Returns false if the operation cannot be started (already started,
// or cancelled before it got a worker).
func (o *Operation) begin(cancel context.CancelFunc) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != OperationStateInit {
		return false
	}

	o.state = OperationStateRunning
	o.cancelFunc = cancel
	o.timestamp = time.Now()
	return true
}

// run executes the driver call on the worker goroutine and settles the
// terminal state. Cancellation wins only if the driver call observed
// it: a call that finished despite a pending cancel request lands in
// Completed or Error, which callers must tolerate.
func (o *Operation) run(ctx context.Context) {
	result, err := o.executor(ctx)

	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			o.settle(OperationStateCancelled, nil, nil)
			return
		}
		o.settle(OperationStateError, nil, err)
		return
	}

	o.settle(OperationStateCompleted, result, nil)
}

func (o *Operation) settle(state OperationState, result any, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.IsTerminal() {
		// a racing Cancel already settled the operation; the late
		// result must not leak
		if result != nil && o.discard != nil {
			o.discard(result)
		}
		return
	}

	o.state = state
	if o.freed {
		// the owner already gave up on this operation; storing the
		// result would leak it past the discard pass in free
		if result != nil && o.discard != nil {
			o.discard(result)
		}
	} else {
		o.result = result
	}
	o.err = err
	o.timeTaken = time.Since(o.timestamp)
	close(o.done)
}

// free releases any unclaimed result. No-op on repeated calls.
func (o *Operation) free() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.freed {
		return
	}
	o.freed = true

	if o.result != nil && !o.resultTaken {
		if o.discard != nil {
			o.discard(o.result)
		}
		o.result = nil
	}
	// nothing can be claimed after free
	o.resultTaken = true
}

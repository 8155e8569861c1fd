package pager

import (
	"fmt"
	"time"

	"dbrowse/core"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// WaitWithProgress drives the UI while a single started operation is
// outstanding and returns once it reaches a terminal state. True means
// Completed; Error and Cancelled both return false (the caller checks
// op.Err to tell them apart).
//
// The loop polls at cfg.PollInterval. Nothing is drawn until delay
// passes, which avoids flicker for operations that finish within
// perceptual latency; pass zero for connect-class operations. One
// cancel keypress requests cooperative cancellation, after which the
// loop keeps polling until the operation actually settles.
//
// The facade owns the event loop while active, so nested modal waits
// cannot happen on a single-threaded caller.
func WaitWithProgress(runner *core.Runner, op *core.Operation, ui UI, message string, delay time.Duration, cfg *Config) bool {
	if ui == nil {
		ui = &NopUI{}
	}
	cfg = cfg.normalized()

	start := time.Now()
	frame := 0
	cancelRequested := false

	for {
		state := runner.Poll(op)
		if state.IsTerminal() {
			return state == core.OperationStateCompleted
		}

		if time.Since(start) >= delay {
			ui.ShowSpinnerFrame(fmt.Sprintf("%s %s", spinnerFrames[frame%len(spinnerFrames)], message))
			frame++

			if !cancelRequested && ui.PollCancelKey() {
				runner.Cancel(op)
				cancelRequested = true
			}
		}

		time.Sleep(cfg.PollInterval)
	}
}

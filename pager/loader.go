package pager

import (
	"fmt"

	"dbrowse/core"
)

// LoadDirection tells which window edge a background load extends.
type LoadDirection int

const (
	LoadForward LoadDirection = iota
	LoadBackward
)

func (d LoadDirection) String() string {
	if d == LoadBackward {
		return "backward"
	}
	return "forward"
}

// StartBackgroundLoad begins a non-blocking page load extending the
// window in the given direction. Returns false without starting
// anything if a load is already pending for this view, the view is
// closed, or there is nothing left to load on that edge.
func (v *View) StartBackgroundLoad(direction LoadDirection) bool {
	if v.pending != nil || v.closed {
		return false
	}

	var offset, limit int
	switch direction {
	case LoadForward:
		end := v.window.LoadedOffset() + v.window.LoadedCount()
		if end >= v.window.TotalRows() {
			return false
		}
		offset = end
		limit = v.cfg.PageSize
	case LoadBackward:
		head := v.window.LoadedOffset()
		if head == 0 {
			return false
		}
		offset = head - v.cfg.PageSize
		if offset < 0 {
			offset = 0
		}
		limit = head - offset
	default:
		return false
	}

	op := v.source.PageOperation(offset, limit)
	if !v.runner.Start(op) {
		return false
	}

	v.pending = op
	v.pendingDirection = direction
	v.pendingOffset = offset
	return true
}

// PollBackgroundLoad is called once per UI tick and never blocks. A
// completed load is merged into the window (returning true), a failed
// one is surfaced to status reporting, and a cancelled one is dropped
// silently; in every terminal case the pending slot is cleared.
func (v *View) PollBackgroundLoad() bool {
	if v.pending == nil {
		return false
	}

	state := v.runner.Poll(v.pending)
	if !state.IsTerminal() {
		return false
	}

	op := v.pending
	direction := v.pendingDirection
	offset := v.pendingOffset
	v.pending = nil
	defer v.runner.Free(op)

	switch state {
	case core.OperationStateCompleted:
		if v.closed {
			return false
		}
		return v.mergeBackgroundResult(op, direction, offset)
	case core.OperationStateError:
		v.ui.ReportError(fmt.Sprintf("background load of %s failed: %s", v.source.Label(), op.Err()))
		return false
	default:
		// cancelled: discarded without touching the window
		return false
	}
}

// CancelBackgroundLoad requests cancellation of the pending load and
// waits (bounded) until it settles before clearing the slot. Called on
// view switch, view close and disconnect; it must finish before the
// window is torn down so a late completion cannot touch freed state.
func (v *View) CancelBackgroundLoad() {
	if v.pending == nil {
		return
	}

	op := v.pending
	v.pending = nil

	v.runner.Cancel(op)
	v.runner.Wait(op, v.cfg.TeardownTimeout)
	v.runner.Free(op)
}

// HasPendingLoad reports whether a background load is outstanding.
func (v *View) HasPendingLoad() bool {
	return v.pending != nil
}

func (v *View) mergeBackgroundResult(op *core.Operation, direction LoadDirection, offset int) bool {
	result, err := op.TakeResult()
	if err != nil {
		return false
	}

	rs, ok := result.(*core.RowSet)
	if !ok || rs.Len() == 0 {
		if direction == LoadForward && rs.Len() == 0 && v.window.TotalRowsApproximate() {
			// the estimate promised rows that are not there
			v.window.SetTotal(v.window.LoadedOffset()+v.window.LoadedCount(), false)
		}
		return false
	}

	switch direction {
	case LoadForward:
		// the window must not have moved since the load was issued
		if offset != v.window.LoadedOffset()+v.window.LoadedCount() {
			return false
		}
		if err := v.window.Append(rs); err != nil {
			return false
		}
	case LoadBackward:
		if offset+rs.Len() != v.window.LoadedOffset() {
			return false
		}
		if err := v.window.Prepend(offset, rs); err != nil {
			return false
		}
	}

	v.reconcileTotal()
	v.window.Trim(v.cfg.PageSize, v.cfg.MaxLoadedPages, v.cfg.TrimDistancePages)
	return true
}

// CheckLoadMore implements the load-trigger policy: when the cursor is
// within LoadThreshold rows of a window edge and rows exist beyond it,
// a background load is started. Returns true if one was started.
func (v *View) CheckLoadMore() bool {
	return v.checkEdges(v.cfg.LoadThreshold)
}

// Prefetch is the speculative variant of CheckLoadMore with a larger
// threshold. Call it only on idle ticks (no keystroke being handled),
// so anticipated pages are fetched before the cursor ever gets close
// enough to force a wait.
func (v *View) Prefetch() bool {
	return v.checkEdges(v.cfg.PrefetchThreshold)
}

func (v *View) checkEdges(threshold int) bool {
	if v.closed || v.window.LoadedCount() == 0 {
		return false
	}

	cursor := v.window.Cursor()
	head := v.window.LoadedOffset()
	end := head + v.window.LoadedCount()

	// tail first: forward scrolling is the common case
	if end < v.window.TotalRows() && cursor >= end-threshold {
		if v.StartBackgroundLoad(LoadForward) {
			return true
		}
	}

	if head > 0 && cursor < head+threshold {
		return v.StartBackgroundLoad(LoadBackward)
	}

	return false
}

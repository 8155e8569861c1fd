package pager

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"dbrowse/core"
)

var (
	ErrWorkerUnavailable = errors.New("no worker available for operation")
	ErrLoadCancelled     = errors.New("load cancelled")
	ErrViewClosed        = errors.New("view is closed")
)

type ViewID string

// View is one open data browser: a window over a page source, plus at
// most one pending background operation. All methods must be called
// from the UI loop.
type View struct {
	id     ViewID
	source PageSource
	runner *core.Runner
	ui     UI
	cfg    *Config

	window *Window

	pending          *core.Operation
	pendingDirection LoadDirection
	pendingOffset    int

	closed bool
}

func NewView(source PageSource, runner *core.Runner, ui UI, opts ...Option) *View {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if ui == nil {
		ui = &NopUI{}
	}

	return &View{
		id:     ViewID(uuid.New().String()),
		source: source,
		runner: runner,
		ui:     ui,
		cfg:    cfg.normalized(),
		window: NewWindow(),
	}
}

func (v *View) ID() ViewID {
	return v.id
}

func (v *View) Label() string {
	return v.source.Label()
}

// Window exposes the row cache for rendering and cursor movement.
func (v *View) Window() *Window {
	return v.window
}

// Open performs the initial blocking load: a fast approximate count
// first, then the first page.
func (v *View) Open() error {
	if v.closed {
		return ErrViewClosed
	}

	if err := v.refreshTotal(true); err != nil {
		return err
	}
	return v.LoadRowsAt(0)
}

// LoadRowsAt discards the window and loads a fresh page at the given
// absolute offset. Used for jump-to-row and the initial open.
//
// If a load at a non-zero offset comes back empty while the total is
// only approximate, the estimate was stale: an exact count is issued,
// the offset re-clamped and the load retried once.
func (v *View) LoadRowsAt(offset int) error {
	if v.closed {
		return ErrViewClosed
	}

	// a replace must never race a pending background merge
	v.CancelBackgroundLoad()

	offset = v.clampOffset(offset)

	rs, err := v.fetchPage(offset, v.cfg.PageSize)
	if err != nil {
		return v.reportLoadError(err)
	}

	if rs.Len() == 0 && offset > 0 && v.window.TotalRowsApproximate() {
		if err := v.refreshTotal(false); err != nil {
			return err
		}

		offset = v.clampOffset(offset)
		rs, err = v.fetchPage(offset, v.cfg.PageSize)
		if err != nil {
			return v.reportLoadError(err)
		}
	}

	if err := v.window.Replace(offset, rs); err != nil {
		return v.reportLoadError(err)
	}
	v.reconcileTotal()
	v.keepCursorLoaded()

	return nil
}

// LoadMoreRows extends the window tail by one page, blocking. No-op
// when the domain end is already loaded.
func (v *View) LoadMoreRows() error {
	if v.closed {
		return ErrViewClosed
	}

	end := v.window.LoadedOffset() + v.window.LoadedCount()
	if end >= v.window.TotalRows() && !v.window.TotalRowsApproximate() {
		return nil
	}

	rs, err := v.fetchPage(end, v.cfg.PageSize)
	if err != nil {
		return v.reportLoadError(err)
	}

	if rs.Len() == 0 {
		// the domain ended earlier than estimated
		if v.window.TotalRowsApproximate() {
			v.window.SetTotal(end, false)
		}
		return nil
	}

	if err := v.window.Append(rs); err != nil {
		return v.reportLoadError(err)
	}
	v.reconcileTotal()
	v.window.Trim(v.cfg.PageSize, v.cfg.MaxLoadedPages, v.cfg.TrimDistancePages)

	return nil
}

// LoadPrevRows extends the window head by one page, blocking. No-op
// when the window already starts at the domain head.
func (v *View) LoadPrevRows() error {
	if v.closed {
		return ErrViewClosed
	}

	offset := v.window.LoadedOffset()
	if offset == 0 {
		return nil
	}

	newOffset := offset - v.cfg.PageSize
	if newOffset < 0 {
		newOffset = 0
	}
	loadCount := offset - newOffset

	rs, err := v.fetchPage(newOffset, loadCount)
	if err != nil {
		return v.reportLoadError(err)
	}

	if err := v.window.Prepend(newOffset, rs); err != nil {
		// a short page here means the table shrank under us; leave
		// the window untouched rather than merge a gap
		return v.reportLoadError(err)
	}
	v.window.Trim(v.cfg.PageSize, v.cfg.MaxLoadedPages, v.cfg.TrimDistancePages)

	return nil
}

// JumpTo moves the cursor to an absolute row, loading a fresh window
// around it when the target lies outside the loaded one.
func (v *View) JumpTo(row int) error {
	if v.closed {
		return ErrViewClosed
	}

	v.window.SetCursor(row)
	target := v.window.Cursor()
	if v.window.Contains(target) {
		return nil
	}

	offset := target - v.cfg.PageSize/2
	if offset < 0 {
		offset = 0
	}
	return v.LoadRowsAt(offset)
}

// Close cancels any pending background load, waits for it to settle
// and releases the rows. Idempotent.
func (v *View) Close() {
	if v.closed {
		return
	}

	v.CancelBackgroundLoad()
	v.closed = true
	v.window.Reset()
}

// fetchPage runs a page operation through the blocking progress
// facade and hands the resulting row set over.
func (v *View) fetchPage(offset, limit int) (*core.RowSet, error) {
	op := v.source.PageOperation(offset, limit)
	if !v.runner.Start(op) {
		return nil, ErrWorkerUnavailable
	}
	defer v.runner.Free(op)

	message := fmt.Sprintf("loading %s", v.source.Label())
	if !WaitWithProgress(v.runner, op, v.ui, message, v.cfg.ProgressDelay, v.cfg) {
		if err := op.Err(); err != nil {
			return nil, err
		}
		return nil, ErrLoadCancelled
	}

	result, err := op.TakeResult()
	if err != nil {
		return nil, fmt.Errorf("op.TakeResult: %w", err)
	}

	rs, ok := result.(*core.RowSet)
	if !ok {
		return nil, fmt.Errorf("unexpected page result type %T", result)
	}
	return rs, nil
}

// refreshTotal runs a count operation through the blocking facade and
// records the result.
func (v *View) refreshTotal(approximate bool) error {
	op := v.source.CountOperation(approximate)
	if !v.runner.Start(op) {
		return ErrWorkerUnavailable
	}
	defer v.runner.Free(op)

	message := fmt.Sprintf("counting rows of %s", v.source.Label())
	if !WaitWithProgress(v.runner, op, v.ui, message, v.cfg.ProgressDelay, v.cfg) {
		if err := op.Err(); err != nil {
			return v.reportLoadError(err)
		}
		return ErrLoadCancelled
	}

	result, err := op.TakeResult()
	if err != nil {
		return fmt.Errorf("op.TakeResult: %w", err)
	}

	count, ok := result.(*core.CountResult)
	if !ok {
		return fmt.Errorf("unexpected count result type %T", result)
	}

	v.window.SetTotal(count.Count, count.Approximate)
	return nil
}

func (v *View) clampOffset(offset int) int {
	max := v.window.TotalRows() - v.cfg.PageSize
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// reconcileTotal bumps the total when the loaded window extends past
// the best-known estimate.
func (v *View) reconcileTotal() {
	end := v.window.LoadedOffset() + v.window.LoadedCount()
	if end > v.window.TotalRows() {
		v.window.SetTotal(end, v.window.TotalRowsApproximate())
	}
}

// keepCursorLoaded pulls the cursor to the nearest loaded row after a
// replace-window load.
func (v *View) keepCursorLoaded() {
	if v.window.LoadedCount() == 0 || v.window.Contains(v.window.Cursor()) {
		return
	}

	if v.window.Cursor() < v.window.LoadedOffset() {
		v.window.SetCursor(v.window.LoadedOffset())
		return
	}
	v.window.SetCursor(v.window.LoadedOffset() + v.window.LoadedCount() - 1)
}

func (v *View) reportLoadError(err error) error {
	v.ui.ReportError(fmt.Sprintf("loading %s failed: %s", v.source.Label(), err))
	return err
}

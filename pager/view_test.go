package pager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dbrowse/core"
	"dbrowse/core/mock"
)

// recordingUI captures everything the pager reports, and can fake a
// cancel keypress after a given number of spinner frames.
type recordingUI struct {
	frames   []string
	statuses []string
	errs     []string

	cancelOnFrame int
}

func newRecordingUI() *recordingUI {
	return &recordingUI{cancelOnFrame: -1}
}

func (u *recordingUI) ShowSpinnerFrame(message string) { u.frames = append(u.frames, message) }

func (u *recordingUI) PollCancelKey() bool {
	return u.cancelOnFrame >= 0 && len(u.frames) > u.cancelOnFrame
}

func (u *recordingUI) ReportStatus(message string) { u.statuses = append(u.statuses, message) }
func (u *recordingUI) ReportError(message string)  { u.errs = append(u.errs, message) }

func newTestView(t *testing.T, totalRows int, adapterOpts []mock.AdapterOption, ui UI, opts ...Option) (*View, *mock.Adapter) {
	t.Helper()

	adapter := mock.NewAdapter(totalRows, adapterOpts...)
	conn, err := core.NewConnection(&core.ConnectionParams{Name: "mock"}, adapter)
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	runner := core.NewRunner(4)
	opts = append([]Option{WithPollInterval(time.Millisecond)}, opts...)

	source := NewTableSource(conn, "mock_table")
	return NewView(source, runner, ui, opts...), adapter
}

// failAfter returns a side effect that succeeds for the first n calls
// and fails afterwards.
func failAfter(n int, err error) func(context.Context) error {
	calls := 0
	return func(context.Context) error {
		calls++
		if calls > n {
			return err
		}
		return nil
	}
}

// blockAfter returns a side effect that parks until cancellation from
// the n+1-th call on.
func blockAfter(n int) func(context.Context) error {
	calls := 0
	return func(ctx context.Context) error {
		calls++
		if calls <= n {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Second):
			return errors.New("blockAfter never cancelled")
		}
	}
}

func TestView_Open(t *testing.T) {
	r := require.New(t)

	view, adapter := newTestView(t, 250, nil, nil)
	r.NoError(view.Open())

	w := view.Window()
	r.Equal(0, w.LoadedOffset())
	r.Equal(250, w.LoadedCount())
	r.Equal(250, w.TotalRows())
	r.False(w.TotalRowsApproximate())

	driver := adapter.LastDriver()
	r.Equal(1, driver.Calls(core.OperationCountRows))
	r.Equal(1, driver.Calls(core.OperationQueryPage))
}

func TestView_LoadRowsAtIdempotent(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 5000, nil, nil, WithPageSize(100))
	r.NoError(view.Open())

	r.NoError(view.LoadRowsAt(1000))
	first := append([]core.Row(nil), view.Window().Rows()...)

	r.NoError(view.LoadRowsAt(1000))
	second := view.Window().Rows()

	r.Equal(first, second)
	r.Equal(1000, view.Window().LoadedOffset())
}

// The driver's fast estimate claims 500 rows but only 120 exist. A
// jump into the phantom range must trigger an exact recount and a
// single retry at a corrected offset.
func TestView_StaleCountReconciliation(t *testing.T) {
	r := require.New(t)

	view, adapter := newTestView(t, 120,
		[]mock.AdapterOption{mock.AdapterWithApproximateCount(500)},
		nil, WithPageSize(100))

	r.NoError(view.Open())

	w := view.Window()
	r.Equal(500, w.TotalRows())
	r.True(w.TotalRowsApproximate())

	r.NoError(view.LoadRowsAt(400))

	r.Equal(120, w.TotalRows())
	r.False(w.TotalRowsApproximate())
	r.Equal(20, w.LoadedOffset())
	r.Equal(100, w.LoadedCount())

	// one approximate count at open, one exact recount
	r.Equal(2, adapter.LastDriver().Calls(core.OperationCountRows))
}

func TestView_LoadMoreRows(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 3000, nil, nil)
	r.NoError(view.Open())

	r.NoError(view.LoadMoreRows())

	w := view.Window()
	r.Equal(0, w.LoadedOffset())
	r.Equal(2000, w.LoadedCount())

	row, ok := w.RowAt(1500)
	r.True(ok)
	r.Equal(mock.RowAt(1500), row)
}

func TestView_LoadMoreRowsNoopAtEnd(t *testing.T) {
	r := require.New(t)

	view, adapter := newTestView(t, 100, nil, nil)
	r.NoError(view.Open())

	r.NoError(view.LoadMoreRows())

	r.Equal(100, view.Window().LoadedCount())
	r.Equal(1, adapter.LastDriver().Calls(core.OperationQueryPage))
}

func TestView_LoadPrevRows(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 3000, nil, nil)
	r.NoError(view.Open())

	r.NoError(view.LoadRowsAt(1000))
	view.Window().SetCursor(1500)

	r.NoError(view.LoadPrevRows())

	w := view.Window()
	r.Equal(0, w.LoadedOffset())
	r.Equal(2000, w.LoadedCount())
	// absolute cursor position is preserved across the prepend
	r.Equal(1500, w.Cursor())

	// at the head it is a no-op
	r.NoError(view.LoadPrevRows())
	r.Equal(0, w.LoadedOffset())
}

func TestView_JumpTo(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 10000, nil, nil)
	r.NoError(view.Open())

	r.NoError(view.JumpTo(5000))

	w := view.Window()
	r.Equal(5000, w.Cursor())
	r.True(w.Contains(5000))

	// a jump within the window does not reload
	offsetBefore := w.LoadedOffset()
	r.NoError(view.JumpTo(w.LoadedOffset() + 10))
	r.Equal(offsetBefore, w.LoadedOffset())
}

func TestView_FailedLoadLeavesWindowUntouched(t *testing.T) {
	r := require.New(t)

	ui := newRecordingUI()
	loadErr := errors.New("connection lost")

	view, _ := newTestView(t, 5000,
		[]mock.AdapterOption{mock.AdapterWithSideEffect(core.OperationQueryPage, failAfter(1, loadErr))},
		ui, WithPageSize(100))

	r.NoError(view.Open())

	w := view.Window()
	before := append([]core.Row(nil), w.Rows()...)
	offsetBefore := w.LoadedOffset()

	r.ErrorIs(view.LoadRowsAt(1000), loadErr)

	r.Equal(before, w.Rows())
	r.Equal(offsetBefore, w.LoadedOffset())
	r.NotEmpty(ui.errs)
}

func TestView_ClosedViewRejectsLoads(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 100, nil, nil)
	r.NoError(view.Open())

	view.Close()

	r.ErrorIs(view.LoadRowsAt(0), ErrViewClosed)
	r.ErrorIs(view.LoadMoreRows(), ErrViewClosed)
	r.ErrorIs(view.LoadPrevRows(), ErrViewClosed)
	r.Zero(view.Window().LoadedCount())
}

package pager

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dbrowse/core"
	"dbrowse/core/mock"
)

// pollUntilSettled drives the poll tick until the pending slot clears,
// the way a UI timer would.
func pollUntilSettled(t *testing.T, view *View) bool {
	t.Helper()

	merged := false
	require.Eventually(t, func() bool {
		if view.PollBackgroundLoad() {
			merged = true
		}
		return !view.HasPendingLoad()
	}, 2*time.Second, time.Millisecond)
	return merged
}

func TestBackgroundLoad_Forward(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 10000, nil, nil)
	r.NoError(view.Open())

	view.Window().SetCursor(980)
	r.True(view.CheckLoadMore())
	r.True(view.HasPendingLoad())

	// only one pending operation per view
	r.False(view.StartBackgroundLoad(LoadForward))
	r.False(view.CheckLoadMore())

	r.True(pollUntilSettled(t, view))

	w := view.Window()
	r.Equal(0, w.LoadedOffset())
	r.Equal(2000, w.LoadedCount())

	row, ok := w.RowAt(1500)
	r.True(ok)
	r.Equal(mock.RowAt(1500), row)

	// nothing pending, nothing to merge
	r.False(view.PollBackgroundLoad())
}

func TestBackgroundLoad_Backward(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 10000, nil, nil)
	r.NoError(view.Open())

	r.NoError(view.LoadRowsAt(2000))
	view.Window().SetCursor(2010)

	r.True(view.CheckLoadMore())
	pollUntilSettled(t, view)

	w := view.Window()
	r.Equal(1000, w.LoadedOffset())
	r.Equal(2000, w.LoadedCount())
	r.Equal(2010, w.Cursor())
}

func TestBackgroundLoad_ThresholdNotReached(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 10000, nil, nil)
	r.NoError(view.Open())

	// cursor well inside the window
	view.Window().SetCursor(500)
	r.False(view.CheckLoadMore())
	r.False(view.HasPendingLoad())
}

func TestBackgroundLoad_PrefetchReachesFurther(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 10000, nil, nil)
	r.NoError(view.Open())

	// too far from the edge for the hard threshold, close enough for
	// the idle prefetch
	view.Window().SetCursor(500)
	r.False(view.CheckLoadMore())
	r.True(view.Prefetch())

	pollUntilSettled(t, view)
	r.Equal(2000, view.Window().LoadedCount())
}

func TestBackgroundLoad_Cancel(t *testing.T) {
	r := require.New(t)

	// first page load succeeds, everything after parks until cancelled
	view, _ := newTestView(t, 10000,
		[]mock.AdapterOption{mock.AdapterWithSideEffect(core.OperationQueryPage, blockAfter(1))},
		nil)
	r.NoError(view.Open())

	before := append([]core.Row(nil), view.Window().Rows()...)

	r.True(view.StartBackgroundLoad(LoadForward))
	view.CancelBackgroundLoad()

	r.False(view.HasPendingLoad())
	r.False(view.PollBackgroundLoad())
	r.Equal(before, view.Window().Rows())
}

func TestBackgroundLoad_ErrorReported(t *testing.T) {
	r := require.New(t)

	ui := newRecordingUI()
	loadErr := errors.New("connection lost")

	view, _ := newTestView(t, 10000,
		[]mock.AdapterOption{mock.AdapterWithSideEffect(core.OperationQueryPage, failAfter(1, loadErr))},
		ui)
	r.NoError(view.Open())

	before := append([]core.Row(nil), view.Window().Rows()...)

	r.True(view.StartBackgroundLoad(LoadForward))
	r.False(pollUntilSettled(t, view))

	r.NotEmpty(ui.errs)
	r.Equal(before, view.Window().Rows())
}

func TestBackgroundLoad_CloseDropsResult(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 10000, nil, nil)
	r.NoError(view.Open())

	r.True(view.StartBackgroundLoad(LoadForward))
	view.Close()

	r.False(view.HasPendingLoad())
	r.False(view.StartBackgroundLoad(LoadForward))
	r.False(view.PollBackgroundLoad())
	r.Zero(view.Window().LoadedCount())
}

func TestBackgroundLoad_TrimAfterMerge(t *testing.T) {
	r := require.New(t)

	view, _ := newTestView(t, 10000, nil, nil,
		WithPageSize(100), WithMaxLoadedPages(3), WithTrimDistancePages(1))
	r.NoError(view.Open())

	for i := 0; i < 5; i++ {
		w := view.Window()
		view.Window().SetCursor(w.LoadedOffset() + w.LoadedCount() - 1)
		if !view.CheckLoadMore() {
			break
		}
		pollUntilSettled(t, view)
	}

	w := view.Window()
	r.LessOrEqual(w.LoadedCount(), 300)
	r.True(w.Contains(w.Cursor()))
}

func TestBackgroundLoad_StaleEstimateAtTail(t *testing.T) {
	r := require.New(t)

	// estimate promises more rows than exist; the empty tail fetch
	// must pin the total to the loaded end
	view, _ := newTestView(t, 100,
		[]mock.AdapterOption{mock.AdapterWithApproximateCount(150)},
		nil, WithPageSize(100))
	r.NoError(view.Open())

	w := view.Window()
	r.Equal(150, w.TotalRows())
	r.True(w.TotalRowsApproximate())

	w.SetCursor(99)
	r.True(view.CheckLoadMore())
	pollUntilSettled(t, view)

	r.Equal(100, w.TotalRows())
	r.False(w.TotalRowsApproximate())
	r.Equal(100, w.LoadedCount())
}

package pager

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"dbrowse/core"
)

var ErrWindowBounds = errors.New("window bounds out of range")

// Window holds a contiguous slice [loadedOffset, loadedOffset+len(rows))
// of a logically larger ordered row domain of size totalRows, plus
// derived column width metadata. It is owned exclusively by the UI
// loop; background operations never touch it.
type Window struct {
	header core.Header
	rows   []core.Row

	loadedOffset int
	totalRows    int
	totalApprox  bool

	// cursor and scroll are absolute indices into the logical domain,
	// so extending or trimming the window never moves them
	cursor int
	scroll int

	colWidths []int
}

func NewWindow() *Window {
	return &Window{}
}

func (w *Window) LoadedOffset() int { return w.loadedOffset }

func (w *Window) LoadedCount() int { return len(w.rows) }

func (w *Window) TotalRows() int { return w.totalRows }

func (w *Window) TotalRowsApproximate() bool { return w.totalApprox }

func (w *Window) Header() core.Header { return w.header }

func (w *Window) Cursor() int { return w.cursor }

func (w *Window) Scroll() int { return w.scroll }

// ColumnWidths returns the display width of the widest cell per
// column, header included.
func (w *Window) ColumnWidths() []int { return w.colWidths }

// SetTotal records the best known size of the logical domain.
func (w *Window) SetTotal(count int, approximate bool) {
	if count < 0 {
		count = 0
	}
	w.totalRows = count
	w.totalApprox = approximate
}

// SetCursor clamps the absolute cursor into the logical domain.
func (w *Window) SetCursor(cursor int) {
	if cursor < 0 {
		cursor = 0
	}
	if w.totalRows > 0 && cursor >= w.totalRows {
		cursor = w.totalRows - 1
	}
	w.cursor = cursor
}

// SetScroll clamps the absolute scroll position; never negative.
func (w *Window) SetScroll(scroll int) {
	if scroll < 0 {
		scroll = 0
	}
	w.scroll = scroll
}

// Contains reports whether the absolute row index is loaded.
func (w *Window) Contains(index int) bool {
	return index >= w.loadedOffset && index < w.loadedOffset+len(w.rows)
}

// RowAt returns the row at an absolute index, if loaded.
func (w *Window) RowAt(index int) (core.Row, bool) {
	if !w.Contains(index) {
		return nil, false
	}
	return w.rows[index-w.loadedOffset], true
}

// Slice returns the loaded rows in the absolute range [from, to),
// clipped to the window.
func (w *Window) Slice(from, to int) []core.Row {
	if from < w.loadedOffset {
		from = w.loadedOffset
	}
	if to > w.loadedOffset+len(w.rows) {
		to = w.loadedOffset + len(w.rows)
	}
	if from >= to {
		return nil
	}
	return w.rows[from-w.loadedOffset : to-w.loadedOffset]
}

// Rows returns the whole loaded window.
func (w *Window) Rows() []core.Row { return w.rows }

// Replace discards the old window entirely and installs the fetched
// page at the given absolute offset.
func (w *Window) Replace(offset int, rs *core.RowSet) error {
	if offset < 0 {
		return fmt.Errorf("%w: offset %d", ErrWindowBounds, offset)
	}

	w.loadedOffset = offset
	w.header = rs.Header
	w.rows = make([]core.Row, len(rs.Rows))
	copy(w.rows, rs.Rows)

	w.recomputeWidths()
	return nil
}

// Append extends the window tail with a fetched page.
func (w *Window) Append(rs *core.RowSet) error {
	if len(w.rows) > math.MaxInt-rs.Len() {
		return fmt.Errorf("%w: window too large", ErrWindowBounds)
	}

	w.rows = append(w.rows, rs.Rows...)
	w.growWidths(rs.Rows)
	return nil
}

// Prepend extends the window head with a page fetched at newOffset.
// The page must end exactly where the window begins; absolute cursor
// and scroll positions are unaffected.
func (w *Window) Prepend(newOffset int, rs *core.RowSet) error {
	if newOffset < 0 || newOffset+rs.Len() != w.loadedOffset {
		return fmt.Errorf("%w: prepend [%d, %d) onto offset %d",
			ErrWindowBounds, newOffset, newOffset+rs.Len(), w.loadedOffset)
	}

	rows := make([]core.Row, 0, rs.Len()+len(w.rows))
	rows = append(rows, rs.Rows...)
	rows = append(rows, w.rows...)

	w.rows = rows
	w.loadedOffset = newOffset
	w.growWidths(rs.Rows)
	return nil
}

// Trim bounds the window to maxLoadedPages * pageSize rows by keeping
// the cursor's page plus trimDistancePages pages on each side,
// preferring to shrink the side farther from the cursor. Returns how
// many rows were dropped from head and tail.
func (w *Window) Trim(pageSize, maxLoadedPages, trimDistancePages int) (droppedHead, droppedTail int) {
	if pageSize <= 0 || maxLoadedPages <= 0 {
		return 0, 0
	}
	if len(w.rows) <= maxLoadedPages*pageSize {
		return 0, 0
	}

	// cursor's page index within the window; a cursor outside the
	// window is treated as sitting on the nearest edge
	cur := w.cursor
	if cur < w.loadedOffset {
		cur = w.loadedOffset
	}
	if cur >= w.loadedOffset+len(w.rows) {
		cur = w.loadedOffset + len(w.rows) - 1
	}
	cursorPage := (cur - w.loadedOffset) / pageSize

	lastPage := (len(w.rows) - 1) / pageSize

	firstKept := cursorPage - trimDistancePages
	if firstKept < 0 {
		firstKept = 0
	}
	lastKept := cursorPage + trimDistancePages
	if lastKept > lastPage {
		lastKept = lastPage
	}

	// cap the band, shrinking the larger side first but never past
	// the cursor's page
	for lastKept-firstKept+1 > maxLoadedPages {
		if cursorPage-firstKept >= lastKept-cursorPage && firstKept < cursorPage {
			firstKept++
		} else if lastKept > cursorPage {
			lastKept--
		} else {
			break
		}
	}

	keepFrom := firstKept * pageSize
	keepTo := (lastKept + 1) * pageSize
	if keepTo > len(w.rows) {
		keepTo = len(w.rows)
	}

	droppedHead = keepFrom
	droppedTail = len(w.rows) - keepTo

	kept := make([]core.Row, keepTo-keepFrom)
	copy(kept, w.rows[keepFrom:keepTo])

	w.rows = kept
	w.loadedOffset += droppedHead
	return droppedHead, droppedTail
}

// Reset releases the rows and forgets all positions.
func (w *Window) Reset() {
	*w = Window{}
}

func (w *Window) recomputeWidths() {
	w.colWidths = make([]int, len(w.header))
	for i, h := range w.header {
		w.colWidths[i] = utf8.RuneCountInString(h)
	}
	w.growWidths(w.rows)
}

func (w *Window) growWidths(rows []core.Row) {
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(w.colWidths) {
				break
			}
			width := utf8.RuneCountInString(fmt.Sprint(cell))
			if width > w.colWidths[i] {
				w.colWidths[i] = width
			}
		}
	}
}

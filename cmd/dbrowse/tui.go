package main

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dbrowse/core"
	"dbrowse/core/format"
	"dbrowse/internal/logger"
	"dbrowse/pager"
)

const uiTick = 50 * time.Millisecond

type viewMode int

const (
	modeConnecting viewMode = iota
	modeTables
	modeGrid
)

type (
	tickMsg      time.Time
	connectedMsg struct {
		session *pager.Session
		tables  []string
	}
	fatalMsg struct{ err error }
)

// statusSink implements pager.UI. It is shared by pointer between the
// model and the pager, and progress callbacks for the connect phase
// arrive from a command goroutine while the program loop renders, so
// every field lives behind the mutex.
type statusSink struct {
	mu              sync.Mutex
	spinner         string
	status          string
	errText         string
	cancelRequested bool
}

func (s *statusSink) ShowSpinnerFrame(message string) {
	s.mu.Lock()
	s.spinner = message
	s.mu.Unlock()
}

// PollCancelKey consumes a pending cancel request. One request maps
// to one cancelled operation.
func (s *statusSink) PollCancelKey() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cancelRequested {
		return false
	}
	s.cancelRequested = false
	return true
}

func (s *statusSink) ReportStatus(message string) {
	s.mu.Lock()
	s.status = message
	s.errText = ""
	s.mu.Unlock()
}

func (s *statusSink) ReportError(message string) {
	s.mu.Lock()
	s.errText = message
	s.mu.Unlock()
}

// RequestCancel flags a cancel keypress for the next progress poll.
func (s *statusSink) RequestCancel() {
	s.mu.Lock()
	s.cancelRequested = true
	s.mu.Unlock()
}

func (s *statusSink) clearSpinner() {
	s.mu.Lock()
	s.spinner = ""
	s.mu.Unlock()
}

// snapshot returns a consistent view of the sink for rendering.
func (s *statusSink) snapshot() (spinner, status, errText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spinner, s.status, s.errText
}

type browser struct {
	params  *core.ConnectionParams
	adapter core.Adapter
	log     *logger.Logger
	opts    []pager.Option
	query   string

	sink    *statusSink
	session *pager.Session

	mode     viewMode
	tables   []string
	tableIdx int

	// open view ids in opening order, for tab cycling
	viewIDs []pager.ViewID

	// set when the last tick handled a keypress; prefetch only runs
	// on idle ticks
	keyHandled bool

	width  int
	height int

	fatal error
}

func newBrowser(params *core.ConnectionParams, adapter core.Adapter, log *logger.Logger, query string, opts []pager.Option) *browser {
	return &browser{
		params:  params,
		adapter: adapter,
		log:     log,
		opts:    opts,
		query:   query,
		sink:    &statusSink{},
		mode:    modeConnecting,
		width:   80,
		height:  24,
	}
}

func (b *browser) Init() tea.Cmd {
	return tea.Batch(b.connectCmd(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(uiTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (b *browser) connectCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := pager.Connect(b.params, b.adapter, b.sink, b.log, b.opts...)
		if err != nil {
			return fatalMsg{err}
		}

		tables, err := session.ListTables()
		if err != nil {
			session.Close()
			return fatalMsg{err}
		}
		return connectedMsg{session: session, tables: tables}
	}
}

func (b *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		return b, nil

	case fatalMsg:
		b.fatal = msg.err
		return b, tea.Quit

	case connectedMsg:
		b.session = msg.session
		b.tables = msg.tables
		b.mode = modeTables
		b.sink.clearSpinner()

		if b.query != "" {
			b.openQuery(b.query)
		}
		return b, nil

	case tickMsg:
		b.onTick()
		return b, tick()

	case tea.KeyMsg:
		return b.onKey(msg)
	}

	return b, nil
}

// onTick drives the background loader of the focused view: settle
// finished loads, then top the window up around the cursor.
func (b *browser) onTick() {
	view := b.currentView()
	if view == nil {
		return
	}

	view.PollBackgroundLoad()
	view.CheckLoadMore()
	if !b.keyHandled {
		view.Prefetch()
	}
	b.keyHandled = false
}

func (b *browser) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b.keyHandled = true

	switch msg.String() {
	case "ctrl+c", "q":
		if b.session != nil {
			b.session.Close()
		}
		return b, tea.Quit
	}

	switch b.mode {
	case modeConnecting:
		// the connect runs on a command goroutine, so a keypress can
		// still reach it through the sink
		if msg.String() == "esc" {
			b.sink.RequestCancel()
		}
	case modeTables:
		b.onTableListKey(msg)
	case modeGrid:
		b.onGridKey(msg)
	}
	return b, nil
}

func (b *browser) onTableListKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if b.tableIdx > 0 {
			b.tableIdx--
		}
	case "down", "j":
		if b.tableIdx < len(b.tables)-1 {
			b.tableIdx++
		}
	case "enter":
		if len(b.tables) > 0 {
			b.openTable(b.tables[b.tableIdx])
		}
	case "tab":
		if len(b.viewIDs) > 0 {
			b.mode = modeGrid
		}
	}
}

func (b *browser) onGridKey(msg tea.KeyMsg) {
	view := b.currentView()
	if view == nil {
		b.mode = modeTables
		return
	}
	w := view.Window()

	switch msg.String() {
	case "esc":
		b.mode = modeTables
		return
	case "tab":
		b.cycleView()
		return
	case "x":
		b.closeCurrentView()
		return
	case "e":
		b.exportView(view, format.NewCSV())
		return
	case "E":
		b.exportView(view, format.NewJSON())
		return
	}

	target := w.Cursor()
	switch msg.String() {
	case "up", "k":
		target--
	case "down", "j":
		target++
	case "pgup":
		target -= b.gridRows()
	case "pgdown":
		target += b.gridRows()
	case "g", "home":
		target = 0
	case "G", "end":
		target = w.TotalRows() - 1
	default:
		return
	}

	// a jump outside the loaded window replaces it synchronously;
	// small moves only nudge the cursor and let the background
	// loader keep up
	if err := view.JumpTo(target); err != nil {
		return
	}
	view.CheckLoadMore()
	b.adjustScroll(w)
}

// adjustScroll keeps the cursor inside the visible band.
func (b *browser) adjustScroll(w *pager.Window) {
	visible := b.gridRows()
	if visible < 1 {
		visible = 1
	}

	scroll := w.Scroll()
	if w.Cursor() < scroll {
		scroll = w.Cursor()
	}
	if w.Cursor() >= scroll+visible {
		scroll = w.Cursor() - visible + 1
	}
	w.SetScroll(scroll)
}

// gridRows is the number of data rows that fit on screen.
func (b *browser) gridRows() int {
	// header, separator and two status lines
	return b.height - 4
}

func (b *browser) currentView() *pager.View {
	if b.session == nil {
		return nil
	}
	return b.session.CurrentView()
}

func (b *browser) openTable(table string) {
	source := pager.NewTableSource(b.session.Connection(), table)
	view, err := b.session.OpenTable(source)
	if err != nil {
		b.sink.ReportError(err.Error())
		return
	}

	b.viewIDs = append(b.viewIDs, view.ID())
	b.mode = modeGrid
	b.sink.ReportStatus(fmt.Sprintf("opened %s", view.Label()))
}

func (b *browser) openQuery(sql string) {
	view, err := b.session.OpenQuery(sql)
	if err != nil {
		b.sink.ReportError(err.Error())
		return
	}

	b.viewIDs = append(b.viewIDs, view.ID())
	b.mode = modeGrid
}

func (b *browser) cycleView() {
	current := b.currentView()
	if current == nil || len(b.viewIDs) < 2 {
		return
	}

	for i, id := range b.viewIDs {
		if id == current.ID() {
			next := b.viewIDs[(i+1)%len(b.viewIDs)]
			if err := b.session.SwitchView(next); err != nil {
				b.sink.ReportError(err.Error())
			}
			return
		}
	}
}

func (b *browser) closeCurrentView() {
	view := b.currentView()
	if view == nil {
		return
	}

	b.session.CloseView(view.ID())
	for i, id := range b.viewIDs {
		if id == view.ID() {
			b.viewIDs = append(b.viewIDs[:i], b.viewIDs[i+1:]...)
			break
		}
	}

	if len(b.viewIDs) > 0 {
		if err := b.session.SwitchView(b.viewIDs[len(b.viewIDs)-1]); err != nil {
			b.sink.ReportError(err.Error())
		}
		return
	}
	b.mode = modeTables
}

func (b *browser) exportView(view *pager.View, formatter format.Formatter) {
	name, err := exportWindow(view.Window(), formatter)
	if err != nil {
		b.sink.ReportError(err.Error())
		return
	}
	b.sink.ReportStatus(fmt.Sprintf("exported loaded rows to %s", name))
}

func (b *browser) View() string {
	if b.fatal != nil {
		return fmt.Sprintf("error: %s\n", b.fatal)
	}

	switch b.mode {
	case modeConnecting:
		return b.renderConnecting()
	case modeTables:
		return b.renderTableList()
	default:
		return b.renderGrid()
	}
}

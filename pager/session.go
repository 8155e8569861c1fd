package pager

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dbrowse/core"
	"dbrowse/internal/logger"
)

var ErrUnknownView = errors.New("unknown view")

// Session binds one connection to the set of views opened on it and
// owns the shared operation runner. Like everything else in this
// package it is driven from the UI loop only.
type Session struct {
	conn   *core.Connection
	runner *core.Runner
	ui     UI
	log    *logger.Logger
	cfg    *Config

	views     map[ViewID]*View
	currentID ViewID
}

// Connect establishes a session through the blocking progress facade.
// Connect-class operations show the spinner immediately (zero delay).
func Connect(params *core.ConnectionParams, adapter core.Adapter, ui UI, log *logger.Logger, opts ...Option) (*Session, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg = cfg.normalized()
	if ui == nil {
		ui = &NopUI{}
	}
	if log == nil {
		log = logger.New("")
	}

	runner := core.NewRunner(0)

	op := core.NewConnectOperation(params, adapter)
	if !runner.Start(op) {
		return nil, ErrWorkerUnavailable
	}
	defer runner.Free(op)

	message := fmt.Sprintf("connecting to %q", params.Name)
	if !WaitWithProgress(runner, op, ui, message, 0, cfg) {
		if err := op.Err(); err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		return nil, ErrLoadCancelled
	}

	result, err := op.TakeResult()
	if err != nil {
		return nil, fmt.Errorf("op.TakeResult: %w", err)
	}
	conn, ok := result.(*core.Connection)
	if !ok {
		return nil, fmt.Errorf("unexpected connect result type %T", result)
	}

	log.Infof("connected to %q (%s)", conn.GetName(), conn.GetType())

	return &Session{
		conn:   conn,
		runner: runner,
		ui:     ui,
		log:    log,
		cfg:    cfg,
		views:  make(map[ViewID]*View),
	}, nil
}

func (s *Session) Connection() *core.Connection {
	return s.conn
}

func (s *Session) Runner() *core.Runner {
	return s.runner
}

// CurrentView returns the focused view, or nil when none is open.
func (s *Session) CurrentView() *View {
	return s.views[s.currentID]
}

// Views returns all open views.
func (s *Session) Views() []*View {
	views := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	return views
}

// OpenTable opens a table view, performs its initial blocking load and
// focuses it.
func (s *Session) OpenTable(source *TableSource) (*View, error) {
	return s.openView(source)
}

// OpenQuery opens a query-result view, performs its initial blocking
// load and focuses it.
func (s *Session) OpenQuery(sql string) (*View, error) {
	return s.openView(NewQuerySource(s.conn, sql))
}

func (s *Session) openView(source PageSource) (*View, error) {
	view := NewView(source, s.runner, s.ui, func(c *Config) { *c = *s.cfg })

	if err := view.Open(); err != nil {
		view.Close()
		return nil, fmt.Errorf("view.Open: %w", err)
	}

	s.views[view.ID()] = view
	s.focus(view.ID())

	return view, nil
}

// SwitchView focuses another open view. The previously focused view's
// pending background load is cancelled first, so its window cannot be
// mutated while unfocused.
func (s *Session) SwitchView(id ViewID) error {
	if _, ok := s.views[id]; !ok {
		return ErrUnknownView
	}

	s.focus(id)
	return nil
}

func (s *Session) focus(id ViewID) {
	if current := s.CurrentView(); current != nil && current.ID() != id {
		current.CancelBackgroundLoad()
	}
	s.currentID = id
}

// CloseView tears down a single view.
func (s *Session) CloseView(id ViewID) {
	view, ok := s.views[id]
	if !ok {
		return
	}

	view.Close()
	delete(s.views, id)

	if s.currentID == id {
		s.currentID = ""
	}
}

// ListTables lists the connection's tables through the blocking facade.
func (s *Session) ListTables() ([]string, error) {
	result, err := s.waitClaim(s.conn.ListTablesOperation())
	if err != nil {
		return nil, err
	}

	tables, ok := result.([]string)
	if !ok {
		return nil, fmt.Errorf("unexpected table list type %T", result)
	}
	return tables, nil
}

// Schema fetches a table's columns through the blocking facade.
func (s *Session) Schema(table string) ([]*core.Column, error) {
	result, err := s.waitClaim(s.conn.SchemaOperation(table))
	if err != nil {
		return nil, err
	}

	columns, ok := result.([]*core.Column)
	if !ok {
		return nil, fmt.Errorf("unexpected schema type %T", result)
	}
	return columns, nil
}

// Exec runs a statement through the blocking facade and returns the
// number of affected rows.
func (s *Session) Exec(statement string) (int64, error) {
	result, err := s.waitClaim(s.conn.ExecOperation(statement))
	if err != nil {
		return 0, err
	}

	affected, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected exec result type %T", result)
	}

	s.ui.ReportStatus(fmt.Sprintf("%d rows affected", affected))
	return affected, nil
}

// waitClaim starts an operation, drives the facade and claims the
// result.
func (s *Session) waitClaim(op *core.Operation) (any, error) {
	if !s.runner.Start(op) {
		return nil, ErrWorkerUnavailable
	}
	defer s.runner.Free(op)

	if !WaitWithProgress(s.runner, op, s.ui, op.Label(), s.cfg.ProgressDelay, s.cfg) {
		if err := op.Err(); err != nil {
			s.ui.ReportError(err.Error())
			return nil, err
		}
		return nil, ErrLoadCancelled
	}

	result, err := op.TakeResult()
	if err != nil {
		return nil, fmt.Errorf("op.TakeResult: %w", err)
	}
	return result, nil
}

// Close tears down all views concurrently with a bounded wait, then
// closes the connection. A worker that never observes its cancellation
// in time is abandoned; its driver-side call is harmless by then.
func (s *Session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TeardownTimeout)
	defer cancel()

	group, _ := errgroup.WithContext(ctx)
	for _, view := range s.views {
		view := view
		group.Go(func() error {
			view.CancelBackgroundLoad()
			view.Close()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Infof("teardown timed out, abandoning in-flight operations")
	}

	s.views = make(map[ViewID]*View)
	s.currentID = ""

	s.conn.Close()
	s.log.Infof("disconnected from %q", s.conn.GetName())
}

package pager

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dbrowse/core"
	"dbrowse/core/mock"
)

func newTestSession(t *testing.T, totalRows int, adapterOpts []mock.AdapterOption, opts ...Option) (*Session, *mock.Adapter) {
	t.Helper()

	adapter := mock.NewAdapter(totalRows, adapterOpts...)
	opts = append([]Option{WithPollInterval(time.Millisecond)}, opts...)

	session, err := Connect(&core.ConnectionParams{Name: "mock", Type: "mock"}, adapter, nil, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(session.Close)

	return session, adapter
}

func TestSession_ConnectAndBrowse(t *testing.T) {
	r := require.New(t)

	session, _ := newTestSession(t, 300, nil)

	tables, err := session.ListTables()
	r.NoError(err)
	r.Equal([]string{"mock_table"}, tables)

	view, err := session.OpenTable(NewTableSource(session.Connection(), tables[0]))
	r.NoError(err)
	r.Same(view, session.CurrentView())
	r.Equal(300, view.Window().LoadedCount())
}

func TestSession_ConnectError(t *testing.T) {
	r := require.New(t)

	connectErr := errors.New("bad credentials")
	adapter := mock.NewAdapter(0, mock.AdapterWithConnectError(connectErr))

	_, err := Connect(&core.ConnectionParams{Name: "mock"}, adapter, nil, nil,
		WithPollInterval(time.Millisecond))
	r.ErrorIs(err, connectErr)
}

func TestSession_SwitchViewCancelsPending(t *testing.T) {
	r := require.New(t)

	session, _ := newTestSession(t, 10000, nil)

	first, err := session.OpenTable(NewTableSource(session.Connection(), "mock_table"))
	r.NoError(err)

	r.True(first.StartBackgroundLoad(LoadForward))

	// opening a second view steals focus and cancels the first's load
	second, err := session.OpenQuery("SELECT * FROM mock_table")
	r.NoError(err)

	r.False(first.HasPendingLoad())
	r.Same(second, session.CurrentView())

	r.NoError(session.SwitchView(first.ID()))
	r.Same(first, session.CurrentView())

	r.ErrorIs(session.SwitchView(ViewID("nope")), ErrUnknownView)
}

func TestSession_CloseView(t *testing.T) {
	r := require.New(t)

	session, _ := newTestSession(t, 100, nil)

	view, err := session.OpenTable(NewTableSource(session.Connection(), "mock_table"))
	r.NoError(err)
	r.Len(session.Views(), 1)

	session.CloseView(view.ID())

	r.Empty(session.Views())
	r.Nil(session.CurrentView())
	r.ErrorIs(view.LoadRowsAt(0), ErrViewClosed)
}

func TestSession_SchemaAndExec(t *testing.T) {
	r := require.New(t)

	session, _ := newTestSession(t, 100,
		[]mock.AdapterOption{mock.AdapterWithAffectedRows(7)})

	columns, err := session.Schema("mock_table")
	r.NoError(err)
	r.NotEmpty(columns)

	affected, err := session.Exec("DELETE FROM mock_table WHERE id < 7")
	r.NoError(err)
	r.EqualValues(7, affected)
}

func TestSession_CloseShutsDownViews(t *testing.T) {
	r := require.New(t)

	adapter := mock.NewAdapter(10000)
	session, err := Connect(&core.ConnectionParams{Name: "mock"}, adapter, nil, nil,
		WithPollInterval(time.Millisecond))
	r.NoError(err)

	view, err := session.OpenTable(NewTableSource(session.Connection(), "mock_table"))
	r.NoError(err)
	view.StartBackgroundLoad(LoadForward)

	session.Close()

	r.Empty(session.Views())
	r.False(view.HasPendingLoad())
	r.True(adapter.LastDriver().Closed())
}

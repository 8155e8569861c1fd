package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dbrowse/core"
)

// DefaultHeader is the header of every mocked row set.
var DefaultHeader = core.Header{"id", "value"}

// RowAt returns the deterministic row at absolute index i.
func RowAt(i int) core.Row {
	return core.Row{i, fmt.Sprintf("value_%d", i)}
}

// Rows returns the deterministic rows in the range [from, to).
func Rows(from, to int) []core.Row {
	var rows []core.Row
	for i := from; i < to; i++ {
		rows = append(rows, RowAt(i))
	}
	return rows
}

var _ core.Driver = (*Driver)(nil)

// Driver serves pages of a deterministic dataset of config.totalRows
// rows, where row i is always RowAt(i).
type Driver struct {
	config *driverConfig

	mu    sync.Mutex
	calls map[core.OperationKind]int
}

func (d *Driver) observe(ctx context.Context, kind core.OperationKind) error {
	d.mu.Lock()
	d.calls[kind]++
	d.mu.Unlock()

	if d.config.callDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.config.callDelay):
		}
	}

	if eff, ok := d.config.sideEffects[kind]; ok {
		if err := eff(ctx); err != nil {
			return err
		}
	}

	return ctx.Err()
}

// Calls reports how many driver calls of the given kind were made.
func (d *Driver) Calls(kind core.OperationKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[kind]
}

func (d *Driver) Query(ctx context.Context, query string) (*core.RowSet, error) {
	if err := d.observe(ctx, core.OperationQuery); err != nil {
		return nil, err
	}

	return &core.RowSet{
		Header: DefaultHeader,
		Rows:   Rows(0, d.config.totalRows),
	}, nil
}

func (d *Driver) QueryPage(ctx context.Context, req *core.PageRequest) (*core.RowSet, error) {
	kind := core.OperationQueryPage
	if req.Where != "" {
		kind = core.OperationQueryPageFiltered
	}
	if err := d.observe(ctx, kind); err != nil {
		return nil, err
	}

	from := req.Offset
	to := req.Offset + req.Limit
	if from > d.config.totalRows {
		from = d.config.totalRows
	}
	if to > d.config.totalRows {
		to = d.config.totalRows
	}

	return &core.RowSet{
		Header: DefaultHeader,
		Rows:   Rows(from, to),
	}, nil
}

func (d *Driver) CountRows(ctx context.Context, table string, approximate bool) (int, bool, error) {
	if err := d.observe(ctx, core.OperationCountRows); err != nil {
		return 0, false, err
	}

	if approximate && d.config.approximateRows >= 0 {
		return d.config.approximateRows, true, nil
	}
	return d.config.totalRows, false, nil
}

func (d *Driver) ListTables(ctx context.Context) ([]string, error) {
	if err := d.observe(ctx, core.OperationListTables); err != nil {
		return nil, err
	}
	return d.config.tables, nil
}

func (d *Driver) Schema(ctx context.Context, table string) ([]*core.Column, error) {
	if err := d.observe(ctx, core.OperationGetSchema); err != nil {
		return nil, err
	}
	return d.config.columns, nil
}

func (d *Driver) Exec(ctx context.Context, statement string) (int64, error) {
	if err := d.observe(ctx, core.OperationExec); err != nil {
		return 0, err
	}
	return d.config.affectedRows, nil
}

func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config.closed = true
}

// Closed reports whether Close was called on the driver.
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config.closed
}

var _ core.Adapter = (*Adapter)(nil)

type Adapter struct {
	config *driverConfig

	mu     sync.Mutex
	driver *Driver
}

// NewAdapter returns an adapter whose drivers serve totalRows
// deterministic rows.
func NewAdapter(totalRows int, opts ...AdapterOption) *Adapter {
	config := &driverConfig{
		totalRows:       totalRows,
		approximateRows: -1,
		tables:          []string{"mock_table"},
		columns: []*core.Column{
			{Name: "id", Type: "integer"},
			{Name: "value", Type: "text"},
		},
		sideEffects: make(map[core.OperationKind]func(context.Context) error),
	}
	for _, opt := range opts {
		opt(config)
	}

	return &Adapter{config: config}
}

func (a *Adapter) Connect(_ string) (core.Driver, error) {
	if a.config.connectError != nil {
		return nil, a.config.connectError
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.driver = &Driver{
		config: a.config,
		calls:  make(map[core.OperationKind]int),
	}
	return a.driver, nil
}

// LastDriver returns the driver handed out by the last Connect call.
func (a *Adapter) LastDriver() *Driver {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.driver
}

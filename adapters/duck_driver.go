//go:build (darwin && (amd64 || arm64)) || (linux && (amd64 || arm64)) || (windows && amd64)

package adapters

import (
	"context"
	"fmt"

	"dbrowse/core"
	"dbrowse/core/builders"
)

var _ core.Driver = (*duckDriver)(nil)

type duckDriver struct {
	c *builders.Client
}

func (d *duckDriver) Query(ctx context.Context, query string) (*core.RowSet, error) {
	return d.c.Query(ctx, query)
}

func (d *duckDriver) QueryPage(ctx context.Context, req *core.PageRequest) (*core.RowSet, error) {
	return d.c.QueryPage(ctx, req)
}

// CountRows counts exactly: duckdb answers count(*) from its own
// metadata in most cases, so an estimate buys nothing.
func (d *duckDriver) CountRows(ctx context.Context, table string, _ bool) (int, bool, error) {
	count, err := d.c.QueryInt(ctx, fmt.Sprintf("SELECT count(*) FROM %s", d.c.QuoteIdent(table)))
	if err != nil {
		return 0, false, err
	}
	return count, false, nil
}

func (d *duckDriver) ListTables(ctx context.Context) ([]string, error) {
	return d.c.StringsFromQuery(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'main'
		ORDER BY table_name`)
}

func (d *duckDriver) Schema(ctx context.Context, table string) ([]*core.Column, error) {
	return d.c.ColumnsFromQuery(ctx, `
		SELECT column_name, data_type FROM information_schema.columns
		WHERE table_name = '%s'
		ORDER BY ordinal_position`, table)
}

func (d *duckDriver) Exec(ctx context.Context, statement string) (int64, error) {
	return d.c.Exec(ctx, statement)
}

func (d *duckDriver) Close() {
	d.c.Close()
}

//go:build (darwin && (amd64 || arm64)) || (freebsd && (386 || amd64 || arm || arm64)) || (linux && (386 || amd64 || arm || arm64 || ppc64le || riscv64 || s390x)) || (netbsd && amd64) || (openbsd && (amd64 || arm64)) || (windows && (amd64 || arm64))

package adapters

import (
	"context"
	"fmt"

	"dbrowse/core"
	"dbrowse/core/builders"
)

var _ core.Driver = (*sqliteDriver)(nil)

type sqliteDriver struct {
	c *builders.Client
}

func (d *sqliteDriver) Query(ctx context.Context, query string) (*core.RowSet, error) {
	return d.c.Query(ctx, query)
}

func (d *sqliteDriver) QueryPage(ctx context.Context, req *core.PageRequest) (*core.RowSet, error) {
	return d.c.QueryPage(ctx, req)
}

// CountRows always counts exactly: sqlite has no cheap estimate, and
// walking the table is fast enough for local files.
func (d *sqliteDriver) CountRows(ctx context.Context, table string, _ bool) (int, bool, error) {
	count, err := d.c.QueryInt(ctx, fmt.Sprintf("SELECT count(*) FROM %s", d.c.QuoteIdent(table)))
	if err != nil {
		return 0, false, err
	}
	return count, false, nil
}

func (d *sqliteDriver) ListTables(ctx context.Context) ([]string, error) {
	return d.c.StringsFromQuery(ctx, "SELECT name FROM sqlite_schema WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%%' ORDER BY name")
}

func (d *sqliteDriver) Schema(ctx context.Context, table string) ([]*core.Column, error) {
	return d.c.ColumnsFromQuery(ctx, "SELECT name, type FROM pragma_table_info('%s')", table)
}

func (d *sqliteDriver) Exec(ctx context.Context, statement string) (int64, error) {
	return d.c.Exec(ctx, statement)
}

func (d *sqliteDriver) Close() { d.c.Close() }

package adapters

import (
	"context"
	"fmt"

	"dbrowse/core"
	"dbrowse/core/builders"
)

var _ core.Driver = (*mysqlDriver)(nil)

type mysqlDriver struct {
	c *builders.Client
}

func (d *mysqlDriver) Query(ctx context.Context, query string) (*core.RowSet, error) {
	return d.c.Query(ctx, query)
}

func (d *mysqlDriver) QueryPage(ctx context.Context, req *core.PageRequest) (*core.RowSet, error) {
	return d.c.QueryPage(ctx, req)
}

// CountRows reads TABLE_ROWS from information_schema when an
// approximate count is acceptable. For InnoDB that value is a rough
// statistics-based estimate.
func (d *mysqlDriver) CountRows(ctx context.Context, table string, approximate bool) (int, bool, error) {
	if approximate {
		count, err := d.c.QueryInt(ctx, fmt.Sprintf(`
			SELECT TABLE_ROWS FROM information_schema.TABLES
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = '%s'`, table))
		if err == nil && count >= 0 {
			return count, true, nil
		}
	}

	count, err := d.c.QueryInt(ctx, fmt.Sprintf("SELECT count(*) FROM %s", d.c.QuoteIdent(table)))
	if err != nil {
		return 0, false, err
	}
	return count, false, nil
}

func (d *mysqlDriver) ListTables(ctx context.Context) ([]string, error) {
	return d.c.StringsFromQuery(ctx, `
		SELECT TABLE_NAME FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE()
		ORDER BY TABLE_NAME`)
}

func (d *mysqlDriver) Schema(ctx context.Context, table string) ([]*core.Column, error) {
	return d.c.ColumnsFromQuery(ctx, `
		SELECT COLUMN_NAME, DATA_TYPE FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = '%s'
		ORDER BY ORDINAL_POSITION`, table)
}

func (d *mysqlDriver) Exec(ctx context.Context, statement string) (int64, error) {
	return d.c.Exec(ctx, statement)
}

func (d *mysqlDriver) Close() {
	d.c.Close()
}

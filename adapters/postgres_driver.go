package adapters

import (
	"context"
	"fmt"
	"strings"

	"dbrowse/core"
	"dbrowse/core/builders"
)

var _ core.Driver = (*postgresDriver)(nil)

type postgresDriver struct {
	c *builders.Client
}

func (d *postgresDriver) Query(ctx context.Context, query string) (*core.RowSet, error) {
	return d.c.Query(ctx, query)
}

func (d *postgresDriver) QueryPage(ctx context.Context, req *core.PageRequest) (*core.RowSet, error) {
	return d.c.QueryPage(ctx, req)
}

// CountRows reads the planner estimate from pg_class when an
// approximate count is acceptable. The estimate can be stale or plain
// wrong on tables that were never analyzed, which is exactly the case
// the pager's count reconciliation exists for.
func (d *postgresDriver) CountRows(ctx context.Context, table string, approximate bool) (int, bool, error) {
	if approximate {
		count, err := d.c.QueryInt(ctx, fmt.Sprintf(
			"SELECT reltuples::bigint FROM pg_class WHERE oid = '%s'::regclass", table))
		if err == nil && count >= 0 {
			return count, true, nil
		}
		// fall through to the exact count
	}

	count, err := d.c.QueryInt(ctx, fmt.Sprintf("SELECT count(*) FROM %s", d.c.QuoteIdent(table)))
	if err != nil {
		return 0, false, err
	}
	return count, false, nil
}

func (d *postgresDriver) ListTables(ctx context.Context) ([]string, error) {
	return d.c.StringsFromQuery(ctx, `
		SELECT table_schema || '.' || table_name
		FROM information_schema.tables
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY 1`)
}

func (d *postgresDriver) Schema(ctx context.Context, table string) ([]*core.Column, error) {
	schema, name := splitSchemaTable(table, "public")

	return d.c.ColumnsFromQuery(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE
			table_schema='%s' AND
			table_name='%s'
		ORDER BY ordinal_position`, schema, name)
}

func (d *postgresDriver) Exec(ctx context.Context, statement string) (int64, error) {
	return d.c.Exec(ctx, statement)
}

func (d *postgresDriver) Close() {
	d.c.Close()
}

// splitSchemaTable splits "schema.table" into its parts, falling back
// to the provided default schema.
func splitSchemaTable(table, defaultSchema string) (schema, name string) {
	before, after, found := strings.Cut(table, ".")
	if !found {
		return defaultSchema, table
	}
	return before, after
}

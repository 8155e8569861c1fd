package builders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"dbrowse/core"
)

var ErrPageBounds = errors.New("page bounds out of range")

// Client is the default sql client used by the specific adapter
// implementations.
type Client struct {
	db             *sql.DB
	typeProcessors map[string]func(any) any
	quoteIdent     func(string) string
}

func NewClient(db *sql.DB, opts ...ClientOption) *Client {
	config := clientConfig{
		typeProcessors: make(map[string]func(any) any),
		quoteIdent: func(ident string) string {
			return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
		},
	}
	for _, opt := range opts {
		opt(&config)
	}

	return &Client{
		db:             db,
		typeProcessors: config.typeProcessors,
		quoteIdent:     config.quoteIdent,
	}
}

func (c *Client) Close() {
	c.db.Close()
}

// Swap closes the current database handle and replaces it with the
// provided one (used for database switching).
func (c *Client) Swap(db *sql.DB) {
	c.db.Close()
	c.db = db
}

// QuoteIdent quotes a table or column identifier for this client.
func (c *Client) QuoteIdent(ident string) string {
	return c.quoteIdent(ident)
}

// PageSQL assembles the paged select for a request. The where clause
// is taken verbatim; identifiers are quoted.
func (c *Client) PageSQL(req *core.PageRequest) (string, error) {
	if req.Offset < 0 || req.Limit < 0 || req.Offset > math.MaxInt-req.Limit {
		return "", fmt.Errorf("%w: offset %d, limit %d", ErrPageBounds, req.Offset, req.Limit)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s", c.quoteIdent(req.Table))

	if req.Where != "" {
		fmt.Fprintf(&b, " WHERE %s", req.Where)
	}
	if req.OrderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", c.quoteIdent(req.OrderBy))
		if req.Descending {
			b.WriteString(" DESC")
		}
	}
	fmt.Fprintf(&b, " LIMIT %d OFFSET %d", req.Limit, req.Offset)

	return b.String(), nil
}

// QueryPage fetches a single page of a table.
func (c *Client) QueryPage(ctx context.Context, req *core.PageRequest) (*core.RowSet, error) {
	query, err := c.PageSQL(req)
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, query)
}

// Query runs a query and drains the cursor into a RowSet.
func (c *Client) Query(ctx context.Context, query string) (*core.RowSet, error) {
	dbRows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer dbRows.Close()

	header, err := dbRows.Columns()
	if err != nil {
		return nil, err
	}

	dbCols, err := dbRows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	rs := &core.RowSet{Header: header}

	for dbRows.Next() {
		columns := make([]any, len(dbCols))
		columnPointers := make([]any, len(dbCols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}

		if err := dbRows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		row := make(core.Row, len(dbCols))
		for i := range dbCols {
			val := *columnPointers[i].(*any)

			proc := c.getTypeProcessor(dbCols[i].DatabaseTypeName())

			row[i] = proc(val)
		}

		rs.Rows = append(rs.Rows, row)
	}
	if err := dbRows.Err(); err != nil {
		return nil, err
	}

	return rs, nil
}

// QueryInt runs a query expected to return a single numeric value,
// e.g. a row count.
func (c *Client) QueryInt(ctx context.Context, query string) (int, error) {
	var count sql.NullInt64

	err := c.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, err
	}
	if !count.Valid {
		return 0, errors.New("count query returned null")
	}

	return int(count.Int64), nil
}

// Exec executes a statement and returns the number of affected rows.
func (c *Client) Exec(ctx context.Context, statement string) (int64, error) {
	res, err := c.db.ExecContext(ctx, statement)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return affected, nil
}

// ColumnsFromQuery runs a query and converts the result to columns.
// The result must be at least 2 columns wide:
//
//	1st elem: name - string
//	2nd elem: type - string
//
// Query is sprintf-ed with args, so ColumnsFromQuery("select a from %s", "table_name") works.
func (c *Client) ColumnsFromQuery(ctx context.Context, query string, args ...any) ([]*core.Column, error) {
	rs, err := c.Query(ctx, fmt.Sprintf(query, args...))
	if err != nil {
		return nil, err
	}

	return ColumnsFromRowSet(rs)
}

// StringsFromQuery runs a query and flattens the first column of the
// result to a string slice. Used for table and database listings.
func (c *Client) StringsFromQuery(ctx context.Context, query string, args ...any) ([]string, error) {
	rs, err := c.Query(ctx, fmt.Sprintf(query, args...))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		if len(row) < 1 {
			continue
		}
		out = append(out, fmt.Sprint(row[0]))
	}

	return out, nil
}

func (c *Client) getTypeProcessor(typ string) func(any) any {
	proc, ok := c.typeProcessors[strings.ToLower(typ)]
	if ok {
		return proc
	}

	return func(val any) any {
		valb, ok := val.([]byte)
		if ok {
			return string(valb)
		}
		return val
	}
}

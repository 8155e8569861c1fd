package pager

import (
	"fmt"
	"strings"

	"dbrowse/core"
)

// PageSource is the recipe used to re-derive any page of a data view.
// Table browsing and query results share all pagination machinery;
// the only difference is how a source turns an offset and a limit
// into a driver call.
type PageSource interface {
	// Label describes the source for status and progress messages.
	Label() string
	// PageOperation builds the operation fetching [offset, offset+limit).
	PageOperation(offset, limit int) *core.Operation
	// CountOperation builds the operation counting the domain size.
	CountOperation(approximate bool) *core.Operation
}

var _ PageSource = (*TableSource)(nil)

// TableSource pages through a table, optionally filtered and ordered.
type TableSource struct {
	conn  *core.Connection
	table string

	where      string
	orderBy    string
	descending bool
}

func NewTableSource(conn *core.Connection, table string) *TableSource {
	return &TableSource{
		conn:  conn,
		table: table,
	}
}

// WithFilter sets the where clause (without the WHERE keyword).
func (s *TableSource) WithFilter(where string) *TableSource {
	s.where = where
	return s
}

// WithOrder sets the order column and direction.
func (s *TableSource) WithOrder(column string, descending bool) *TableSource {
	s.orderBy = column
	s.descending = descending
	return s
}

func (s *TableSource) Label() string {
	if s.where == "" {
		return s.table
	}
	return fmt.Sprintf("%s (filtered)", s.table)
}

func (s *TableSource) PageOperation(offset, limit int) *core.Operation {
	return s.conn.QueryPageOperation(&core.PageRequest{
		Table:      s.table,
		Offset:     offset,
		Limit:      limit,
		Where:      s.where,
		OrderBy:    s.orderBy,
		Descending: s.descending,
	})
}

func (s *TableSource) CountOperation(approximate bool) *core.Operation {
	// a filtered view has to count the filtered domain, and there is
	// no cheap estimate for that
	if s.where != "" {
		return s.conn.QueryCountOperation(fmt.Sprintf(
			"SELECT count(*) FROM %s WHERE %s", s.table, s.where))
	}

	return s.conn.CountRowsOperation(s.table, approximate)
}

var _ PageSource = (*QuerySource)(nil)

// QuerySource pages through the result of an arbitrary query by
// wrapping the base statement in a limited subselect. The base text
// must not carry its own LIMIT/OFFSET.
type QuerySource struct {
	conn    *core.Connection
	baseSQL string
}

func NewQuerySource(conn *core.Connection, baseSQL string) *QuerySource {
	return &QuerySource{
		conn:    conn,
		baseSQL: strings.TrimRight(strings.TrimSpace(baseSQL), ";"),
	}
}

func (s *QuerySource) Label() string {
	return "query result"
}

func (s *QuerySource) PageOperation(offset, limit int) *core.Operation {
	return s.conn.QueryOperation(fmt.Sprintf(
		"SELECT * FROM (%s) AS paged_query LIMIT %d OFFSET %d", s.baseSQL, limit, offset))
}

// CountOperation counts the full result set; always exact.
func (s *QuerySource) CountOperation(bool) *core.Operation {
	return s.conn.QueryCountOperation(fmt.Sprintf(
		"SELECT count(*) FROM (%s) AS paged_query", s.baseSQL))
}

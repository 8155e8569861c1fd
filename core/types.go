package core

import "context"

type (
	// Row and Header are attributes of a query result.
	Row    []any
	Header []string

	// RowSet is one fully materialized page of a result. The pager
	// consumes whole pages at a time, so drivers drain their cursors
	// into a RowSet before handing it over.
	RowSet struct {
		Header Header
		Rows   []Row
	}

	// Column describes a single column of a table.
	Column struct {
		// Name of the column
		Name string
		// Database type of the column
		Type string
	}
)

// Len returns the number of rows in the set.
func (rs *RowSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// PageRequest parameterizes a single page fetch against a table.
type PageRequest struct {
	Table      string
	Offset     int
	Limit      int
	Where      string
	OrderBy    string
	Descending bool
}

type (
	// Driver is an interface for a specific database driver.
	// All methods except Close block until the database responds and
	// honor cancellation through the passed context. They are only
	// ever called from within an operation's worker goroutine.
	Driver interface {
		Query(ctx context.Context, query string) (*RowSet, error)
		QueryPage(ctx context.Context, req *PageRequest) (*RowSet, error)
		CountRows(ctx context.Context, table string, approximate bool) (count int, isApproximate bool, err error)
		ListTables(ctx context.Context) ([]string, error)
		Schema(ctx context.Context, table string) ([]*Column, error)
		Exec(ctx context.Context, statement string) (affected int64, err error)
		Close()
	}

	// Adapter is an object which allows to connect to a database via url.
	Adapter interface {
		Connect(url string) (Driver, error)
	}
)

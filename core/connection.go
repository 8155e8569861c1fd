package core

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

type ConnectionID string

// CountResult is the payload of a CountRows operation.
type CountResult struct {
	Count       int
	Approximate bool
}

// Connection binds connection parameters to a live driver and builds
// the operations that run against it.
type Connection struct {
	params           *ConnectionParams
	unexpandedParams *ConnectionParams

	driver Driver
}

// NewConnection connects to the database described by params. It
// blocks until the driver answers, which is why interactive callers
// wrap it in NewConnectOperation instead of calling it directly.
func NewConnection(params *ConnectionParams, adapter Adapter) (*Connection, error) {
	expanded := params.Expand()
	if expanded.ID == "" {
		expanded.ID = ConnectionID(uuid.New().String())
	}

	driver, err := adapter.Connect(expanded.URL)
	if err != nil {
		return nil, fmt.Errorf("adapter.Connect: %w", err)
	}

	return &Connection{
		params:           expanded,
		unexpandedParams: params,
		driver:           driver,
	}, nil
}

// NewConnectOperation returns an operation whose result is a
// *Connection. The driver handle is closed automatically if the result
// is never claimed.
func NewConnectOperation(params *ConnectionParams, adapter Adapter) *Operation {
	label := fmt.Sprintf("connecting to %q", params.Name)

	op := NewOperation(OperationConnect, label, func(_ context.Context) (any, error) {
		return NewConnection(params, adapter)
	})

	return op.WithDiscardFunc(func(result any) {
		if c, ok := result.(*Connection); ok {
			c.Close()
		}
	})
}

func (c *Connection) GetID() ConnectionID {
	return c.params.ID
}

func (c *Connection) GetName() string {
	return c.params.Name
}

func (c *Connection) GetType() string {
	return c.params.Type
}

func (c *Connection) GetURL() string {
	return c.params.URL
}

// GetParams returns the original unexpanded source for this connection.
func (c *Connection) GetParams() *ConnectionParams {
	return c.unexpandedParams
}

// QueryOperation wraps a free-form query. The result is a *RowSet.
func (c *Connection) QueryOperation(query string) *Operation {
	return NewOperation(OperationQuery, "running query", func(ctx context.Context) (any, error) {
		return c.driver.Query(ctx, query)
	})
}

// QueryPageOperation wraps a single page fetch. The result is a *RowSet.
func (c *Connection) QueryPageOperation(req *PageRequest) *Operation {
	kind := OperationQueryPage
	if req.Where != "" {
		kind = OperationQueryPageFiltered
	}

	label := fmt.Sprintf("loading rows %d-%d of %q", req.Offset, req.Offset+req.Limit, req.Table)

	return NewOperation(kind, label, func(ctx context.Context) (any, error) {
		return c.driver.QueryPage(ctx, req)
	})
}

// CountRowsOperation wraps a row count. The result is a *CountResult.
func (c *Connection) CountRowsOperation(table string, approximate bool) *Operation {
	label := fmt.Sprintf("counting rows of %q", table)

	return NewOperation(OperationCountRows, label, func(ctx context.Context) (any, error) {
		count, isApprox, err := c.driver.CountRows(ctx, table, approximate)
		if err != nil {
			return nil, err
		}
		return &CountResult{Count: count, Approximate: isApprox}, nil
	})
}

// QueryCountOperation wraps a query expected to return a single
// scalar count. The result is a *CountResult with Approximate false.
func (c *Connection) QueryCountOperation(query string) *Operation {
	return NewOperation(OperationCountRows, "counting result rows", func(ctx context.Context) (any, error) {
		rs, err := c.driver.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		if rs.Len() < 1 || len(rs.Rows[0]) < 1 {
			return nil, fmt.Errorf("count query returned no rows: %q", query)
		}

		count, err := toInt(rs.Rows[0][0])
		if err != nil {
			return nil, fmt.Errorf("count query returned a non-numeric value: %w", err)
		}

		return &CountResult{Count: count}, nil
	})
}

// ListTablesOperation wraps table listing. The result is a []string.
func (c *Connection) ListTablesOperation() *Operation {
	return NewOperation(OperationListTables, "listing tables", func(ctx context.Context) (any, error) {
		return c.driver.ListTables(ctx)
	})
}

// SchemaOperation wraps schema introspection. The result is a []*Column.
func (c *Connection) SchemaOperation(table string) *Operation {
	label := fmt.Sprintf("loading schema of %q", table)

	return NewOperation(OperationGetSchema, label, func(ctx context.Context) (any, error) {
		return c.driver.Schema(ctx, table)
	})
}

// ExecOperation wraps a statement execution. The result is an int64
// with the number of affected rows.
func (c *Connection) ExecOperation(statement string) *Operation {
	return NewOperation(OperationExec, "executing statement", func(ctx context.Context) (any, error) {
		return c.driver.Exec(ctx, statement)
	})
}

func (c *Connection) Close() {
	c.driver.Close()
}

// toInt converts the scalar cell of a count query to an int.
func toInt(val any) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	case []byte:
		return strconv.Atoi(string(v))
	default:
		return 0, fmt.Errorf("unexpected count type %T", val)
	}
}

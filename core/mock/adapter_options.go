package mock

import (
	"context"
	"time"

	"dbrowse/core"
)

type driverConfig struct {
	totalRows       int
	approximateRows int
	affectedRows    int64
	callDelay       time.Duration
	tables          []string
	columns         []*core.Column
	sideEffects     map[core.OperationKind]func(context.Context) error
	connectError    error
	closed          bool
}

type AdapterOption func(*driverConfig)

// AdapterWithApproximateCount makes approximate counts report the
// given (possibly stale) estimate instead of the true row count.
func AdapterWithApproximateCount(count int) AdapterOption {
	return func(c *driverConfig) {
		c.approximateRows = count
	}
}

// AdapterWithCallDelay makes every driver call sleep for the given
// duration before answering, honoring context cancellation.
func AdapterWithCallDelay(delay time.Duration) AdapterOption {
	return func(c *driverConfig) {
		c.callDelay = delay
	}
}

// AdapterWithSideEffect registers a hook that runs at the start of
// every driver call of the given kind.
func AdapterWithSideEffect(kind core.OperationKind, sideEffect func(context.Context) error) AdapterOption {
	return func(c *driverConfig) {
		_, ok := c.sideEffects[kind]
		if ok {
			panic("side effect already registered for kind: " + kind.String())
		}

		c.sideEffects[kind] = sideEffect
	}
}

// AdapterWithTables overrides the table names returned by ListTables.
func AdapterWithTables(tables ...string) AdapterOption {
	return func(c *driverConfig) {
		c.tables = tables
	}
}

// AdapterWithColumns overrides the columns returned by Schema.
func AdapterWithColumns(columns ...*core.Column) AdapterOption {
	return func(c *driverConfig) {
		c.columns = columns
	}
}

// AdapterWithAffectedRows sets the affected-row count reported by Exec.
func AdapterWithAffectedRows(affected int64) AdapterOption {
	return func(c *driverConfig) {
		c.affectedRows = affected
	}
}

// AdapterWithConnectError makes Connect fail with the given error.
func AdapterWithConnectError(err error) AdapterOption {
	return func(c *driverConfig) {
		c.connectError = err
	}
}

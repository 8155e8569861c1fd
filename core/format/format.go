package format

import (
	"fmt"
	"strings"

	"dbrowse/core"
)

// Options carry the export context a formatter may care about.
type Options struct {
	// FirstRowIndex is the absolute index of the first exported row,
	// used by formatters that print row numbers.
	FirstRowIndex int
}

// Formatter serializes a slice of rows for export or display.
type Formatter interface {
	Name() string
	Format(header core.Header, rows []core.Row, opts *Options) ([]byte, error)
}

// ByName returns the formatter registered under the given name.
func ByName(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "csv":
		return NewCSV(), nil
	case "json":
		return NewJSON(), nil
	case "table":
		return NewTable(), nil
	default:
		return nil, fmt.Errorf("unknown format: %q", name)
	}
}

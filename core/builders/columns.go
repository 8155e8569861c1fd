package builders

import (
	"errors"
	"fmt"

	"dbrowse/core"
)

// ColumnsFromRowSet converts a row set to columns. Rows must be at
// least 2 elements wide: name first, type second.
func ColumnsFromRowSet(rs *core.RowSet) ([]*core.Column, error) {
	var columns []*core.Column

	for _, row := range rs.Rows {
		if len(row) < 2 {
			return nil, errors.New("columns query result is less than 2 columns wide")
		}

		columns = append(columns, &core.Column{
			Name: fmt.Sprint(row[0]),
			Type: fmt.Sprint(row[1]),
		})
	}

	return columns, nil
}

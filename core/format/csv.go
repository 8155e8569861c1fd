package format

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"dbrowse/core"
)

var _ Formatter = (*CSV)(nil)

type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

func (cf *CSV) Name() string {
	return "csv"
}

func (cf *CSV) Format(header core.Header, rows []core.Row, _ *Options) ([]byte, error) {
	data := [][]string{header}
	for _, row := range rows {
		csvRow := make([]string, 0, len(row))
		for _, rec := range row {
			csvRow = append(csvRow, fmt.Sprint(rec))
		}
		data = append(data, csvRow)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(data); err != nil {
		return nil, err
	}
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

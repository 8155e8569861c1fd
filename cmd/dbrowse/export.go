package main

import (
	"fmt"
	"os"
	"time"

	"dbrowse/core/format"
	"dbrowse/pager"
)

var exportExtensions = map[string]string{
	"csv":   "csv",
	"json":  "json",
	"table": "txt",
}

// exportWindow writes the loaded rows of a window to a timestamped
// file in the working directory and returns the file name.
func exportWindow(w *pager.Window, formatter format.Formatter) (string, error) {
	out, err := formatter.Format(w.Header(), w.Rows(), &format.Options{
		FirstRowIndex: w.LoadedOffset(),
	})
	if err != nil {
		return "", fmt.Errorf("formatter.Format: %w", err)
	}

	ext, ok := exportExtensions[formatter.Name()]
	if !ok {
		ext = "txt"
	}
	name := fmt.Sprintf("dbrowse_export_%s.%s", time.Now().Format("20060102_150405"), ext)

	if err := os.WriteFile(name, out, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile: %w", err)
	}
	return name, nil
}

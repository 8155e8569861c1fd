package core

import (
	"bytes"
	"os"
	"text/template"
)

// expand resolves {{ env "VAR" }} references in connection parameters,
// so credentials can live in the environment instead of the saved
// connections file.
func expand(value string) (string, error) {
	tmpl, err := template.New("expand_variables").
		Funcs(template.FuncMap{
			"env": os.Getenv,
		}).
		Parse(value)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, nil); err != nil {
		return "", err
	}

	return out.String(), nil
}

// expandOrDefault silently suppresses errors.
func expandOrDefault(value string) string {
	ex, err := expand(value)
	if err != nil {
		return value
	}
	return ex
}

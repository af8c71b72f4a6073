package cli

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// writeOutput renders data as JSON or YAML, or writes text as is.
func writeOutput(w io.Writer, format string, data any, text string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, text)
		return err
	}
}

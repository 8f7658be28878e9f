package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/segmentio/encoding/json"

	"github.com/matsen/bibstats/internal/report"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ImportResponse is the response for usage import.
type ImportResponse struct {
	Status   string `json:"status"`
	Path     string `json:"path"`
	Imported int    `json:"imported"`
	Total    int    `json:"total"`
}

// printDocumentHuman prints every result family in model order, labels sorted.
func printDocumentHuman(w io.Writer, doc report.Document, models []report.Model) {
	for i, m := range models {
		values, ok := doc[m.Name]
		if !ok {
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", m.Name)
		for _, label := range slices.Sorted(maps.Keys(values)) {
			fmt.Fprintf(w, "  %-40s %s\n", label, formatValue(values[label]))
		}
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%.4g", x)
	default:
		return fmt.Sprint(x)
	}
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

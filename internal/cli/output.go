// Package cli provides output formatting for the docsearch command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/docuvault/docsearch/internal/models"
)

// OutputFormat selects how search results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputCompact is one result per line, for piping into other tools.
	OutputCompact OutputFormat = "compact"
)

// ParseOutputFormat validates a format string from a flag.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON, OutputCompact:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for _, result := range response.Results {
			fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\n",
				result.Score, result.Provenance, result.DocumentID, result.Title)
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms (mode: %s)\n\n",
		response.TotalResults, response.SearchTimeMs, response.Mode)
	for i, result := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%s] Rank: %d | Score: %.4f\n", result.Provenance, i+1, result.Score)
		fmt.Fprintf(w, "ID: %s\n", result.DocumentID)
		if result.Title != "" {
			fmt.Fprintf(w, "Title: %s\n", result.Title)
		}
		if result.Category != "" {
			fmt.Fprintf(w, "Category: %s\n", result.Category)
		}
		if result.Preview != "" {
			fmt.Fprintf(w, "\n%s\n", result.Preview)
		}
		fmt.Fprintln(w)
	}
}

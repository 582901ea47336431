package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/hsv-vvk/internal/match"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt  time.Time      `json:"checked_at"`
	Source     string         `json:"source"`
	Team       string         `json:"team"`
	Events     []*match.Event `json:"events"`
	EventCount int            `json:"event_count"`
	Rows       int            `json:"rows"`
	Skipped    int            `json:"skipped"`
	Mismatched int            `json:"mismatched"`
	Degraded   bool           `json:"degraded,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeText(w io.Writer, result *OutputResult) error {
	if result.Degraded {
		fmt.Fprintf(w, "Could not read %s, showing no pre-sales.\n", result.Source)
		return nil
	}

	if result.EventCount == 0 {
		fmt.Fprintln(w, "No pre-sale dates found.")
	}

	for _, evt := range result.Events {
		fmt.Fprintf(w, "%s  %s\n", evt.Start.Format("Mon 02.01.2006 15:04"), evt.Summary)
		fmt.Fprintf(w, "                      %s\n", evt.Description)
	}

	fmt.Fprintf(w, "\nTotal: %d pre-sales (%d rows, %d skipped", result.EventCount, result.Rows, result.Skipped)
	if result.Mismatched > 0 {
		fmt.Fprintf(w, ", %d with unexpected layout", result.Mismatched)
	}
	fmt.Fprintln(w, ")")

	return nil
}

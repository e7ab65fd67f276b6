package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/reergymerej/poor-nosql/internal/store"
)

// MaxColumnWidth caps table column widths in human output.
const MaxColumnWidth = 40

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format, args...)
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

// exitWithStoreError exits with the code matching a store error.
func exitWithStoreError(err error) {
	exitWithError(exitCodeFor(err), "%v", err)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// recordColumns returns the union of field names across records,
// with the id field first (when present) and the rest sorted.
func recordColumns(records []store.Record) []string {
	seen := map[string]bool{}
	var cols []string
	for _, record := range records {
		for col := range record {
			if !seen[col] {
				seen[col] = true
				if col != store.IDField {
					cols = append(cols, col)
				}
			}
		}
	}
	sort.Strings(cols)
	if seen[store.IDField] {
		cols = append([]string{store.IDField}, cols...)
	}
	return cols
}

// formatValue renders a field value for tables and CSV.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		data, _ := json.Marshal(v)
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// outputCSV writes records as CSV.
func outputCSV(records []store.Record) {
	if len(records) == 0 {
		return
	}

	cols := recordColumns(records)
	w := csv.NewWriter(stdout)
	w.Write(cols)
	for _, record := range records {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = formatValue(record[col])
		}
		w.Write(row)
	}
	w.Flush()
}

// outputJSONL writes records as JSONL.
func outputJSONL(records []store.Record) {
	for _, record := range records {
		data, _ := json.Marshal(record)
		fmt.Fprintln(stdout, string(data))
	}
}

// outputTable writes records as a formatted table.
func outputTable(records []store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(stdout, "(0 rows)")
		return
	}

	cols := recordColumns(records)

	// Calculate column widths
	widths := make(map[string]int)
	for _, col := range cols {
		widths[col] = len(col)
	}
	for _, record := range records {
		for _, col := range cols {
			if n := len(formatValue(record[col])); n > widths[col] {
				widths[col] = n
			}
		}
	}
	for col := range widths {
		if widths[col] > MaxColumnWidth {
			widths[col] = MaxColumnWidth
		}
	}

	var header []string
	for _, col := range cols {
		header = append(header, padRight(strings.ToUpper(col), widths[col]))
	}
	fmt.Fprintln(stdout, strings.TrimRight(strings.Join(header, "  "), " "))

	for _, record := range records {
		var row []string
		for _, col := range cols {
			row = append(row, padRight(truncateString(formatValue(record[col]), widths[col]), widths[col]))
		}
		fmt.Fprintln(stdout, strings.TrimRight(strings.Join(row, "  "), " "))
	}

	fmt.Fprintf(stdout, "(%d rows)\n", len(records))
}

// padRight pads a string with spaces on the right.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

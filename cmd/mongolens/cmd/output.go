package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Output formats accepted by the --format flags.
const (
	formatTable   = "table"
	formatJSON    = "json"
	formatMermaid = "mermaid"
)

// sampleValueWidth bounds how much of a document value a table cell shows.
const sampleValueWidth = 40

// timePrecision rounds durations in human-readable output.
const timePrecision = time.Millisecond

// heading renders a section header.
func heading(s string) string {
	return color.Bold.Render(fmt.Sprintf("=== %s ===", s))
}

func okMark() string   { return color.Green.Render("✔") }
func failMark() string { return color.Red.Render("✖") }

// renderTable writes an aligned table. Column widths are computed from
// display width, not byte length, so wide runes in document values line up.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, 0, len(cells))
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			parts = append(parts, runewidth.FillRight(cell, widths[i]))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	writeRow(headers)
	separators := make([]string, len(headers))
	for i := range headers {
		separators[i] = strings.Repeat("-", widths[i])
	}
	writeRow(separators)
	for _, row := range rows {
		writeRow(row)
	}
}

// printJSON writes indented JSON followed by a newline.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// formatValue renders one document value for a table cell, truncated to the
// given display width.
func formatValue(v interface{}, max int) string {
	var s string
	switch val := v.(type) {
	case nil:
		s = "null"
	case primitive.ObjectID:
		s = val.Hex()
	case time.Time:
		s = val.Format(time.RFC3339)
	case primitive.DateTime:
		s = val.Time().UTC().Format(time.RFC3339)
	case string:
		s = val
	default:
		s = fmt.Sprintf("%v", val)
	}
	s = strings.ReplaceAll(s, "\n", " ")
	return runewidth.Truncate(s, max, "...")
}

// formatValues renders a bounded list of values as one cell.
func formatValues(values []interface{}, max int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, formatValue(v, max))
	}
	return runewidth.Truncate(strings.Join(parts, ", "), max, "...")
}

// validateFormat rejects formats a command does not support.
func validateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (expected %s)", format, strings.Join(allowed, "|"))
}

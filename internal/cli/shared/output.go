package shared

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// BindOutputFlag registers --output on fs.
func BindOutputFlag(fs *flag.FlagSet) *string {
	return fs.String("output", OutputTable, "Output format: table or json")
}

// ValidateOutput normalises an --output value.
func ValidateOutput(value string) (string, error) {
	switch format := strings.ToLower(strings.TrimSpace(value)); format {
	case OutputTable, OutputJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--output must be %q or %q, got %q", OutputTable, OutputJSON, value)
	}
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// PrintTable writes rows under headers.
func PrintTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	table.Header(header...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// Print writes v as JSON, or rows as a table, depending on format.
func Print(w io.Writer, format string, v any, headers []string, rows [][]string) error {
	if format == OutputJSON {
		return PrintJSON(w, v)
	}
	return PrintTable(w, headers, rows)
}

package output

import (
	"fmt"
	"io"
	"strings"
)

// Format represents the output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// Tabular is implemented by values with a table layout.
type Tabular interface {
	Table() *Table
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// Printer writes values in one format.
type Printer struct {
	w         io.Writer
	formatter Formatter
	format    Format
}

// NewPrinter creates a Printer for w.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, formatter: NewFormatter(format), format: format}
}

// Format returns the printer's format.
func (p *Printer) Format() Format {
	return p.format
}

// Print formats v.
func (p *Printer) Print(v any) error {
	return p.formatter.Format(p.w, v)
}

// Message prints a human readable line in table mode only, so JSON and
// YAML output stays machine readable.
func (p *Printer) Message(format string, args ...any) {
	if p.format == FormatTable || p.format == "" {
		fmt.Fprintf(p.w, format+"\n", args...)
	}
}

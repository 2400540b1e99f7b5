// Package output provides output formatting for the engine CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Format represents the output format.
type Format string

// Output format constants.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// ParseFormat parses a format name, defaulting to auto.
func ParseFormat(s string) Format {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s)
	default:
		return FormatAuto
	}
}

// DetectFormat resolves auto to text for terminals and JSON for pipes.
func DetectFormat(f *os.File, format Format) Format {
	if format != FormatAuto {
		return format
	}
	if isTerminal(f) {
		return FormatText
	}
	return FormatJSON
}

// Formatter handles output formatting.
type Formatter struct {
	format Format
	writer io.Writer
}

// NewFormatter creates a new formatter with the specified format.
func NewFormatter(format Format, w io.Writer) *Formatter {
	return &Formatter{format: format, writer: w}
}

// Format returns the current output format.
func (f *Formatter) Format() Format {
	return f.format
}

// Writer returns the output writer.
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// IsJSON returns true if the formatter outputs JSON.
func (f *Formatter) IsJSON() bool {
	return f.format == FormatJSON
}

// Print writes the value: indented JSON in JSON mode, fmt defaults in text
// mode.
func (f *Formatter) Print(v any) error {
	if f.format == FormatJSON {
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
	_, err := fmt.Fprintln(f.writer, v)
	return err
}

// Printf writes formatted text output.
func (f *Formatter) Printf(format string, args ...any) error {
	_, err := fmt.Fprintf(f.writer, format, args...)
	return err
}

// Println writes a line of text output.
func (f *Formatter) Println(args ...any) error {
	_, err := fmt.Fprintln(f.writer, args...)
	return err
}

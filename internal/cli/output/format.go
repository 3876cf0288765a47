// Package output renders command results as tables, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format is an output format selected with --output.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a --output value. An empty value selects the table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
}

func (f Format) String() string { return string(f) }

const (
	ansiRed    = "31"
	ansiGreen  = "32"
	ansiYellow = "33"
)

// Printer writes command results in one format.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter creates a Printer. Color applies to status messages only.
func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	return &Printer{out: out, format: format, color: color}
}

// NewStdoutPrinter parses flag and returns a Printer on stdout.
func NewStdoutPrinter(flag string) (*Printer, error) {
	format, err := ParseFormat(flag)
	if err != nil {
		return nil, err
	}
	return NewPrinter(os.Stdout, format, format == FormatTable), nil
}

func (p *Printer) Format() Format    { return p.format }
func (p *Printer) Writer() io.Writer { return p.out }

// Print renders data. Tables need a TableRenderer; anything else falls
// back to JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	case FormatTable:
		if r, ok := data.(TableRenderer); ok {
			return PrintTable(p.out, r)
		}
		return PrintJSON(p.out, data)
	}
	return fmt.Errorf("unknown format: %s", p.format)
}

// Printf writes a formatted message.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) Success(msg string) { p.status(ansiGreen, msg) }
func (p *Printer) Warning(msg string) { p.status(ansiYellow, msg) }
func (p *Printer) Error(msg string)   { p.status(ansiRed, msg) }

func (p *Printer) status(code, msg string) {
	if p.color {
		msg = "\033[" + code + "m" + msg + "\033[0m"
	}
	_, _ = fmt.Fprintln(p.out, msg)
}

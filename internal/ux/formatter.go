package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Formatter renders command output in the format picked by --format.
// Commands print their human-readable tables themselves; the formatter
// covers the machine-readable formats plus plain strings.
type Formatter interface {
	Format(v any) error
}

// FormatterOptions contains configuration for formatters
type FormatterOptions struct {
	// Writer is where output is written (defaults to os.Stdout)
	Writer io.Writer
	// NoColor disables colored output for text formatters
	NoColor bool
	// Compact drops indentation from JSON and YAML output
	Compact bool
}

// NewFormatter creates a formatter for "text", "json", or "yaml". The
// empty string means text, the config default.
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	if opts == nil {
		opts = &FormatterOptions{}
	}
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	switch format {
	case "json":
		return jsonFormatter{w: w, compact: opts.Compact}, nil
	case "yaml":
		return yamlFormatter{w: w, compact: opts.Compact}, nil
	case "text", "":
		return textFormatter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

type jsonFormatter struct {
	w       io.Writer
	compact bool
}

func (f jsonFormatter) Format(v any) error {
	enc := json.NewEncoder(f.w)
	if !f.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

type yamlFormatter struct {
	w       io.Writer
	compact bool
}

func (f yamlFormatter) Format(v any) error {
	enc := yaml.NewEncoder(f.w)
	if !f.compact {
		enc.SetIndent(2)
	}
	defer enc.Close()
	return enc.Encode(v)
}

type textFormatter struct {
	w io.Writer
}

// Format prints strings and Stringers. Structured payloads have no
// generic text rendering here; commands that support text output
// print their own tables and never reach the formatter.
func (f textFormatter) Format(v any) error {
	switch v := v.(type) {
	case string:
		_, err := fmt.Fprintln(f.w, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.w, v.String())
		return err
	default:
		return fmt.Errorf("no text rendering for %T; use --format json or yaml", v)
	}
}

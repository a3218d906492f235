package ux

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type statusLine struct {
	Email    string `json:"email" yaml:"email"`
	LoggedIn bool   `json:"loggedIn" yaml:"loggedIn"`
}

func (s statusLine) String() string {
	return "Logged in as " + s.Email
}

func TestNewFormatterUnknownFormat(t *testing.T) {
	if _, err := NewFormatter("xml", nil); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("json", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter failed: %v", err)
	}

	if err := f.Format(statusLine{Email: "me@example.com", LoggedIn: true}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var got statusLine
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Email != "me@example.com" || !got.LoggedIn {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !strings.Contains(buf.String(), "  ") {
		t.Error("expected indented output without Compact")
	}
}

func TestJSONFormatCompact(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})
	if err != nil {
		t.Fatalf("NewFormatter failed: %v", err)
	}

	if err := f.Format(statusLine{Email: "me@example.com"}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if strings.Contains(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		t.Errorf("compact output must be a single line, got %q", buf.String())
	}
}

func TestYAMLFormat(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("yaml", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter failed: %v", err)
	}

	if err := f.Format(statusLine{Email: "me@example.com", LoggedIn: true}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var got statusLine
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if got.Email != "me@example.com" || !got.LoggedIn {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("text", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter failed: %v", err)
	}

	if err := f.Format("plain line"); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if buf.String() != "plain line\n" {
		t.Errorf("expected 'plain line', got %q", buf.String())
	}

	buf.Reset()
	if err := f.Format(statusLine{Email: "me@example.com"}); err != nil {
		t.Fatalf("Format failed for Stringer: %v", err)
	}
	if !strings.Contains(buf.String(), "Logged in as me@example.com") {
		t.Errorf("expected the String() rendering, got %q", buf.String())
	}

	if err := f.Format(struct{ X int }{1}); err == nil {
		t.Error("expected an error for a payload with no text rendering")
	}
}

func TestEmptyFormatIsText(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter failed: %v", err)
	}
	if err := f.Format("x"); err != nil {
		t.Errorf("empty format must behave as text, got %v", err)
	}
}

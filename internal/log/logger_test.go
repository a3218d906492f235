package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Ref-Hub/refhub-cli/internal/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "default config",
			config: DefaultConfig(),
		},
		{
			name:   "debug config",
			config: DebugConfig(),
		},
		{
			name: "custom config json",
			config: Config{
				Level:     LevelDebug,
				Format:    FormatJSON,
				Output:    OutputStderr(),
				AddSource: true,
			},
		},
		{
			name: "custom config text",
			config: Config{
				Level:  LevelWarn,
				Format: FormatText,
				Output: OutputDiscard(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.config)
			if logger == nil {
				t.Fatal("expected logger, got nil")
			}
			if logger.slog == nil {
				t.Fatal("expected slog logger, got nil")
			}
			if logger.config.Level != tt.config.Level {
				t.Errorf("expected level %v, got %v", tt.config.Level, logger.config.Level)
			}
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	logger.Info("list refreshed", "page", 2, "generation", 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "list refreshed" {
		t.Errorf("expected msg 'list refreshed', got %v", entry["msg"])
	}
	if entry["page"] != float64(2) {
		t.Errorf("expected page 2, got %v", entry["page"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelWarn,
		Format: FormatText,
		Output: NewOutput(&buf),
	})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug/info output should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn output missing: %q", out)
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	err := errors.NewSessionExpiredError()
	logger.WithError(err).Error("request failed")

	out := buf.String()
	if !strings.Contains(out, string(errors.ErrCodeSessionExpired)) {
		t.Errorf("expected error code in output, got %q", out)
	}
	if !strings.Contains(out, "session expired") {
		t.Errorf("expected error message in output, got %q", out)
	}
}

func TestDefaultLogger(t *testing.T) {
	if DefaultLogger() == nil {
		t.Fatal("expected a fallback logger before any SetDefaultLogger call")
	}

	var buf bytes.Buffer
	configured := New(Config{Level: LevelDebug, Format: FormatText, Output: NewOutput(&buf)})
	SetDefaultLogger(configured)
	t.Cleanup(func() { SetDefaultLogger(Default()) })

	if DefaultLogger() != configured {
		t.Error("expected the configured logger to be returned")
	}

	// Nil must never displace a usable default.
	SetDefaultLogger(nil)
	if DefaultLogger() != configured {
		t.Error("nil must not replace the configured default")
	}

	DefaultLogger().Debug("fallback active")
	if !strings.Contains(buf.String(), "fallback active") {
		t.Errorf("expected output through the configured default, got %q", buf.String())
	}
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()
	if cfg.Level != LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Level)
	}
	if !cfg.AddSource {
		t.Error("expected source locations in debug output")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

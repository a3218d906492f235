package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/Ref-Hub/refhub-cli/internal/log"
)

func newInviteTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "invite"}
	cmd.Flags().String("role", "viewer", "")
	return cmd
}

// TestResolveInviteRole tests flag precedence and the non-interactive
// fallback for the invite role.
func TestResolveInviteRole(t *testing.T) {
	t.Setenv("CI", "true") // never prompt in tests

	cmd := newInviteTestCmd()
	role, err := resolveInviteRole(cmd)
	if err != nil {
		t.Fatalf("resolveInviteRole failed: %v", err)
	}
	if role != "viewer" {
		t.Errorf("Expected the flag default 'viewer', got '%s'", role)
	}

	cmd = newInviteTestCmd()
	if err := cmd.Flags().Set("role", "editor"); err != nil {
		t.Fatalf("Failed to set flag: %v", err)
	}
	role, err = resolveInviteRole(cmd)
	if err != nil {
		t.Fatalf("resolveInviteRole failed: %v", err)
	}
	if role != "editor" {
		t.Errorf("Expected the explicit 'editor', got '%s'", role)
	}
}

// TestBuildLoggerVerbose tests that --verbose selects the debug
// configuration with source locations, and --quiet still wins.
func TestBuildLoggerVerbose(t *testing.T) {
	logger := buildLogger(&CommandContext{Verbose: true}, &GlobalConfig{})
	if logger.Config().Level != log.LevelDebug {
		t.Errorf("Expected debug level, got %v", logger.Config().Level)
	}
	if !logger.Config().AddSource {
		t.Error("Expected source locations with --verbose")
	}

	logger = buildLogger(&CommandContext{Verbose: true, Quiet: true}, &GlobalConfig{})
	if logger.Config().Level != log.LevelError {
		t.Errorf("Expected quiet to win, got %v", logger.Config().Level)
	}
}

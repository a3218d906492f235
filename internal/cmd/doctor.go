package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ref-Hub/refhub-cli/internal/api"
	"github.com/Ref-Hub/refhub-cli/internal/session"
	"github.com/Ref-Hub/refhub-cli/internal/tokenstore"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the local setup",
	Long: `Run health checks on the local setup: the embedded API contract,
connectivity to the configured server, and the stored session.

Examples:
  refhub doctor
  refhub doctor --api-url http://localhost:8000`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	failed := 0
	check := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Printf("✗ %s: %v\n", name, err)
			return
		}
		fmt.Printf("✓ %s\n", name)
	}

	check("API contract", api.CheckContract())
	check("Server reachable", app.Client.Ping(cmd.Context()))

	if path, err := tokenstore.DefaultPath(); err == nil {
		fmt.Printf("✓ Credential store: %s\n", path)
	} else {
		failed++
		fmt.Printf("✗ Credential store: %v\n", err)
	}

	switch app.Session.Initialize(cmd.Context()) {
	case session.StateAuthenticated:
		fmt.Printf("✓ Session: authenticated as %s\n", app.SessionEmail())
	default:
		fmt.Println("- Session: not logged in")
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

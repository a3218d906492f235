package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Ref-Hub/refhub-cli/internal/tui"
	"github.com/Ref-Hub/refhub-cli/internal/ux"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse collections interactively",
	Long: `Open the interactive browser. Navigate collections and references,
create and rename collections, and delete entries, all without
leaving the terminal.

Key bindings are shown with '?' inside the browser.`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	model := tui.NewModel(app.Client, app.SessionEmail())
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	_, err = program.Run()
	return err
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ref-Hub/refhub-cli/internal/ux"
	"github.com/Ref-Hub/refhub-cli/internal/validate"
)

var extensionCmd = &cobra.Command{
	Use:   "extension",
	Short: "Companion commands for the browser extension",
}

var extensionAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Save a page the way the browser extension does",
	Long: `Save a captured page URL into a collection through the extension
endpoint. The server fetches the page title itself.

Examples:
  refhub extension add https://go.dev/blog/error-handling --collection col-123`,
	Args: cobra.ExactArgs(1),
	RunE: runExtensionAdd,
}

func init() {
	extensionCmd.AddCommand(extensionAddCmd)

	extensionAddCmd.Flags().String("collection", "", "Target collection ID")

	rootCmd.AddCommand(extensionCmd)
}

func runExtensionAdd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	pageURL := args[0]
	if err := validate.Link(pageURL); err != nil {
		return err
	}

	collectionID, _ := cmd.Flags().GetString("collection")
	if err := validate.Required("collection", collectionID); err != nil {
		return err
	}

	ref, err := app.Client.AddFromExtension(cmd.Context(), pageURL, collectionID)
	if err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Printf("✓ Saved %q (%s)\n", ref.Title, ref.ID)
	return nil
}

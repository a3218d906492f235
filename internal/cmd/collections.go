package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ref-Hub/refhub-cli/internal/api"
	"github.com/Ref-Hub/refhub-cli/internal/share"
	"github.com/Ref-Hub/refhub-cli/internal/ux"
	"github.com/Ref-Hub/refhub-cli/internal/validate"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"col"},
	Short:   "Manage collections",
	Long:    `List, create, rename, and delete reference collections.`,
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your collections",
	Long: `List the collections you own or that were shared with you.

Examples:
  refhub collections list
  refhub collections list --search papers --sort title
  refhub collections list --format json`,
	RunE: runCollectionsList,
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsCreate,
}

var collectionsRenameCmd = &cobra.Command{
	Use:   "rename <collection-id> <title>",
	Short: "Rename a collection",
	Long:  `Rename a collection. Only the owner can rename.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runCollectionsRename,
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <collection-id>...",
	Short: "Delete one or more collections",
	Long: `Delete collections and all references inside them. Only the owner
can delete. Asks for confirmation unless --yes is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCollectionsDelete,
}

func init() {
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsRenameCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)

	collectionsListCmd.Flags().Int("page", 1, "Page number")
	collectionsListCmd.Flags().Int("page-size", 0, "Items per page (0 uses the configured default)")
	collectionsListCmd.Flags().String("sort", "updatedAt", "Sort order: updatedAt, createdAt, title")
	collectionsListCmd.Flags().String("search", "", "Filter by title")

	rootCmd.AddCommand(collectionsCmd)
}

func listParamsFromFlags(cmd *cobra.Command, app *App) api.ListParams {
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	sort, _ := cmd.Flags().GetString("sort")
	search, _ := cmd.Flags().GetString("search")

	if pageSize <= 0 {
		pageSize = app.PageSize()
	}

	return api.ListParams{
		Page:     page,
		PageSize: pageSize,
		Sort:     sort,
		Search:   search,
	}
}

func runCollectionsList(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	resp, err := app.Client.ListCollections(cmd.Context(), listParamsFromFlags(cmd, app))
	if err != nil {
		return ux.EnhanceError(err)
	}

	if !app.TextOutput() {
		formatter, err := app.Formatter()
		if err != nil {
			return err
		}
		return formatter.Format(resp)
	}

	if len(resp.Collections) == 0 {
		fmt.Println("No collections.")
		return nil
	}

	email := app.SessionEmail()
	fmt.Printf("%-26s %-30s %6s  %s\n", "ID", "TITLE", "REFS", "ROLE")
	for i := range resp.Collections {
		col := &resp.Collections[i]
		role := share.Resolve(email, col)
		fmt.Printf("%-26s %-30s %6d  %s\n", col.ID, clipText(col.Title, 30), col.RefCount, role)
	}
	fmt.Printf("\n%d of %d collections (page %d)\n", len(resp.Collections), resp.TotalCount, resp.Page)
	return nil
}

func runCollectionsCreate(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	title := strings.TrimSpace(args[0])
	if err := validate.Required("title", title); err != nil {
		return err
	}

	col, err := app.Client.CreateCollection(cmd.Context(), title)
	if err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Printf("✓ Created collection %q (%s)\n", col.Title, col.ID)
	return nil
}

func runCollectionsRename(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	title := strings.TrimSpace(args[1])
	if err := validate.Required("title", title); err != nil {
		return err
	}

	col, err := app.Client.RenameCollection(cmd.Context(), args[0], title)
	if err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Printf("✓ Renamed collection to %q\n", col.Title)
	return nil
}

func runCollectionsDelete(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	noun := "collection"
	if len(args) > 1 {
		noun = fmt.Sprintf("%d collections", len(args))
	}
	ok, err := app.Confirm(fmt.Sprintf("Delete %s and all contained references?", noun))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}

	if err := app.Client.DeleteCollections(cmd.Context(), args); err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Printf("✓ Deleted %s\n", noun)
	return nil
}

func clipText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

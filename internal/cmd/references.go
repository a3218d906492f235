package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Ref-Hub/refhub-cli/internal/api"
	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
	"github.com/Ref-Hub/refhub-cli/internal/ux"
	"github.com/Ref-Hub/refhub-cli/internal/validate"
)

var refsCmd = &cobra.Command{
	Use:     "refs",
	Aliases: []string{"references"},
	Short:   "Manage references",
	Long:    `List, add, update, delete, and download saved references.`,
}

var refsListCmd = &cobra.Command{
	Use:   "list <collection-id>",
	Short: "List references in a collection",
	Long: `List the references of one collection.

Examples:
  refhub refs list col-123
  refhub refs list col-123 --search golang --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runRefsList,
}

var refsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a reference",
	Long: `Add a reference to a collection. A reference can carry links,
uploaded files, or both. Files are limited to 20MB each and are
checksummed before upload.

Examples:
  refhub refs add --collection col-123 --title "Go spec" --link https://go.dev/ref/spec
  refhub refs add --collection col-123 --title "Paper" --file paper.pdf --keyword research`,
	RunE: runRefsAdd,
}

var refsUpdateCmd = &cobra.Command{
	Use:   "update <reference-id>",
	Short: "Update a reference",
	Long: `Update a reference's metadata or attach more links and files.
Requires the editor role on the collection.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefsUpdate,
}

var refsDeleteCmd = &cobra.Command{
	Use:   "delete <reference-id>...",
	Short: "Delete one or more references",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRefsDelete,
}

var refsDownloadCmd = &cobra.Command{
	Use:   "download <reference-id>",
	Short: "Download a reference's file",
	Long: `Download the file attached to a reference. Without --output the
filename supplied by the server is used.

Examples:
  refhub refs download ref-456
  refhub refs download ref-456 --output ./paper.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runRefsDownload,
}

func init() {
	refsCmd.AddCommand(refsListCmd)
	refsCmd.AddCommand(refsAddCmd)
	refsCmd.AddCommand(refsUpdateCmd)
	refsCmd.AddCommand(refsDeleteCmd)
	refsCmd.AddCommand(refsDownloadCmd)

	refsListCmd.Flags().Int("page", 1, "Page number")
	refsListCmd.Flags().Int("page-size", 0, "Items per page (0 uses the configured default)")
	refsListCmd.Flags().String("sort", "updatedAt", "Sort order: updatedAt, createdAt, title")
	refsListCmd.Flags().String("search", "", "Filter by title or keyword")

	for _, c := range []*cobra.Command{refsAddCmd, refsUpdateCmd} {
		c.Flags().String("collection", "", "Collection ID")
		c.Flags().String("title", "", "Reference title")
		c.Flags().String("memo", "", "Free-form memo")
		c.Flags().StringArray("keyword", nil, "Keyword (repeatable)")
		c.Flags().StringArray("link", nil, "Link URL (repeatable)")
		c.Flags().StringArray("file", nil, "File to upload (repeatable)")
	}

	refsDownloadCmd.Flags().StringP("output", "o", "", "Output path")

	rootCmd.AddCommand(refsCmd)
}

func runRefsList(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	resp, err := app.Client.ListReferences(cmd.Context(), args[0], listParamsFromFlags(cmd, app))
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

	if len(resp.References) == 0 {
		fmt.Println("No references.")
		return nil
	}

	fmt.Printf("%-26s %-30s %-6s %s\n", "ID", "TITLE", "KIND", "DETAIL")
	for _, ref := range resp.References {
		detail := ref.URL
		if detail == "" {
			detail = ref.FileName
		}
		fmt.Printf("%-26s %-30s %-6s %s\n", ref.ID, clipText(ref.Title, 30), ref.Kind, clipText(detail, 40))
	}
	fmt.Printf("\n%d of %d references (page %d)\n", len(resp.References), resp.TotalCount, resp.Page)
	return nil
}

// referenceInputFromFlags validates flags and local files and builds
// the reference payload. Oversized files are rejected here, before any
// bytes go on the wire.
func referenceInputFromFlags(cmd *cobra.Command) (api.ReferenceInput, error) {
	collectionID, _ := cmd.Flags().GetString("collection")
	title, _ := cmd.Flags().GetString("title")
	memo, _ := cmd.Flags().GetString("memo")
	keywords, _ := cmd.Flags().GetStringArray("keyword")
	links, _ := cmd.Flags().GetStringArray("link")
	files, _ := cmd.Flags().GetStringArray("file")

	input := api.ReferenceInput{
		CollectionID: collectionID,
		Title:        title,
		Memo:         memo,
		Keywords:     keywords,
		Links:        links,
	}

	for _, link := range links {
		if err := validate.Link(link); err != nil {
			return input, err
		}
	}

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return input, apperrors.NewFileNotFoundError(path)
		}
		if err := validate.UploadSize(path, info.Size()); err != nil {
			return input, err
		}
		if _, err := validate.UploadKind(filepath.Base(path)); err != nil {
			return input, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return input, apperrors.Wrap(apperrors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", path), err)
		}
		input.Files = append(input.Files, api.Upload{
			Name: filepath.Base(path),
			Data: data,
		})
	}

	return input, nil
}

func runRefsAdd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	input, err := referenceInputFromFlags(cmd)
	if err != nil {
		return err
	}
	if err := validate.Required("collection", input.CollectionID); err != nil {
		return err
	}
	if err := validate.Required("title", input.Title); err != nil {
		return err
	}
	if len(input.Links) == 0 && len(input.Files) == 0 {
		return fmt.Errorf("nothing to save: provide at least one --link or --file")
	}

	ref, err := app.Client.CreateReference(cmd.Context(), input)
	if err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Printf("✓ Added reference %q (%s)\n", ref.Title, ref.ID)
	return nil
}

func runRefsUpdate(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	input, err := referenceInputFromFlags(cmd)
	if err != nil {
		return err
	}

	ref, err := app.Client.UpdateReference(cmd.Context(), args[0], input)
	if err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Printf("✓ Updated reference %q\n", ref.Title)
	return nil
}

func runRefsDelete(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	noun := "reference"
	if len(args) > 1 {
		noun = fmt.Sprintf("%d references", len(args))
	}
	ok, err := app.Confirm(fmt.Sprintf("Delete %s?", noun))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}

	if err := app.Client.DeleteReferences(cmd.Context(), args); err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Printf("✓ Deleted %s\n", noun)
	return nil
}

func runRefsDownload(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	output, _ := cmd.Flags().GetString("output")

	// Download into a temp file next to the destination so a failed
	// transfer never leaves a truncated file under the final name.
	dir := "."
	if output != "" {
		dir = filepath.Dir(output)
	}
	tmp, err := os.CreateTemp(dir, ".refhub-download-*")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeFileWriteFailed, "failed to create download file", err)
	}
	defer os.Remove(tmp.Name())

	filename, err := app.Client.DownloadReference(cmd.Context(), args[0], tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ux.EnhanceError(err)
	}

	if output == "" {
		if filename == "" {
			filename = args[0]
		}
		output = filepath.Join(dir, filepath.Base(filename))
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeFileWriteFailed, "failed to move download into place", err)
	}

	fmt.Printf("✓ Downloaded to %s\n", output)
	return nil
}

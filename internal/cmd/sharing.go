package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ref-Hub/refhub-cli/internal/api"
	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
	"github.com/Ref-Hub/refhub-cli/internal/share"
	"github.com/Ref-Hub/refhub-cli/internal/tui"
	"github.com/Ref-Hub/refhub-cli/internal/ux"
	"github.com/Ref-Hub/refhub-cli/internal/validate"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Manage collection sharing",
	Long: `Inspect and change who can access a collection.

Roles:
  owner   created the collection, full control
  editor  may add and edit references
  viewer  may browse references

Only the owner can change sharing. Role checks here mirror what the
server enforces; the server remains the authority.`,
}

var shareListCmd = &cobra.Command{
	Use:   "list <collection-id>",
	Short: "Show who has access to a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareList,
}

var shareInviteCmd = &cobra.Command{
	Use:   "invite <collection-id> <email>",
	Short: "Invite a collaborator",
	Long: `Invite a user to a collection with the given role.

Examples:
  refhub share invite col-123 jane@example.com --role editor`,
	Args: cobra.ExactArgs(2),
	RunE: runShareInvite,
}

var shareRoleCmd = &cobra.Command{
	Use:   "role <collection-id> <email> <role>",
	Short: "Change a collaborator's role",
	Args:  cobra.ExactArgs(3),
	RunE:  runShareRole,
}

var shareRemoveCmd = &cobra.Command{
	Use:   "remove <collection-id> <email>",
	Short: "Remove a collaborator",
	Args:  cobra.ExactArgs(2),
	RunE:  runShareRemove,
}

var sharePrivateCmd = &cobra.Command{
	Use:   "private <collection-id>",
	Short: "Remove all collaborators",
	Long: `Make a collection private again by removing every collaborator.
Idempotent: running it on an already-private collection succeeds.`,
	Args: cobra.ExactArgs(1),
	RunE: runSharePrivate,
}

func init() {
	shareCmd.AddCommand(shareListCmd)
	shareCmd.AddCommand(shareInviteCmd)
	shareCmd.AddCommand(shareRoleCmd)
	shareCmd.AddCommand(shareRemoveCmd)
	shareCmd.AddCommand(sharePrivateCmd)

	shareInviteCmd.Flags().String("role", "viewer", "Role for the invitee: viewer or editor")

	rootCmd.AddCommand(shareCmd)
}

// resolveInviteRole returns the role for a new collaborator. When the
// flag was not given and the session is interactive, the user picks
// from a select prompt; otherwise the flag default applies.
func resolveInviteRole(cmd *cobra.Command) (string, error) {
	role, err := cmd.Flags().GetString("role")
	if err != nil {
		return "", err
	}
	if cmd.Flags().Changed("role") || !tui.ShouldPrompt() {
		return role, nil
	}
	return tui.PromptForSelect("Role for the invitee", []string{"viewer", "editor"})
}

// requireOwner checks the session user's role before issuing an
// owner-only sharing call, mirroring the server's rule locally.
func requireOwner(app *App, state *api.SharingState, action string) error {
	role := share.ResolveSharing(app.SessionEmail(), state)
	if !role.Can(share.ActionShare) {
		return apperrors.NewRoleDeniedError(action)
	}
	return nil
}

func printSharingState(app *App, state *api.SharingState) error {
	if !app.TextOutput() {
		formatter, err := app.Formatter()
		if err != nil {
			return err
		}
		return formatter.Format(state)
	}

	if !state.IsShared {
		fmt.Println("Private collection.")
		fmt.Printf("Owner: %s\n", state.CreatorEmail)
		return nil
	}

	fmt.Printf("Owner: %s\n\n", state.CreatorEmail)
	fmt.Printf("%-40s %s\n", "EMAIL", "ROLE")
	for _, su := range state.SharedUsers {
		fmt.Printf("%-40s %s\n", su.Email, su.Role)
	}
	return nil
}

func runShareList(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	state, err := app.Client.GetSharing(cmd.Context(), args[0])
	if err != nil {
		return ux.EnhanceError(err)
	}

	return printSharingState(app, state)
}

func runShareInvite(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	collectionID, email := args[0], args[1]
	role, err := resolveInviteRole(cmd)
	if err != nil {
		return err
	}

	if err := validate.Email(email); err != nil {
		return err
	}
	if r := share.ParseRole(role); r != share.RoleViewer && r != share.RoleEditor {
		return fmt.Errorf("invalid role %q: collaborators are viewer or editor", role)
	}

	current, err := app.Client.GetSharing(cmd.Context(), collectionID)
	if err != nil {
		return ux.EnhanceError(err)
	}
	if err := requireOwner(app, current, "invite collaborators"); err != nil {
		return ux.EnhanceError(err)
	}

	state, err := app.Client.InviteUser(cmd.Context(), collectionID, email, role)
	if err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Printf("✓ Invited %s as %s\n", email, role)
	return printSharingState(app, state)
}

func runShareRole(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	collectionID, email, role := args[0], args[1], args[2]

	if err := validate.Email(email); err != nil {
		return err
	}
	if r := share.ParseRole(role); r != share.RoleViewer && r != share.RoleEditor {
		return fmt.Errorf("invalid role %q: collaborators are viewer or editor", role)
	}

	current, err := app.Client.GetSharing(cmd.Context(), collectionID)
	if err != nil {
		return ux.EnhanceError(err)
	}
	if err := requireOwner(app, current, "change collaborator roles"); err != nil {
		return ux.EnhanceError(err)
	}

	state, err := app.Client.ChangeRole(cmd.Context(), collectionID, email, role)
	if err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Printf("✓ %s is now %s\n", email, role)
	return printSharingState(app, state)
}

func runShareRemove(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	collectionID, email := args[0], args[1]

	current, err := app.Client.GetSharing(cmd.Context(), collectionID)
	if err != nil {
		return ux.EnhanceError(err)
	}

	// Removing yourself is leaving, which viewers and editors may do.
	// Removing anyone else is owner-only.
	role := share.ResolveSharing(app.SessionEmail(), current)
	leaving := email == app.SessionEmail()
	if leaving {
		if !role.Can(share.ActionLeave) {
			return ux.EnhanceError(apperrors.NewRoleDeniedError("leave this collection"))
		}
	} else if !role.Can(share.ActionShare) {
		return ux.EnhanceError(apperrors.NewRoleDeniedError("remove collaborators"))
	}

	state, err := app.Client.RemoveUser(cmd.Context(), collectionID, email)
	if err != nil {
		return ux.EnhanceError(err)
	}

	if leaving {
		fmt.Println("✓ Left the collection")
		return nil
	}
	fmt.Printf("✓ Removed %s\n", email)
	return printSharingState(app, state)
}

func runSharePrivate(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(cmd.Context()); err != nil {
		return ux.EnhanceError(err)
	}

	current, err := app.Client.GetSharing(cmd.Context(), args[0])
	if err != nil {
		return ux.EnhanceError(err)
	}
	if err := requireOwner(app, current, "make the collection private"); err != nil {
		return ux.EnhanceError(err)
	}

	ok, err := app.Confirm("Remove all collaborators from this collection?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}

	if _, err := app.Client.SetPrivate(cmd.Context(), args[0]); err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Println("✓ Collection is now private")
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ref-Hub/refhub-cli/internal/session"
	"github.com/Ref-Hub/refhub-cli/internal/tui"
	"github.com/Ref-Hub/refhub-cli/internal/ux"
	"github.com/Ref-Hub/refhub-cli/internal/validate"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your RefHub session",
	Long:  `Log in and out of RefHub, create an account, and inspect the current session.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to RefHub",
	Long: `Authenticate with RefHub and persist the session locally.

With --remember, the session survives across invocations and is
silently refreshed when the access token expires.

Examples:
  refhub auth login
  refhub auth login --email user@example.com --remember`,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear stored credentials",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long: `Show the current authentication status and user information.

Examples:
  refhub auth status`,
	RunE: runAuthStatus,
}

var authSignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new RefHub account",
	Long: `Create a new RefHub account.

After signing up, verify your email address with the code RefHub
sends you, then log in.

Examples:
  refhub auth signup --name "Jane Doe" --email jane@example.com`,
	RunE: runAuthSignup,
}

var authPasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Reset your password",
}

var authPasswordResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Request a password reset code",
	Long: `Ask RefHub to email a password reset code to your address.

Examples:
  refhub auth password reset --email jane@example.com`,
	RunE: runAuthPasswordReset,
}

var authPasswordConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Set a new password with the emailed code",
	Long: `Complete the password reset flow with the code from the reset email.

Examples:
  refhub auth password confirm --email jane@example.com --code 123456`,
	RunE: runAuthPasswordConfirm,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authSignupCmd)
	authCmd.AddCommand(authPasswordCmd)
	authPasswordCmd.AddCommand(authPasswordResetCmd)
	authPasswordCmd.AddCommand(authPasswordConfirmCmd)

	authLoginCmd.Flags().String("email", "", "Email address")
	authLoginCmd.Flags().String("password", "", "Password (prompted when omitted)")
	authLoginCmd.Flags().Bool("remember", false, "Keep the session across invocations")

	authSignupCmd.Flags().String("name", "", "Display name")
	authSignupCmd.Flags().String("email", "", "Email address")
	authSignupCmd.Flags().String("password", "", "Password (prompted when omitted)")

	authPasswordResetCmd.Flags().String("email", "", "Email address")

	authPasswordConfirmCmd.Flags().String("email", "", "Email address")
	authPasswordConfirmCmd.Flags().String("code", "", "Verification code from the reset email")
	authPasswordConfirmCmd.Flags().String("password", "", "New password (prompted when omitted)")

	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	remember, _ := cmd.Flags().GetBool("remember")

	if email == "" {
		email, err = tui.PromptForString(tui.Prompt{Message: "Email", Required: true})
		if err != nil {
			return err
		}
	}
	if err := validate.Email(email); err != nil {
		return err
	}

	if password == "" {
		password, err = tui.PromptForPassword("Password")
		if err != nil {
			return err
		}
	}
	if err := validate.Required("password", password); err != nil {
		return err
	}

	user, err := app.Session.Login(cmd.Context(), email, password, remember)
	if err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Printf("✓ Logged in as %s\n", user.Email)
	if remember {
		fmt.Println("Session will be kept across invocations.")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	if err := app.Session.Logout(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("✓ Logged out")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	state := app.Session.Initialize(cmd.Context())
	if state != session.StateAuthenticated {
		fmt.Println("Not logged in.")
		fmt.Println("Use 'refhub auth login' to authenticate.")
		return nil
	}

	user := app.Session.CurrentUser()

	if !app.TextOutput() {
		formatter, err := app.Formatter()
		if err != nil {
			return err
		}
		return formatter.Format(map[string]any{
			"state": state.String(),
			"user":  user,
		})
	}

	fmt.Println("Logged in")
	if user != nil {
		fmt.Printf("Email: %s\n", user.Email)
		if user.Name != "" {
			fmt.Printf("Name:  %s\n", user.Name)
		}
	}
	if app.Store.RememberMe() {
		fmt.Println("Session is remembered across invocations.")
	}
	return nil
}

func runAuthSignup(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if name == "" {
		name, err = tui.PromptForString(tui.Prompt{Message: "Name", Required: true})
		if err != nil {
			return err
		}
	}
	if email == "" {
		email, err = tui.PromptForString(tui.Prompt{Message: "Email", Required: true})
		if err != nil {
			return err
		}
	}
	if err := validate.Email(email); err != nil {
		return err
	}

	if password == "" {
		password, err = tui.PromptForPassword("Password")
		if err != nil {
			return err
		}
	}
	if err := validate.Password(password); err != nil {
		return err
	}

	resp, err := app.Client.Signup(cmd.Context(), name, email, password)
	if err != nil {
		return ux.EnhanceError(err)
	}

	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	fmt.Printf("✓ Account created. Check %s for a verification email, then run 'refhub auth login'.\n", email)
	return nil
}

func runAuthPasswordReset(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		email, err = tui.PromptForString(tui.Prompt{Message: "Email", Required: true})
		if err != nil {
			return err
		}
	}
	if err := validate.Email(email); err != nil {
		return err
	}

	resp, err := app.Client.RequestPasswordReset(cmd.Context(), email)
	if err != nil {
		return ux.EnhanceError(err)
	}

	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	fmt.Printf("✓ Reset code sent to %s\n", email)
	return nil
}

func runAuthPasswordConfirm(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	code, _ := cmd.Flags().GetString("code")
	password, _ := cmd.Flags().GetString("password")

	if email == "" {
		email, err = tui.PromptForString(tui.Prompt{Message: "Email", Required: true})
		if err != nil {
			return err
		}
	}
	if err := validate.Email(email); err != nil {
		return err
	}
	if code == "" {
		code, err = tui.PromptForString(tui.Prompt{Message: "Verification code", Required: true})
		if err != nil {
			return err
		}
	}
	if password == "" {
		password, err = tui.PromptForPassword("New password")
		if err != nil {
			return err
		}
	}
	if err := validate.Password(password); err != nil {
		return err
	}

	resp, err := app.Client.ResetPassword(cmd.Context(), email, code, password)
	if err != nil {
		return ux.EnhanceError(err)
	}

	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	fmt.Println("✓ Password updated. Log in with 'refhub auth login'.")
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ref-Hub/refhub-cli/internal/api"
	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
	"github.com/Ref-Hub/refhub-cli/internal/log"
	"github.com/Ref-Hub/refhub-cli/internal/session"
	"github.com/Ref-Hub/refhub-cli/internal/tokenstore"
	"github.com/Ref-Hub/refhub-cli/internal/tui"
	"github.com/Ref-Hub/refhub-cli/internal/ux"
)

const defaultBaseURL = "https://api.refhub.io"

// App bundles the wired dependencies a command needs: configuration,
// the token store, the API client, and the session manager.
type App struct {
	Ctx     *CommandContext
	Config  *GlobalConfig
	Store   *tokenstore.FileStore
	Client  *api.Client
	Session *session.Manager
	Logger  *log.Logger
}

// newApp builds the dependency graph for one command invocation
func newApp(cmd *cobra.Command) (*App, error) {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to create command context: %w", err)
	}

	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := buildLogger(cmdCtx, config)

	sealer, err := buildSealer(config)
	if err != nil {
		return nil, err
	}

	storePath, err := tokenstore.DefaultPath()
	if err != nil {
		return nil, err
	}
	store := tokenstore.NewFileStore(storePath, sealer)

	client := api.NewClient(resolveBaseURL(cmdCtx, config), store, logger)
	sess := session.NewManager(store, client, logger)

	return &App{
		Ctx:     cmdCtx,
		Config:  config,
		Store:   store,
		Client:  client,
		Session: sess,
		Logger:  logger,
	}, nil
}

// resolveBaseURL picks the API base URL. Flag beats environment beats
// config file.
func resolveBaseURL(cmdCtx *CommandContext, config *GlobalConfig) string {
	if cmdCtx.APIURL != "" {
		return cmdCtx.APIURL
	}
	if env := os.Getenv("REFHUB_API_URL"); env != "" {
		return env
	}
	if config.API.BaseURL != "" {
		return config.API.BaseURL
	}
	return defaultBaseURL
}

func buildLogger(cmdCtx *CommandContext, config *GlobalConfig) *log.Logger {
	cfg := log.DefaultConfig()

	if config.Logging.Level != "" {
		cfg.Level = log.ParseLevel(config.Logging.Level)
	}
	if cmdCtx.LogLevel != "" {
		cfg.Level = log.ParseLevel(cmdCtx.LogLevel)
	}
	if cmdCtx.Verbose {
		// --verbose also turns on source locations.
		cfg = log.DebugConfig()
	}
	if cmdCtx.Quiet {
		cfg.Level = log.LevelError
	}

	logger := log.New(cfg)
	log.SetDefaultLogger(logger)
	return logger
}

// buildSealer returns the credential sealer when sealing is enabled,
// nil otherwise.
func buildSealer(config *GlobalConfig) (*tokenstore.Sealer, error) {
	passphrase := os.Getenv("REFHUB_SEAL_KEY")
	if !config.Security.SealCredentials && passphrase == "" {
		return nil, nil
	}
	return tokenstore.NewSealer([]byte(passphrase))
}

// RequireAuth initializes the session and fails when no authenticated
// session could be established.
func (a *App) RequireAuth(ctx context.Context) error {
	if a.Session.Initialize(ctx) != session.StateAuthenticated {
		return apperrors.NewNotAuthenticatedError()
	}
	return nil
}

// Formatter builds the output formatter from flags and config defaults
func (a *App) Formatter() (ux.Formatter, error) {
	format := a.Ctx.Format
	if format == "" {
		format = a.Config.Defaults.Format
	}
	return ux.NewFormatter(format, &ux.FormatterOptions{
		NoColor: a.Ctx.NoColor || a.Config.Defaults.NoColor,
	})
}

// TextOutput reports whether the effective format is plain text
func (a *App) TextOutput() bool {
	format := a.Ctx.Format
	if format == "" {
		format = a.Config.Defaults.Format
	}
	return format == "" || format == "text"
}

// PageSize returns the configured list page size
func (a *App) PageSize() int {
	if a.Config.Defaults.PageSize > 0 {
		return a.Config.Defaults.PageSize
	}
	return 20
}

// Confirm asks for confirmation unless --yes was given. A
// non-interactive session without --yes refuses rather than assumes.
func (a *App) Confirm(message string) (bool, error) {
	if a.Ctx.AssumeYes {
		return true, nil
	}
	if !tui.ShouldPrompt() {
		return false, fmt.Errorf("confirmation required; re-run with --yes")
	}
	return tui.PromptForConfirmation(message, false)
}

// SessionEmail returns the authenticated user's email, or empty
func (a *App) SessionEmail() string {
	if user := a.Session.CurrentUser(); user != nil {
		return user.Email
	}
	return ""
}

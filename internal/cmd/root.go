// Package cmd wires the refhub command tree.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "refhub",
	Short: "Personal reference and bookmark manager",
	Long: `refhub is the command-line client for RefHub, a personal reference
service. It manages collections of saved links, images, PDFs, and
files, shares collections with collaborators, and keeps your login
session alive across invocations by silently refreshing tokens.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellation context so
// an interrupt propagates into in-flight requests.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("format", "", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("api-url", "", "RefHub API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Assume yes for confirmation prompts")
}

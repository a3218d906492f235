package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ref-Hub/refhub-cli/internal/ux"
	"github.com/Ref-Hub/refhub-cli/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.GetInfo()

	short, _ := cmd.Flags().GetBool("short")
	if short {
		fmt.Println(info.Short())
		return nil
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if cmdCtx.Format == "json" || cmdCtx.Format == "yaml" {
		formatter, err := ux.NewFormatter(cmdCtx.Format, nil)
		if err != nil {
			return err
		}
		return formatter.Format(info)
	}

	fmt.Println(info.String())
	return nil
}

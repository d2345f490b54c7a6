package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/ciclowiki/internal/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

var (
	versionFormat *formatValue
	versionShort  bool
)

func init() {
	rootCmd.AddCommand(versionCmd)

	versionFormat = addFormatFlag(versionCmd, FormatText, FormatText, FormatJSON, FormatYAML)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show the version number only")
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.GetBuildInfo()
	out := cmd.OutOrStdout()

	switch {
	case versionShort:
		_, err := fmt.Fprintln(out, info.Version)
		return err
	case versionFormat.String() == FormatText:
		_, err := fmt.Fprintln(out, info.String())
		return err
	default:
		return encode(out, versionFormat.String(), info)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/ciclowiki/internal/errors"
	"github.com/conneroisu/ciclowiki/internal/pages"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report links to unknown pages",
	Long: `Load the articles and report every data-page link whose target is not
a known page. Such links still work, falling back to the home page, but
are almost always typos.

Exits non-zero when a dangling link is found.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}

	dangling, err := pages.CheckLinks(lib)
	if err != nil {
		return errors.NewContentError(errors.ErrCodeContentLoad, "failed to scan links", err)
	}

	out := cmd.OutOrStdout()
	for _, d := range dangling {
		fmt.Fprintln(out, d.String())
	}
	if len(dangling) > 0 {
		return errors.NewValidationError(errors.ErrCodeDanglingLink,
			fmt.Sprintf("%d link(s) to unknown pages", len(dangling)))
	}

	fmt.Fprintf(out, "%d pages, no dangling links\n", lib.Count())
	return nil
}

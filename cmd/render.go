package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/ciclowiki/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render <page>",
	Short: "Print the markup of one page",
	Long: `Print the article fragment the page controller would swap into the
content region. Unknown keys print the home article, as navigation does.

Examples:
  ciclowiki render cascada          # article fragment
  ciclowiki render rad --full       # complete HTML document`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var renderFull bool

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().BoolVar(&renderFull, "full", false, "render the complete page shell")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}

	fragments := render.NewFragments(lib, newLogger(cfg))
	out := cmd.OutOrStdout()

	if renderFull {
		return fragments.Page(args[0], render.ServerSite()).Render(cmd.Context(), out)
	}

	markup, found := fragments.Fragment(args[0])
	if !found {
		fmt.Fprintf(cmd.ErrOrStderr(), "unknown page %q, showing the home page\n", args[0])
	}
	_, err = fmt.Fprintln(out, markup)
	return err
}

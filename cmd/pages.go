package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/conneroisu/ciclowiki/internal/render"
	"github.com/conneroisu/ciclowiki/internal/server"
)

var pagesCmd = &cobra.Command{
	Use:     "pages",
	Aliases: []string{"p", "list"},
	Short:   "List the wiki pages",
	Long: `List every page with its key, breadcrumb label, section and title.

Examples:
  ciclowiki pages                  # table in sidebar order
  ciclowiki pages --sort label     # alphabetical by label (Spanish collation)
  ciclowiki pages -f json          # machine-readable`,
	RunE: runPages,
}

var (
	pagesFormat *formatValue
	pagesSort   string
)

func init() {
	rootCmd.AddCommand(pagesCmd)

	pagesFormat = addFormatFlag(pagesCmd, FormatTable, FormatTable, FormatJSON, FormatYAML)
	pagesCmd.Flags().StringVar(&pagesSort, "sort", "order", "sort by order (sidebar) or label")
}

func runPages(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}

	entries := server.PageIndex(lib, render.ServerSite())
	switch pagesSort {
	case "order":
	case "label":
		sortByLabel(entries)
	default:
		return fmt.Errorf("invalid sort %q, must be order or label", pagesSort)
	}

	return writePages(cmd.OutOrStdout(), pagesFormat.String(), entries)
}

// sortByLabel orders entries the way a Spanish reader expects, so that
// "Información" sorts with the I's rather than after "Z".
func sortByLabel(entries []server.PageEntry) {
	c := collate.New(language.Spanish, collate.IgnoreCase)
	labels := make([]string, len(entries))
	byLabel := make(map[string]server.PageEntry, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
		byLabel[e.Label] = e
	}
	c.SortStrings(labels)
	for i, l := range labels {
		entries[i] = byLabel[l]
	}
}

func writePages(w io.Writer, format string, entries []server.PageEntry) error {
	if format != FormatTable {
		return encode(w, format, entries)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tSECTION\tTITLE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, e.Label, e.Section, e.Title)
	}
	return tw.Flush()
}

package cmd

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/ciclowiki/internal/errors"
	"github.com/conneroisu/ciclowiki/internal/logging"
	"github.com/conneroisu/ciclowiki/internal/pages"
	"github.com/conneroisu/ciclowiki/internal/render"
	"github.com/conneroisu/ciclowiki/internal/validation"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a static copy of the wiki",
	Long: `Write every page as a standalone HTML file together with the
stylesheets. The static copy has no live runtime: links between pages are
plain links to <page>.html, and the sidebar is always expanded.

Examples:
  ciclowiki export --out dist
  ciclowiki export --out public --base-url https://wiki.example.com`,
	RunE: runExport,
}

var (
	exportOut     string
	exportBaseURL string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "dist", "output directory")
	exportCmd.Flags().StringVar(&exportBaseURL, "base-url", "", "public URL of the site; writes sitemap.xml when set")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}

	defaultPage, _ := pages.Parse(cfg.Browser.DefaultPage)
	written, err := exportSite(cmd.Context(), lib, exportOptions{
		Dir:         exportOut,
		BaseURL:     exportBaseURL,
		DefaultPage: defaultPage,
		Logger:      newLogger(cfg),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d files to %s\n", len(written), exportOut)
	return nil
}

type exportOptions struct {
	Dir         string
	BaseURL     string
	DefaultPage pages.Key
	Logger      logging.Logger
}

const assetsDir = "assets"

// staticSite links pages as sibling files and omits the runtime script.
func staticSite() render.Site {
	return render.Site{
		Title:  render.SiteTitle,
		Assets: assetsDir + "/",
		Href:   pageFile,
	}
}

func pageFile(k pages.Key) string {
	return k.String() + ".html"
}

// exportSite renders every page concurrently and writes the site. It returns
// the written paths relative to opts.Dir.
func exportSite(ctx context.Context, lib *pages.Library, opts exportOptions) ([]string, error) {
	if err := validation.ValidateOutputDir(opts.Dir); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidPath, err.Error())
	}
	if err := os.MkdirAll(filepath.Join(opts.Dir, assetsDir), 0o755); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeExport, "failed to create output directory", err)
	}

	fragments := render.NewFragments(lib, opts.Logger)
	site := staticSite()
	keys := pages.All()
	files := make([]string, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, k := range keys {
		g.Go(func() error {
			markup, err := renderStatic(gctx, fragments.Page(k.String(), site))
			if err != nil {
				return errors.NewInternalError(errors.ErrCodeRender, "failed to render page", err).WithPage(k.String())
			}
			files[i] = pageFile(k)
			return writeFile(opts.Dir, files[i], []byte(markup))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index, err := os.ReadFile(filepath.Join(opts.Dir, pageFile(opts.DefaultPage)))
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeExport, "failed to read default page", err)
	}
	if err := writeFile(opts.Dir, "index.html", index); err != nil {
		return nil, err
	}
	files = append(files, "index.html")

	assets, err := copyAssets(opts.Dir)
	if err != nil {
		return nil, err
	}
	files = append(files, assets...)

	if opts.BaseURL != "" {
		sitemap, err := buildSitemap(opts.BaseURL, keys, time.Now().UTC())
		if err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeExport, "failed to build sitemap", err)
		}
		if err := writeFile(opts.Dir, "sitemap.xml", sitemap); err != nil {
			return nil, err
		}
		files = append(files, "sitemap.xml")
	}

	return files, nil
}

// renderStatic renders a page shell and points every data-page link at the
// page's file, since there is no runtime to intercept the clicks.
func renderStatic(ctx context.Context, page templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := page.Render(ctx, &buf); err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", err
	}
	doc.Find("a[data-page]").Each(func(_ int, a *goquery.Selection) {
		k, _ := pages.Parse(a.AttrOr("data-page", ""))
		a.SetAttr("href", pageFile(k))
	})
	return goquery.OuterHtml(doc.Selection)
}

func copyAssets(dir string) ([]string, error) {
	assets := render.Assets()
	var out []string
	for _, name := range render.AssetNames() {
		// The runtime script is useless without a server.
		if strings.HasSuffix(name, ".js") {
			continue
		}
		data, err := fs.ReadFile(assets, name)
		if err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeExport, "failed to read asset "+name, err)
		}
		rel := filepath.Join(assetsDir, name)
		if err := writeFile(dir, rel, data); err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

func writeFile(dir, rel string, data []byte) error {
	if err := os.WriteFile(filepath.Join(dir, rel), data, 0o644); err != nil {
		return errors.NewInternalError(errors.ErrCodeExport, "failed to write "+rel, err)
	}
	return nil
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func buildSitemap(baseURL string, keys []pages.Key, now time.Time) ([]byte, error) {
	if err := validation.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	base := strings.TrimRight(baseURL, "/")

	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, k := range keys {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     base + "/" + pageFile(k),
			LastMod: now.Format("2006-01-02"),
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

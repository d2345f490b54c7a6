package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/ciclowiki/internal/errors"
	"github.com/conneroisu/ciclowiki/internal/pages"
	"github.com/conneroisu/ciclowiki/internal/server"
)

// execute runs the root command with args and returns stdout and stderr.
// Flag values persist on the global commands between runs, so they are
// reset first.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func loadTestLibrary(t *testing.T) *pages.Library {
	t.Helper()
	lib := pages.NewLibrary(pages.Embedded())
	require.NoError(t, lib.Load())
	return lib
}

func TestPagesTable(t *testing.T) {
	out, _, err := execute(t, "pages")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(pages.All())+1)
	assert.True(t, strings.HasPrefix(lines[0], "KEY"))
	assert.True(t, strings.HasPrefix(lines[1], "home"))
	assert.Contains(t, out, "Modelo en Cascada")
}

func TestPagesJSONByLabel(t *testing.T) {
	out, _, err := execute(t, "pages", "--format", "json", "--sort", "label")
	require.NoError(t, err)

	var entries []server.PageEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, len(pages.All()))

	assert.Equal(t, "ciclo-vida", entries[0].Key)
	assert.Equal(t, "docente", entries[1].Key, "Información sorts before Inicio")
	assert.Equal(t, "home", entries[2].Key)
	assert.Equal(t, "rad", entries[len(entries)-1].Key)
}

func TestPagesYAML(t *testing.T) {
	out, _, err := execute(t, "pages", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "- key: home")
	assert.Contains(t, out, "section: Modelos")
}

func TestPagesRejectsBadFlags(t *testing.T) {
	_, _, err := execute(t, "pages", "--format", "csv")
	assert.Error(t, err)

	_, _, err = execute(t, "pages", "--sort", "size")
	assert.Error(t, err)
}

func TestRenderFragment(t *testing.T) {
	out, stderr, err := execute(t, "render", "cascada")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, out, `data-key="cascada"`)
	assert.Contains(t, out, "Modelo Lineal Secuencial (Cascada)")
	assert.NotContains(t, out, "<html")
}

func TestRenderUnknownPage(t *testing.T) {
	out, stderr, err := execute(t, "render", "foo")
	require.NoError(t, err)
	assert.Contains(t, stderr, `unknown page "foo"`)
	assert.Contains(t, out, `data-key="home"`)
}

func TestRenderFull(t *testing.T) {
	out, _, err := execute(t, "render", "rad", "--full")
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `id="contentBody"`)
}

func TestCheckClean(t *testing.T) {
	out, _, err := execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "9 pages, no dangling links")
}

func TestCheckReportsDanglingLinks(t *testing.T) {
	dir := t.TempDir()
	home := "---\nkey: home\ntitle: Inicio\n---\n<a href=\"#nope\" data-page=\"nope\">roto</a>\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.md"), []byte(home), 0o600))

	out, _, err := execute(t, "check", "--content-dir", dir)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeValidation, errors.TypeOf(err))
	assert.Contains(t, out, `"nope"`)
}

func TestVersionFormats(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")

	out, _, err = execute(t, "version", "-f", "json")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "go_version")

	out, _, err = execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestExportSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")

	files, err := exportSite(t.Context(), loadTestLibrary(t), exportOptions{
		Dir:         dir,
		BaseURL:     "https://wiki.example.com/",
		DefaultPage: pages.Home,
	})
	require.NoError(t, err)

	for _, k := range pages.All() {
		assert.FileExists(t, filepath.Join(dir, k.String()+".html"))
	}
	assert.FileExists(t, filepath.Join(dir, "index.html"))
	assert.FileExists(t, filepath.Join(dir, "assets", "wiki.css"))
	assert.FileExists(t, filepath.Join(dir, "assets", "content.css"))
	assert.NoFileExists(t, filepath.Join(dir, "assets", "wiki.js"))
	assert.Contains(t, files, "sitemap.xml")

	f, err := os.Open(filepath.Join(dir, "cascada.html"))
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)

	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Equal(t, "ciclo-vida.html", doc.Find("a.back-button").AttrOr("href", ""))
	assert.Equal(t, "rad.html", doc.Find(`.nav-link[data-page="rad"]`).AttrOr("href", ""))
	assert.True(t, doc.Find(`.nav-link[data-page="cascada"]`).HasClass("active"))
	assert.Equal(t, "assets/wiki.css", doc.Find(`link[href$="wiki.css"]`).AttrOr("href", ""))

	sitemap, err := os.ReadFile(filepath.Join(dir, "sitemap.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(sitemap), "<loc>https://wiki.example.com/cascada.html</loc>")
}

func TestExportRejectsUnsafeDir(t *testing.T) {
	_, err := exportSite(t.Context(), loadTestLibrary(t), exportOptions{Dir: "../escape"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeValidation, errors.TypeOf(err))
}

func TestBuildSitemapRejectsBadURL(t *testing.T) {
	_, err := buildSitemap("javascript:alert(1)", pages.All(), time.Now())
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	f := newFormatValue(FormatTable, FormatTable, FormatJSON)
	assert.Equal(t, "table", f.String())
	assert.Equal(t, "format", f.Type())

	require.NoError(t, f.Set(" JSON "))
	assert.Equal(t, "json", f.String())
	assert.Error(t, f.Set("xml"))
	assert.Equal(t, "json", f.String())
}

func TestEncodeUnsupported(t *testing.T) {
	assert.Error(t, encode(&bytes.Buffer{}, "toml", struct{}{}))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, 0},
		{"dangling links", errors.NewValidationError(errors.ErrCodeDanglingLink, "x"), 2},
		{"bad config", errors.NewConfigError(errors.ErrCodeConfigLoad, "x", nil), 3},
		{"unreadable content", errors.NewContentError(errors.ErrCodeContentLoad, "x", nil), 4},
		{"port in use", errors.NewNetworkError(errors.ErrCodeServerStart, "x", nil), 5},
		{"wrapped validation", fmt.Errorf("check: %w", errors.NewValidationError(errors.ErrCodeDanglingLink, "x")), 2},
		{"plain error", fmt.Errorf("unknown flag: --nope"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestExitCodeForCommands(t *testing.T) {
	dir := t.TempDir()
	home := "---\nkey: home\ntitle: Inicio\n---\n<a href=\"#nope\" data-page=\"nope\">roto</a>\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.md"), []byte(home), 0o600))

	_, _, err := execute(t, "check", "--content-dir", dir)
	assert.Equal(t, 2, ExitCode(err))

	_, _, err = execute(t, "pages", "--format", "csv")
	assert.Equal(t, 1, ExitCode(err))
}

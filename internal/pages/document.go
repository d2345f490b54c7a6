package pages

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// Document is one article of the wiki. Documents are immutable once parsed.
type Document struct {
	Key       Key
	Title     string
	Icon      string
	Back      Key
	HasBack   bool
	BackLabel string
	Summary   string
	// Body is sanitized HTML rendered from the markdown source.
	Body string
	// Source is the file the document was read from, for diagnostics.
	Source string
	Hash   string
}

type frontMatter struct {
	Key       string `yaml:"key"`
	Title     string `yaml:"title"`
	Icon      string `yaml:"icon"`
	Back      string `yaml:"back"`
	BackLabel string `yaml:"back_label"`
	Summary   string `yaml:"summary"`
}

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// Layout blocks (cards, phase lists) are written as raw HTML and
		// filtered by the sanitizer afterwards.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	sanitizer = newContentPolicy()

	pageAttr = regexp.MustCompile(`^[a-z0-9-]+$`)
)

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("div", "section", "i", "img", "h1", "h2", "h3", "h4")
	policy.AllowAttrs("class").Globally()
	policy.AllowAttrs("data-page").Matching(pageAttr).Globally()
	policy.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	policy.AllowAttrs("alt", "src", "loading").OnElements("img")
	policy.RequireNoFollowOnLinks(false)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// ParseDocument reads a markdown article with a YAML front matter header.
func ParseDocument(source string, data []byte) (*Document, error) {
	fm, body := splitFrontMatter(string(data))
	if fm == "" {
		return nil, fmt.Errorf("%s: missing front matter", source)
	}

	var meta frontMatter
	if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
		return nil, fmt.Errorf("%s: parse front matter: %w", source, err)
	}

	key, ok := Parse(meta.Key)
	if !ok {
		return nil, fmt.Errorf("%s: unknown page key %q", source, meta.Key)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return nil, fmt.Errorf("%s: title is required", source)
	}

	doc := &Document{
		Key:       key,
		Title:     strings.TrimSpace(meta.Title),
		Icon:      firstNonEmpty(meta.Icon, key.Icon()),
		BackLabel: strings.TrimSpace(meta.BackLabel),
		Summary:   strings.TrimSpace(meta.Summary),
		Source:    source,
	}
	if meta.Back != "" {
		back, ok := Parse(meta.Back)
		if !ok {
			return nil, fmt.Errorf("%s: unknown back link %q", source, meta.Back)
		}
		doc.Back = back
		doc.HasBack = true
		if doc.BackLabel == "" {
			doc.BackLabel = "Volver a " + back.Label()
		}
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("%s: render markdown: %w", source, err)
	}
	doc.Body = sanitizer.Sanitize(buf.String())

	sum := sha256.Sum256(data)
	doc.Hash = hex.EncodeToString(sum[:8])

	return doc, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimPrefix(input, "\ufeff")
	input = strings.ReplaceAll(input, "\r\n", "\n")
	if !strings.HasPrefix(input, "---\n") {
		return "", input
	}
	rest := input[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", input
	}
	fm := rest[:end]
	body := strings.TrimPrefix(rest[end+len("\n---"):], "\n")
	return fm, body
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

package render

import (
	"context"

	"github.com/a-h/templ"

	"github.com/conneroisu/ciclowiki/internal/logging"
	"github.com/conneroisu/ciclowiki/internal/pages"
)

// Fragments renders library documents as the markup the page controller
// swaps into the content region.
type Fragments struct {
	lib    *pages.Library
	logger logging.Logger
}

// NewFragments creates a renderer over lib. Render failures are logged to
// logger; a nil logger discards them.
func NewFragments(lib *pages.Library, logger logging.Logger) *Fragments {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Fragments{lib: lib, logger: logger.WithComponent("render")}
}

// markup renders c to a string. A failure is logged and yields empty markup
// so the controller still clears the placeholder.
func (f *Fragments) markup(c templ.Component, what string, fields ...interface{}) string {
	ctx := context.Background()
	out, err := String(ctx, c)
	if err != nil {
		f.logger.Error(ctx, err, "Failed to render "+what, fields...)
		return ""
	}
	return out
}

// Fragment returns the article for page, or the home article with
// found=false when page is not a known key.
func (f *Fragments) Fragment(page string) (string, bool) {
	doc, found := f.lib.Lookup(page)
	if doc == nil {
		return "", false
	}
	return f.markup(Article(doc), "article", "page", doc.Key.String()), found
}

// Breadcrumb returns the breadcrumb markup for label.
func (f *Fragments) Breadcrumb(label string) string {
	return f.markup(Breadcrumb(label), "breadcrumb", "label", label)
}

// Placeholder returns the loading indicator markup.
func (f *Fragments) Placeholder() string {
	return f.markup(Loading(), "placeholder")
}

// Page returns the full document for a raw page key. Unknown keys render the
// home article under a breadcrumb showing the raw key.
func (f *Fragments) Page(raw string, site Site) templ.Component {
	page := raw
	active := ""
	if k, ok := pages.Parse(raw); ok {
		page = k.String()
		active = page
	}
	markup, _ := f.Fragment(page)

	return Layout(Shell{
		Site:       site,
		Page:       page,
		Active:     active,
		Breadcrumb: pages.LabelFor(page),
		Content:    markup,
	})
}

// Package render builds the wiki markup with templ components: the page
// shell, the sidebar, the breadcrumb, article fragments and the loading
// placeholder.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/ciclowiki/internal/pages"
)

// SiteTitle is shown in the sidebar header and the document title.
const SiteTitle = "Wiki de Ingeniería de Software"

// NavSection groups sidebar links under a heading.
type NavSection struct {
	Title string
	Keys  []pages.Key
}

var navSections = []NavSection{
	{Title: "Principal", Keys: []pages.Key{pages.Home, pages.CicloVida}},
	{Title: "Modelos", Keys: []pages.Key{
		pages.Cascada, pages.Prototipos, pages.RAD,
		pages.Evolutivo, pages.Espiral, pages.VModel,
	}},
	{Title: "Información", Keys: []pages.Key{pages.Docente}},
}

// NavSections returns the sidebar layout.
func NavSections() []NavSection {
	out := make([]NavSection, len(navSections))
	copy(out, navSections)
	return out
}

// Site carries the settings shared by every page of a shell.
type Site struct {
	Title string
	// Assets is the URL prefix of the stylesheets and runtime script.
	Assets string
	// Socket is the websocket path. Empty renders a shell without the live
	// runtime, as in static exports.
	Socket string
	// Href builds the link target of a page.
	Href func(pages.Key) string
}

// ServerSite is the site served by the HTTP server.
func ServerSite() Site {
	return Site{
		Title:  SiteTitle,
		Assets: "/static/",
		Socket: "/ws",
		Href:   func(k pages.Key) string { return "/page/" + k.String() },
	}
}

// Shell is everything the page layout needs.
type Shell struct {
	Site Site
	// Page is the current page, a slug for known pages or the raw key.
	Page string
	// Active is the highlighted link slug, empty for unknown pages.
	Active     string
	Breadcrumb string
	Content    string
}

// printer writes strings and keeps the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) print(parts ...string) {
	for _, s := range parts {
		if p.err != nil {
			return
		}
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) render(ctx context.Context, c templ.Component) {
	if p.err != nil {
		return
	}
	p.err = c.Render(ctx, p.w)
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// Layout renders the full HTML document.
func Layout(s Shell) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		title := s.Site.Title
		if s.Breadcrumb != "" {
			title = s.Breadcrumb + " · " + title
		}

		p.print("<!DOCTYPE html>\n<html lang=\"es\">\n<head>\n",
			"<meta charset=\"utf-8\">\n",
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n",
			"<title>", esc(title), "</title>\n",
			"<link rel=\"stylesheet\" href=\"https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.4.0/css/all.min.css\">\n")
		p.printf("<link rel=\"stylesheet\" href=\"%swiki.css\">\n", esc(s.Site.Assets))
		p.printf("<link rel=\"stylesheet\" href=\"%scontent.css\">\n", esc(s.Site.Assets))
		p.print("</head>\n<body>\n<div class=\"wiki-container\">\n")

		p.render(ctx, Sidebar(s.Site, s.Active))

		p.print("<main class=\"main-content\">\n")
		p.render(ctx, Header(s.Breadcrumb))
		p.print("<div class=\"content-body\" id=\"contentBody\">", s.Content, "</div>\n</main>\n</div>\n")

		if s.Site.Socket != "" {
			p.printf("<script src=\"%swiki.js\" data-socket=\"%s\" data-current=\"%s\" defer></script>\n",
				esc(s.Site.Assets), esc(s.Site.Socket), esc(s.Page))
		}
		p.print("</body>\n</html>\n")
		return p.err
	})
}

// Sidebar renders the navigation with the active link highlighted.
func Sidebar(site Site, active string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.print("<nav class=\"sidebar\" id=\"sidebar\">\n",
			"<div class=\"sidebar-header\"><h2><i class=\"fas fa-graduation-cap\"></i> <span>",
			esc(site.Title), "</span></h2></div>\n")

		for _, section := range navSections {
			p.print("<div class=\"nav-section\">\n<h3 class=\"nav-section-title\">", esc(section.Title), "</h3>\n<ul class=\"nav-list\">\n")
			for _, k := range section.Keys {
				class := "nav-link"
				if k.String() == active {
					class += " active"
				}
				href := "#" + k.String()
				if site.Href != nil {
					href = site.Href(k)
				}
				p.printf("<li><a href=\"%s\" class=\"%s\" data-page=\"%s\"><i class=\"%s\"></i><span>%s</span></a></li>\n",
					esc(href), class, k.String(), esc(k.Icon()), esc(k.Label()))
			}
			p.print("</ul>\n</div>\n")
		}

		p.print("</nav>\n")
		return p.err
	})
}

// Header renders the content header with both toggles and the breadcrumb.
func Header(label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.print("<header class=\"content-header\">\n",
			"<button class=\"mobile-menu-toggle\" id=\"mobileMenuToggle\" type=\"button\" aria-label=\"Abrir menú\"><i class=\"fas fa-bars\"></i></button>\n",
			"<button class=\"sidebar-toggle\" id=\"sidebarToggle\" type=\"button\" aria-label=\"Contraer barra lateral\"><i class=\"fas fa-angle-double-left\"></i></button>\n",
			"<nav class=\"breadcrumb\" id=\"breadcrumb\">")
		p.render(ctx, Breadcrumb(label))
		p.print("</nav>\n</header>\n")
		return p.err
	})
}

// Breadcrumb renders the breadcrumb trail for a label.
func Breadcrumb(label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<span class="breadcrumb-item active">`+esc(label)+`</span>`)
		return err
	})
}

// Loading renders the placeholder shown while content is swapped.
func Loading() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="loading" role="status"><div class="spinner"></div><span class="loading-text">Cargando contenido…</span></div>`)
		return err
	})
}

// Article renders a document as the content fragment.
func Article(doc *pages.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.printf("<article class=\"page-content\" data-key=\"%s\">\n", doc.Key.String())
		if doc.HasBack {
			p.printf("<a href=\"#%s\" class=\"back-button\" data-page=\"%s\"><i class=\"fas fa-arrow-left\"></i> %s</a>\n",
				doc.Back.String(), doc.Back.String(), esc(doc.BackLabel))
		}
		p.printf("<header class=\"page-header\"><h1><i class=\"%s\"></i> %s</h1></header>\n", esc(doc.Icon), esc(doc.Title))
		p.print("<div class=\"content-section\">\n", doc.Body, "</div>\n")
		p.print("</article>")
		return p.err
	})
}

// String renders c into a string.
func String(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

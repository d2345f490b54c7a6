package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/conneroisu/ciclowiki/internal/pages"
	"github.com/conneroisu/ciclowiki/internal/render"
)

// PageFoundHeader tells fragment callers whether the key was known or the
// home article was served as a fallback.
const PageFoundHeader = "X-Page-Found"

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.countRequests)
	r.Use(chimw.Recoverer)

	// The websocket outlives any request timeout and must not be wrapped by
	// the compressor.
	r.Handle("/ws", s.hub)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		r.Use(chimw.Compress(5, "text/html", "text/css", "application/javascript", "application/json"))
		r.Use(securityHeaders(s.config.IsDevelopment()))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins(),
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{PageFoundHeader},
			MaxAge:         300,
		}))

		r.Get("/", s.handleIndex)
		r.Get("/page/{key}", s.handlePage)
		r.Get("/fragment/{key}", s.handleFragment)
		r.Get("/api/pages", s.handlePages)
		r.Get("/health", s.health.HTTPHandler())
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

		assets := http.FileServer(http.FS(render.Assets()))
		r.Handle("/static/*", http.StripPrefix("/static/", assets))
	})

	return r
}

// corsOrigins lists the origins allowed to fetch fragments and the page
// index from scripts: the server itself plus the configured extras.
func (s *Server) corsOrigins() []string {
	port := strconv.Itoa(s.config.Server.Port)
	origins := []string{
		"http://localhost:" + port,
		"http://127.0.0.1:" + port,
		fmt.Sprintf("http://%s:%s", s.config.Server.Host, port),
	}
	return append(origins, s.config.Server.AllowedOrigins...)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, s.config.Browser.DefaultPage)
}

// handlePage renders the full shell. Unknown keys are not an error: they
// show the home article under a breadcrumb naming the raw key, exactly as
// an in-page navigation would.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, chi.URLParam(r, "key"))
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, key string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.fragments.Page(key, s.site).Render(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), err, "Failed to render page", "page", key)
	}
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	markup, found := s.fragments.Fragment(key)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(PageFoundHeader, strconv.FormatBool(found))
	if _, err := w.Write([]byte(markup)); err != nil {
		s.logger.Debug(r.Context(), "Failed to write fragment", "error", err.Error())
	}
}

// PageEntry describes one page in the /api/pages index.
type PageEntry struct {
	Key     string `json:"key" yaml:"key"`
	Label   string `json:"label" yaml:"label"`
	Icon    string `json:"icon" yaml:"icon"`
	Section string `json:"section" yaml:"section"`
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Href    string `json:"href" yaml:"href"`
}

// PageIndex lists the pages in sidebar order.
func PageIndex(lib *pages.Library, site render.Site) []PageEntry {
	var out []PageEntry
	for _, section := range render.NavSections() {
		for _, k := range section.Keys {
			entry := PageEntry{
				Key:     k.String(),
				Label:   k.Label(),
				Icon:    k.Icon(),
				Section: section.Title,
				Href:    site.Href(k),
			}
			if doc, ok := lib.Get(k); ok {
				entry.Title = doc.Title
				entry.Summary = doc.Summary
			}
			out = append(out, entry)
		}
	}
	return out
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(PageIndex(s.library, s.site)); err != nil {
		s.logger.Error(r.Context(), err, "Failed to encode page index")
	}
}

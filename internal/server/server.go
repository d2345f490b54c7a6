// Package server serves the wiki over HTTP: full pages for first loads and
// crawlers, fragments and a page index for scripts, the embedded assets, and
// the websocket endpoint where each tab's page controller runs.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/ciclowiki/internal/browser"
	"github.com/conneroisu/ciclowiki/internal/config"
	"github.com/conneroisu/ciclowiki/internal/errors"
	"github.com/conneroisu/ciclowiki/internal/logging"
	"github.com/conneroisu/ciclowiki/internal/monitoring"
	"github.com/conneroisu/ciclowiki/internal/pages"
	"github.com/conneroisu/ciclowiki/internal/render"
	"github.com/conneroisu/ciclowiki/internal/session"
	"github.com/conneroisu/ciclowiki/internal/version"
	"github.com/conneroisu/ciclowiki/internal/watcher"
)

const (
	shutdownTimeout = 10 * time.Second
	requestTimeout  = 30 * time.Second
	goroutineLimit  = 10000
)

// Options configures a Server.
type Options struct {
	Config  *config.Config
	Library *pages.Library
	Logger  logging.Logger
	// Metrics is created when nil.
	Metrics *monitoring.Metrics
}

// Server serves the wiki.
type Server struct {
	config    *config.Config
	library   *pages.Library
	fragments *render.Fragments
	site      render.Site
	hub       *session.Hub
	metrics   *monitoring.Metrics
	health    *monitoring.HealthMonitor
	logger    logging.Logger
	router    chi.Router

	// changes receives library events from the moment the server exists, so
	// reloads that happen before Start are not lost.
	changes <-chan pages.Event

	mutex    sync.RWMutex
	listener net.Listener
}

// New creates a server over an already loaded library.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigLoad, "server requires a configuration", nil)
	}
	if opts.Library == nil {
		return nil, errors.NewContentError(errors.ErrCodeContentLoad, "server requires a page library", nil)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = monitoring.NewMetrics(version.GetVersion(), runtime.Version())
	}

	cfg := opts.Config
	defaultPage, _ := pages.Parse(cfg.Browser.DefaultPage)
	fragments := render.NewFragments(opts.Library, opts.Logger)

	s := &Server{
		config:    cfg,
		library:   opts.Library,
		fragments: fragments,
		site:      render.ServerSite(),
		metrics:   opts.Metrics,
		logger:    opts.Logger.WithComponent("server"),
		changes:   opts.Library.Watch(),
	}

	s.hub = session.NewHub(fragments, session.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Controller: browser.Options{
			Delay:       cfg.Browser.LoadDelay,
			Breakpoint:  cfg.Browser.Breakpoint,
			DefaultPage: defaultPage,
			Observer:    opts.Metrics,
		},
		Tracker: opts.Metrics,
		Logger:  opts.Logger,
	})

	s.health = monitoring.NewHealthMonitor(opts.Logger, version.GetVersion())
	s.health.RegisterCheck(monitoring.LibraryHealthChecker(opts.Library))
	s.health.RegisterCheck(monitoring.GoroutineHealthChecker(goroutineLimit))
	if cfg.Content.Dir != "" {
		s.health.RegisterCheck(monitoring.DirectoryHealthChecker(cfg.Content.Dir))
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler with every route and middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the session hub.
func (s *Server) Hub() *session.Hub {
	return s.hub
}

// Addr returns the address the server listens on, or "" before Start has
// bound it.
func (s *Server) Addr() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start serves until ctx is cancelled, then shuts down gracefully. It runs
// the session hub, the content watcher when configured, and the refresh loop
// that pushes reloaded content to open tabs.
func (s *Server) Start(ctx context.Context) error {
	defer s.library.Unwatch(s.changes)

	var fw *watcher.FileWatcher
	if s.config.Content.Dir != "" && s.config.Content.Watch {
		var err error
		if fw, err = s.contentWatcher(); err != nil {
			return err
		}
	}

	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		if fw != nil {
			fw.Stop()
		}
		return errors.NewNetworkError(errors.ErrCodeServerStart,
			"failed to listen on "+s.config.Addr(), err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mutex.Lock()
	s.listener = ln
	s.mutex.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		s.refreshOnChange(gctx)
		return nil
	})

	if fw != nil {
		fw.Start(gctx)
		g.Go(func() error {
			<-gctx.Done()
			return fw.Stop()
		})
	}

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return errors.NewNetworkError(errors.ErrCodeServerStart, "server error", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	url := fmt.Sprintf("http://%s", ln.Addr().String())
	s.logger.Info(ctx, "Serving wiki", "url", url, "pages", s.library.Count())
	if s.config.Server.Open {
		go openBrowser(gctx, url, s.logger)
	}

	// Listener errors are already classified; shutdown failures are not.
	err = errors.Wrap(g.Wait(), errors.ErrCodeServerStart, "server did not stop cleanly")
	s.hub.Wait()
	s.logger.Info(context.Background(), "Server stopped")
	return err
}

// refreshOnChange re-renders open tabs whenever the library reports changed
// documents.
func (s *Server) refreshOnChange(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.changes:
			if !ok {
				return
			}
			s.logger.Debug(ctx, "Content changed", "page", event.Key.String(), "type", event.Type.String())

			// A reload reports every changed page; refresh once per burst.
			drain(s.changes)
			s.hub.RefreshAll(ctx)
		}
	}
}

func drain(ch <-chan pages.Event) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

package monitoring

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conneroisu/ciclowiki/internal/pages"
)

// Metrics holds the wiki's Prometheus collectors on an isolated registry so
// that each server, and each test, counts on its own.
type Metrics struct {
	Registry *prometheus.Registry

	NavigationsTotal    *prometheus.CounterVec
	FallbacksTotal      prometheus.Counter
	ActiveSessions      prometheus.Gauge
	SessionsTotal       prometheus.Counter
	ContentReloadsTotal *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	BuildInfo           *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them together with the Go
// runtime and process collectors.
func NewMetrics(version, goVersion string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		NavigationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ciclowiki_navigations_total",
				Help: "Page navigations by page key. Unknown keys are counted as \"unknown\".",
			},
			[]string{"page"},
		),
		FallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ciclowiki_fallbacks_total",
				Help: "Navigations to unknown keys that fell back to the home page.",
			},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ciclowiki_active_sessions",
				Help: "Browser sessions currently connected.",
			},
		),
		SessionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ciclowiki_sessions_total",
				Help: "Browser sessions accepted since start.",
			},
		),
		ContentReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ciclowiki_content_reloads_total",
				Help: "Content library reloads by result.",
			},
			[]string{"result"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ciclowiki_http_requests_total",
				Help: "HTTP requests by method, route pattern and status code.",
			},
			[]string{"method", "route", "status"},
		),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ciclowiki_info",
				Help: "Build information.",
			},
			[]string{"version", "go_version"},
		),
	}

	reg.MustRegister(
		m.NavigationsTotal,
		m.FallbacksTotal,
		m.ActiveSessions,
		m.SessionsTotal,
		m.ContentReloadsTotal,
		m.HTTPRequestsTotal,
		m.BuildInfo,
	)
	m.BuildInfo.WithLabelValues(version, goVersion).Set(1)

	return m
}

// Navigated records a navigation. It lets Metrics observe page controllers.
func (m *Metrics) Navigated(page string, found bool) {
	if !found {
		m.NavigationsTotal.WithLabelValues("unknown").Inc()
		m.FallbacksTotal.Inc()
		return
	}
	// Raw keys come from clients; only canonical slugs become label values.
	if k, ok := pages.Parse(page); ok {
		page = k.String()
	}
	m.NavigationsTotal.WithLabelValues(page).Inc()
}

// SessionOpened records a new browser session.
func (m *Metrics) SessionOpened() {
	m.SessionsTotal.Inc()
	m.ActiveSessions.Inc()
}

// SessionClosed records a closed browser session.
func (m *Metrics) SessionClosed() {
	m.ActiveSessions.Dec()
}

// ContentReloaded records a library reload.
func (m *Metrics) ContentReloaded(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.ContentReloadsTotal.WithLabelValues(result).Inc()
}

// RequestServed records an HTTP response. route is the router pattern, not
// the raw path, to keep label cardinality bounded.
func (m *Metrics) RequestServed(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

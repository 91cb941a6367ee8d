// Package metrics exposes prometheus counters for catalog resolution, post loading and HTTP traffic
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Post load results
const (
	LoadOK       = "ok"
	LoadNotFound = "not_found"
	LoadError    = "error"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	catalogResolutions *prometheus.CounterVec
	catalogDuration    prometheus.Histogram
	catalogEntries     prometheus.Gauge
	postLoads          *prometheus.CounterVec
	postsRegistered    prometheus.Gauge
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New registers all collectors with a fresh registry
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers all collectors with registry
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		gatherer: registry,
		catalogResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolsite_catalog_resolutions_total",
				Help: "Tool catalog resolutions by source and fallback reason",
			},
			[]string{"source", "reason"},
		),
		catalogDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "toolsite_catalog_resolve_seconds",
				Help:    "Duration of tool catalog resolution in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		catalogEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "toolsite_catalog_entries",
				Help: "Number of entries in the last resolved catalog",
			},
		),
		postLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolsite_post_loads_total",
				Help: "Blog post loads by result",
			},
			[]string{"result"},
		),
		postsRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "toolsite_posts_registered",
				Help: "Number of posts found by the last content scan",
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolsite_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolsite_http_request_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// ObserveResolution records one catalog resolution. reason is empty for remote results.
func (m *Metrics) ObserveResolution(source, reason string, entries int, d time.Duration) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.catalogResolutions.WithLabelValues(source, reason).Inc()
	m.catalogDuration.Observe(d.Seconds())
	m.catalogEntries.Set(float64(entries))
}

// ObservePostLoad records a blog post load result
func (m *Metrics) ObservePostLoad(result string) {
	if m == nil {
		return
	}
	m.postLoads.WithLabelValues(result).Inc()
}

// SetPostsRegistered records the size of the content registry
func (m *Metrics) SetPostsRegistered(n int) {
	if m == nil {
		return
	}
	m.postsRegistered.Set(float64(n))
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

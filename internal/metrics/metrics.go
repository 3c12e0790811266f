// Package metrics exports pipeline, cache and HTTP events to Prometheus.
//
// A [Registry] owns a private Prometheus registry, so tests and multiple
// servers in one process never collide. Register it with
// [observability.SetPipelineHooks], [observability.SetCacheHooks] and
// [observability.SetHTTPHooks] (or call [Registry.Install]) and expose
// [Registry.Handler] at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/attacktree/pkg/observability"
)

const namespace = "attacktree"

// Registry holds all metrics for the application.
type Registry struct {
	// Pipeline Metrics
	NormalizeTotal    *prometheus.CounterVec
	NormalizeDuration prometheus.Histogram
	PayloadBytes      prometheus.Histogram
	TreeNodes         prometheus.Histogram
	ValidationIssues  *prometheus.CounterVec
	LayoutDuration    prometheus.Histogram
	ExportTotal       *prometheus.CounterVec
	ExportDuration    prometheus.Histogram
	DiagramBytes      prometheus.Histogram

	// Cache Metrics
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	CacheSetBytes *prometheus.CounterVec

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all metrics initialized, plus the
// standard Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// Gatherer returns the underlying Prometheus registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Install registers r as the process-wide pipeline, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

func (r *Registry) initPipelineMetrics() {
	f := promauto.With(r.registry)

	r.NormalizeTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_total",
			Help:      "Envelopes normalized, by outcome (ok, no_data, error)",
		},
		[]string{"outcome"},
	)
	r.NormalizeDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "normalize_duration_seconds",
		Help:      "Time spent extracting the canonical tree",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	r.PayloadBytes = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payload_size_bytes",
		Help:      "Size of received envelopes",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
	})
	r.TreeNodes = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tree_nodes",
		Help:      "Nodes in the normalized root tree",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
	r.ValidationIssues = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Structural anomalies found in normalized trees",
		},
		[]string{"code"},
	)
	r.LayoutDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_duration_seconds",
		Help:      "Time spent computing layouts",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	r.ExportTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_total",
			Help:      "Diagrams exported, by style",
		},
		[]string{"styled"},
	)
	r.ExportDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Time spent exporting diagram text",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	r.DiagramBytes = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "diagram_size_bytes",
		Help:      "Size of exported diagram text",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
	})
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)

	r.CacheHits = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by entry type",
		},
		[]string{"type"},
	)
	r.CacheMisses = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses by entry type",
		},
		[]string{"type"},
	)
	r.CacheSetBytes = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_set_bytes_total",
			Help:      "Bytes written to the cache by entry type",
		},
		[]string{"type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	r.HTTPRequestsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Current number of HTTP requests being processed",
	})
}

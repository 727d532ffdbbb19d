package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"concierge/internal/app/concierge"
	"concierge/internal/app/middleware"
)

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	upstream  *prometheus.CounterVec
	upLatency *prometheus.HistogramVec
	degraded  *prometheus.CounterVec
	messages  *prometheus.CounterVec
	cache     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "concierge_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "concierge_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"route"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "concierge_upstream_calls_total",
			Help: "Calls to weather, search and model providers by outcome.",
		}, []string{"upstream", "outcome"}),
		upLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "concierge_upstream_duration_seconds",
			Help:    "Upstream call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"upstream"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "concierge_degraded_total",
			Help: "Fallbacks applied by the degrade policy.",
		}, []string{"upstream", "fallback"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "concierge_bus_messages_total",
			Help: "Commands and queries handled by key and outcome.",
		}, []string{"kind", "key", "outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "concierge_search_cache_total",
			Help: "Search cache lookups by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.upstream, m.upLatency, m.degraded, m.messages, m.cache,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveUpstream(upstream concierge.Upstream, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(string(upstream), outcome(err)).Inc()
	m.upLatency.WithLabelValues(string(upstream)).Observe(elapsed.Seconds())
}

func (m *Metrics) Degraded(upstream concierge.Upstream, fallback concierge.Fallback) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(string(upstream), string(fallback)).Inc()
}

func (m *Metrics) ObserveMessage(kind, key string, err error, _ time.Duration) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(kind, key, outcome(err)).Inc()
}

// CacheLookup counts search cache hits and misses.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ concierge.Metrics   = (*Metrics)(nil)
	_ middleware.Observer = (*Metrics)(nil)
)

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors exported on /metrics. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	positions   *prometheus.CounterVec
	challenges  *prometheus.CounterVec
	rateLimited prometheus.Counter
}

// New registers the collectors on a fresh registry for the named service.
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "buteco",
			Name:        "http_requests_total",
			Help:        "HTTP requests by route pattern and status.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "buteco",
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency by route pattern.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		positions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "buteco",
			Name:        "political_position_writes_total",
			Help:        "Political position upserts by outcome.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		challenges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "buteco",
			Name:        "challenge_transitions_total",
			Help:        "Challenge lifecycle changes by resulting status.",
			ConstLabels: constLabels,
		}, []string{"status"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "buteco",
			Name:        "http_rate_limited_total",
			Help:        "Requests rejected by the per-IP rate limiter.",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(
		m.requests, m.duration, m.positions, m.challenges, m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) PositionWritten(created bool) {
	if m == nil {
		return
	}
	result := "updated"
	if created {
		result = "created"
	}
	m.positions.WithLabelValues(result).Inc()
}

func (m *Metrics) ChallengeTransition(status string) {
	if m == nil {
		return
	}
	m.challenges.WithLabelValues(status).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

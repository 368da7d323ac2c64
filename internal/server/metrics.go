package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "fizzcalc"

// Metrics holds the Prometheus collectors of one server instance.
// Each instance owns a private registry so that several servers, or tests,
// can coexist in one process.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	activeRequests   prometheus.Gauge
	numbersEvaluated prometheus.Counter
	fetchTotal       *prometheus.CounterVec
	fetchDuration    prometheus.Histogram
}

// NewMetrics creates and registers the server collectors, plus the Go
// runtime collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by path and status code.",
		}, []string{"path", "status"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_requests",
			Help:      "Number of HTTP requests currently being served.",
		}),
		numbersEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "numbers_evaluated_total",
			Help:      "Total number of integers mapped to sequence values.",
		}),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_fetch_total",
			Help:      "Word service requests by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "token_fetch_duration_seconds",
			Help:      "Latency of word service requests.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.requestsTotal,
		m.activeRequests,
		m.numbersEvaluated,
		m.fetchTotal,
		m.fetchDuration,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// IncrementActiveRequests marks the start of a request.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests marks the end of a request.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(path string, status int) {
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// ObserveNumbers adds n to the evaluated-numbers counter.
func (m *Metrics) ObserveNumbers(n int) {
	if n > 0 {
		m.numbersEvaluated.Add(float64(n))
	}
}

// RecordFetch implements wordapi.Recorder.
func (m *Metrics) RecordFetch(outcome string, d time.Duration) {
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// WritePrometheus writes all collected metrics in the Prometheus text
// exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

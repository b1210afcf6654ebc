// Package metrics holds the Prometheus instruments for delay queries,
// ingestion and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpDurationBuckets  = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	stageDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}
)

// Metrics holds all Prometheus metric instruments for the service.
type Metrics struct {
	DelayQueriesTotal   *prometheus.CounterVec
	IngestTotal         *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the instruments and registers them with reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		DelayQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vetting_delay_queries_total",
			Help: "Delay queries by the strategy that selected the flow.",
		}, []string{"strategy"}),
		IngestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vetting_ingest_total",
			Help: "Processed documents by kind and outcome.",
		}, []string{"kind", "outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vetting_pipeline_stage_duration_seconds",
			Help:    "Ingestion stage duration in seconds.",
			Buckets: stageDurationBuckets,
		}, []string{"stage"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vetting_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vetting_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.DelayQueriesTotal,
		m.IngestTotal,
		m.StageDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// The recording helpers accept a nil receiver so callers can run without metrics.

// RecordDelayQuery counts a delay query. An empty strategy is recorded as "none".
func (m *Metrics) RecordDelayQuery(strategy string) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "none"
	}
	m.DelayQueriesTotal.WithLabelValues(strategy).Inc()
}

// RecordIngest counts a processed document.
func (m *Metrics) RecordIngest(kind, outcome string) {
	if m == nil {
		return
	}
	m.IngestTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveStage records how long a pipeline stage (ocr, llm, persist) took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

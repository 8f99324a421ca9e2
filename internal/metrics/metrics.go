// Package metrics provides Prometheus metrics for the disposal pipeline
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics contains Prometheus metrics for pipeline runs and the HTTP surface
type PipelineMetrics struct {
	registry *prometheus.Registry

	outcomesTotal          *prometheus.CounterVec
	actionsTotal           *prometheus.CounterVec
	fallbacksTotal         *prometheus.CounterVec
	classificationDuration *prometheus.HistogramVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	collectors []prometheus.Collector
}

// NewPipelineMetrics creates and registers new pipeline metrics
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.outcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartbin_pipeline_runs_total",
			Help: "Total number of pipeline runs by terminal state",
		},
		[]string{"state", "category"}, // state: committed, rolled_back, idle; category: empty on success
	)

	m.actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartbin_bin_actions_total",
			Help: "Total number of committed bin actions",
		},
		[]string{"action"},
	)

	m.fallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartbin_classifier_fallbacks_total",
			Help: "Total number of fallback results served outside production",
		},
		[]string{"provider", "reason"},
	)

	m.classificationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartbin_classification_duration_seconds",
			Help:    "Time taken by the classifier",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"status"},
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartbin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartbin_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.collectors = []prometheus.Collector{
		m.outcomesTotal,
		m.actionsTotal,
		m.fallbacksTotal,
		m.classificationDuration,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	}
}

// Describe implements the Collector interface
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordClassification implements core.Recorder
func (m *PipelineMetrics) RecordClassification(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.classificationDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordOutcome implements core.Recorder
func (m *PipelineMetrics) RecordOutcome(state core.PipelineState, action core.TrashAction, category core.ErrorCategory) {
	m.outcomesTotal.WithLabelValues(string(state), string(category)).Inc()
	if state == core.StateCommitted {
		m.actionsTotal.WithLabelValues(string(action)).Inc()
	}
}

// RecordFallback counts a fallback result served by the non-production classifier
func (m *PipelineMetrics) RecordFallback(provider string, reason error) {
	m.fallbacksTotal.WithLabelValues(provider, fallbackReason(reason)).Inc()
}

// RecordHTTPRequest records one served request
func (m *PipelineMetrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, core.ErrTimeout):
		return "timeout"
	case errors.Is(err, core.ErrInvalidResponse):
		return "invalid_response"
	default:
		return "unreachable"
	}
}

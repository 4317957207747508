// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK              = "ok"
	OutcomeValidationError = "validation_error"
	OutcomeStoreError      = "store_error"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	submissions   *prometheus.CounterVec
	summaryReads  *prometheus.CounterVec
	amountByTask  *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, plus the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paghetta_chore_submissions_total",
				Help: "Chore submissions by outcome",
			},
			[]string{"outcome"},
		),
		summaryReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paghetta_summary_reads_total",
				Help: "Summary reads by outcome",
			},
			[]string{"outcome"},
		),
		amountByTask: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paghetta_amount_recorded_total",
				Help: "Reward amount recorded per task",
			},
			[]string{"task"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paghetta_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paghetta_store_call_duration_seconds",
				Help:    "Duration of store calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(
		m.submissions,
		m.summaryReads,
		m.amountByTask,
		m.httpRequests,
		m.storeDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SummaryRead(outcome string) {
	if m == nil {
		return
	}
	m.summaryReads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AmountRecorded(task string, amount int64) {
	if m == nil {
		return
	}
	m.amountByTask.WithLabelValues(task).Add(float64(amount))
}

func (m *Metrics) HTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// ObserveStore records how long a store call took, started at start.
func (m *Metrics) ObserveStore(op string, start time.Time) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

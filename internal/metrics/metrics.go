// Package metrics exposes Prometheus collectors for the import pipeline and
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/tcm/internal/importer"
)

const namespace = "tcm"

// Import outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// Metrics holds every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	importsTotal   *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	autoCreated    *prometheus.CounterVec
	importDuration prometheus.Histogram
	activeImports  prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		importsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Import runs by outcome.",
		}, []string{"outcome"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Imported rows by result.",
		}, []string{"result"}),
		autoCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_auto_created_total",
			Help:      "Reference entities created during imports, by dimension.",
		}, []string{"dimension"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Wall time of completed import runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		activeImports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "imports_active",
			Help:      "Import runs currently in progress.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.importsTotal,
		m.importRows,
		m.autoCreated,
		m.importDuration,
		m.activeImports,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ImportStarted marks one more import as running.
func (m *Metrics) ImportStarted() {
	if m == nil {
		return
	}
	m.activeImports.Inc()
}

// ImportFinished records the outcome of a run started with ImportStarted.
// res may be nil when the batch was rejected before processing.
func (m *Metrics) ImportFinished(res *importer.Result, err error) {
	if m == nil {
		return
	}
	m.activeImports.Dec()

	switch {
	case res == nil:
		m.importsTotal.WithLabelValues(OutcomeRejected).Inc()
		return
	case err != nil:
		m.importsTotal.WithLabelValues(OutcomeFailed).Inc()
	default:
		m.importsTotal.WithLabelValues(OutcomeCompleted).Inc()
		m.importDuration.Observe(res.Duration.Seconds())
	}

	m.importRows.WithLabelValues("created").Add(float64(res.Created))
	m.importRows.WithLabelValues("updated").Add(float64(res.Updated))
	m.importRows.WithLabelValues("failed").Add(float64(res.Failed))
	m.importRows.WithLabelValues("skipped").Add(float64(res.SkippedShortRows))

	ac := res.AutoCreated
	m.autoCreated.WithLabelValues("module").Add(float64(ac.Modules))
	m.autoCreated.WithLabelValues("sub_module").Add(float64(ac.SubModules))
	m.autoCreated.WithLabelValues("priority").Add(float64(ac.Priorities))
	m.autoCreated.WithLabelValues("automation_status").Add(float64(ac.Statuses))
	m.autoCreated.WithLabelValues("user").Add(float64(ac.Users))
	m.autoCreated.WithLabelValues("tag").Add(float64(ac.Tags))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Package metrics provides Prometheus metrics for the BloomCast forecasting
// service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus metric exposed by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Forecasting
	forecastRows      *prometheus.CounterVec
	forecastDuration  prometheus.Histogram
	refreshEnqueued   prometheus.Counter
	refreshDropped    prometheus.Counter
	refreshCompleted  prometheus.Counter
	refreshFailed     prometheus.Counter
	refreshInFlight   prometheus.Gauge
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	workerActiveCount prometheus.Gauge

	// Model training
	trainingRuns     *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	modelAccuracy    *prometheus.GaugeVec

	// Launcher and integrations
	healthChecks     *prometheus.CounterVec
	tunnelStarts     prometheus.Counter
	tunnelFailures   prometheus.Counter
	sheetsOps        *prometheus.CounterVec
	posImports       *prometheus.CounterVec
	validationIssues *prometheus.CounterVec
	corrections      prometheus.Counter

	// Errors and system health
	errorsByComponent *prometheus.CounterVec
	uptimeSeconds     prometheus.Gauge
	goroutineCount    prometheus.Gauge
	memoryUsage       prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bloomcast",
		subsystem:        "forecast",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics registers all metrics on the configured registry.
func (m *Manager) initializeMetrics() { //nolint:funlen // one declaration per metric
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.forecastRows = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "rows_generated_total",
			Help:      "Total number of forecast rows generated, by store",
		},
		[]string{"store"},
	)

	m.forecastDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "generation_duration_milliseconds",
		Help:      "Duration of a single store forecast generation in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.refreshEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_enqueued_total",
		Help:      "Total number of refresh jobs accepted onto the queue",
	})

	m.refreshDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_dropped_total",
		Help:      "Total number of refresh jobs rejected because the queue was full",
	})

	m.refreshCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_completed_total",
		Help:      "Total number of refresh jobs completed successfully",
	})

	m.refreshFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_failed_total",
		Help:      "Total number of refresh jobs that ended in an error",
	})

	m.refreshInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_in_flight",
		Help:      "Number of refresh jobs currently being processed",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_size",
		Help:      "Current size of the refresh job queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_capacity",
		Help:      "Maximum capacity of the refresh job queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_utilization_ratio",
		Help:      "Refresh queue utilization (size over capacity)",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of running refresh workers",
	})

	m.trainingRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "training_runs_total",
			Help:      "Total number of model training runs by algorithm and outcome",
		},
		[]string{"algorithm", "outcome"},
	)

	m.trainingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_duration_milliseconds",
		Help:      "Model training duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.modelAccuracy = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "model_accuracy",
			Help:      "Latest accuracy per trained algorithm (0..1)",
		},
		[]string{"algorithm"},
	)

	m.healthChecks = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "health_checks_total",
			Help:      "Total number of keep-alive health checks by status",
		},
		[]string{"status"},
	)

	m.tunnelStarts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tunnel_starts_total",
		Help:      "Total number of tunnel subprocesses started",
	})

	m.tunnelFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tunnel_failures_total",
		Help:      "Total number of tunnel start failures",
	})

	m.sheetsOps = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "sheets_operations_total",
			Help:      "Total number of spreadsheet operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.posImports = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "pos_imports_total",
			Help:      "Total number of POS imports by serving source and outcome",
		},
		[]string{"source", "outcome"},
	)

	m.validationIssues = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "validation_issues_total",
			Help:      "Total number of data validation issues by kind",
		},
		[]string{"kind"},
	)

	m.corrections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "corrections_total",
		Help:      "Total number of manual forecast corrections recorded",
	})

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "error_type"},
	)

	m.uptimeSeconds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "uptime_seconds",
		Help:      "Seconds since the service started",
	})

	m.goroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.memoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Heap memory in use, in bytes",
	})
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordForecastRows adds generated forecast rows for a store.
func RecordForecastRows(store string, rows int) {
	globalManager.forecastRows.WithLabelValues(store).Add(float64(rows))
}

// RecordForecastDuration records a store generation duration in milliseconds.
func RecordForecastDuration(latencyMs float64) {
	globalManager.forecastDuration.Observe(latencyMs)
}

// RecordRefreshEnqueued increments the accepted refresh jobs counter.
func RecordRefreshEnqueued() {
	globalManager.refreshEnqueued.Inc()
}

// RecordRefreshDropped increments the rejected refresh jobs counter.
func RecordRefreshDropped() {
	globalManager.refreshDropped.Inc()
}

// RecordRefreshCompleted increments the completed refresh jobs counter.
func RecordRefreshCompleted() {
	globalManager.refreshCompleted.Inc()
}

// RecordRefreshFailed increments the failed refresh jobs counter.
func RecordRefreshFailed() {
	globalManager.refreshFailed.Inc()
}

// UpdateRefreshInFlight sets the number of jobs currently processing.
func UpdateRefreshInFlight(n int) {
	globalManager.refreshInFlight.Set(float64(n))
}

// UpdateQueueSize sets the current refresh queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the refresh queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the refresh queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordTrainingRun counts a training run for an algorithm with an outcome
// label of "ok" or "error".
func RecordTrainingRun(algorithm, outcome string) {
	globalManager.trainingRuns.WithLabelValues(algorithm, outcome).Inc()
}

// RecordTrainingDuration records a training duration in milliseconds.
func RecordTrainingDuration(latencyMs float64) {
	globalManager.trainingDuration.Observe(latencyMs)
}

// UpdateModelAccuracy publishes the latest accuracy for an algorithm.
func UpdateModelAccuracy(algorithm string, accuracy float64) {
	globalManager.modelAccuracy.WithLabelValues(algorithm).Set(accuracy)
}

// RecordHealthCheck counts a keep-alive health check ("ok" or "failed").
func RecordHealthCheck(status string) {
	globalManager.healthChecks.WithLabelValues(status).Inc()
}

// RecordTunnelStart increments the tunnel starts counter.
func RecordTunnelStart() {
	globalManager.tunnelStarts.Inc()
}

// RecordTunnelFailure increments the tunnel failures counter.
func RecordTunnelFailure() {
	globalManager.tunnelFailures.Inc()
}

// RecordSheetsOp counts a spreadsheet operation such as "push_forecast".
func RecordSheetsOp(operation, outcome string) {
	globalManager.sheetsOps.WithLabelValues(operation, outcome).Inc()
}

// RecordPOSImport counts a POS import served by "api", "file" or "demo".
func RecordPOSImport(source, outcome string) {
	globalManager.posImports.WithLabelValues(source, outcome).Inc()
}

// RecordValidationIssue counts a data validation issue by kind.
func RecordValidationIssue(kind string) {
	globalManager.validationIssues.WithLabelValues(kind).Inc()
}

// RecordCorrection increments the manual corrections counter.
func RecordCorrection() {
	globalManager.corrections.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateUptime sets the uptime gauge.
func UpdateUptime(seconds float64) {
	globalManager.uptimeSeconds.Set(seconds)
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.goroutineCount.Set(float64(count))
}

// UpdateSystemMemoryUsage sets the heap usage gauge in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.memoryUsage.Set(float64(bytes))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

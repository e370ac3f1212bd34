// Package metrics provides Prometheus metrics for the motionlab service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Analysis
	analysisRuns      *prometheus.CounterVec
	analysisRejected  *prometheus.CounterVec
	analysisDuration  prometheus.Histogram
	analysisProgress  prometheus.Counter
	analysisInFlight  prometheus.Gauge
	analysisErrors    prometheus.Counter
	overallScore      *prometheus.HistogramVec
	chartsRendered    *prometheus.CounterVec
	reportsExported   prometheus.Counter
	activeSessions    prometheus.Gauge
	progressListeners prometheus.Gauge

	// Login and upload
	loginAttempts *prometheus.CounterVec
	uploads       *prometheus.CounterVec
	uploadBytes   prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served at /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "motionlab",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.analysisRuns = m.counterVec("analysis_runs_total", "Completed analysis runs by analysis type", "type")
	m.analysisRejected = m.counterVec("analysis_rejected_total", "Analysis starts rejected before running", "reason")
	m.analysisDuration = m.histogram("analysis_duration_milliseconds", "Wall time of a full analysis run",
		[]float64{100, 500, 1000, 2500, 5000, 6000, 7500, 10000, 20000})
	m.analysisProgress = m.counter("analysis_progress_events_total", "Progress steps emitted by the simulator")
	m.analysisInFlight = m.gauge("analysis_in_flight", "Analysis runs currently holding a client guard")
	m.analysisErrors = m.counter("analysis_errors_total", "Analysis runs that ended with an error")
	m.overallScore = m.histogramVec("analysis_overall_score", "Distribution of synthesized overall ratings",
		[]float64{50, 60, 70, 80, 85, 90, 95, 100}, "type")
	m.chartsRendered = m.counterVec("charts_rendered_total", "Performance charts rendered", "format", "reason")
	m.reportsExported = m.counter("reports_exported_total", "Text reports downloaded")
	m.activeSessions = m.gauge("client_sessions", "Client sessions held in memory")
	m.progressListeners = m.gauge("progress_listeners", "Connected progress websocket listeners")

	m.loginAttempts = m.counterVec("login_attempts_total", "Login submissions by outcome", "outcome")
	m.uploads = m.counterVec("uploads_total", "Video uploads by outcome", "outcome")
	m.uploadBytes = m.histogram("upload_bytes", "Size of accepted uploads in bytes",
		prometheus.ExponentialBuckets(1<<20, 4, 6))

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.queueSize = m.gauge("queue_size", "Analysis jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum analysis queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Rejected enqueue attempts")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds", m.histogramBuckets)

	m.workerCount = m.gauge("worker_count", "Analysis workers running")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one job",
		[]float64{100, 500, 1000, 2500, 5000, 6000, 7500, 10000, 20000})
	m.workerErrors = m.counter("worker_errors_total", "Jobs that failed inside a worker")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that ended in an error",
		m.histogramBuckets, "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordAnalysisRun records a completed run, its wall time and overall rating.
func RecordAnalysisRun(analysisType string, durationMs float64, overall int) {
	globalManager.analysisRuns.WithLabelValues(analysisType).Inc()
	globalManager.analysisDuration.Observe(durationMs)
	globalManager.overallScore.WithLabelValues(analysisType).Observe(float64(overall))
}

// RecordAnalysisRejected counts a start request that never reached the queue.
func RecordAnalysisRejected(reason string) {
	globalManager.analysisRejected.WithLabelValues(reason).Inc()
}

// RecordAnalysisProgress counts one emitted progress step.
func RecordAnalysisProgress() {
	globalManager.analysisProgress.Inc()
}

// RecordAnalysisError counts a failed run.
func RecordAnalysisError() {
	globalManager.analysisErrors.Inc()
}

// UpdateAnalysisInFlight sets the number of held run guards.
func UpdateAnalysisInFlight(count int64) {
	globalManager.analysisInFlight.Set(float64(count))
}

// RecordChartRendered counts a chart render by output format and trigger.
func RecordChartRendered(format, reason string) {
	globalManager.chartsRendered.WithLabelValues(format, reason).Inc()
}

// RecordReportExported counts a report download.
func RecordReportExported() {
	globalManager.reportsExported.Inc()
}

// UpdateActiveSessions sets the number of in-memory client sessions.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// UpdateProgressListeners sets the number of connected websocket listeners.
func UpdateProgressListeners(count int) {
	globalManager.progressListeners.Set(float64(count))
}

// RecordLoginAttempt counts a login submission by outcome.
func RecordLoginAttempt(outcome string) {
	globalManager.loginAttempts.WithLabelValues(outcome).Inc()
}

// RecordUpload counts an upload by outcome and observes accepted sizes.
func RecordUpload(outcome string, size int64) {
	globalManager.uploads.WithLabelValues(outcome).Inc()
	if outcome == "accepted" {
		globalManager.uploadBytes.Observe(float64(size))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records enqueue latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package metrics provides Prometheus metrics for the studyplan service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	// latency in milliseconds, from sub-millisecond heuristics to slow LLM calls
	defaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}
	confidenceBuckets     = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 1}
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    prometheus.Labels
	registry       prometheus.Registerer

	// Planning
	analyzeRequests *prometheus.CounterVec
	plansGenerated  *prometheus.CounterVec
	planConfidence  *prometheus.HistogramVec

	// LLM extraction
	llmRequests  *prometheus.CounterVec
	llmLatency   prometheus.Histogram
	llmFallbacks *prometheus.CounterVec

	// Syllabus
	syllabusDocuments prometheus.Counter
	syllabusEvents    *prometheus.CounterVec
	syllabusImports   *prometheus.CounterVec

	// Conflicts
	conflictChecks      prometheus.Counter
	conflicts           *prometheus.CounterVec
	alternativesOffered prometheus.Counter

	// Calendar providers
	calendarRequests *prometheus.CounterVec
	calendarLatency  *prometheus.HistogramVec

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Audit queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Audit workers
	workerCount             prometheus.Gauge
	workerActive            prometheus.Gauge
	workerIdle              prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // served at /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "studyplan",
		subsystem:      "scheduler",
		latencyBuckets: defaultLatencyBuckets,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	ms := m.latencyBuckets

	m.analyzeRequests = auto.NewCounterVec(m.counterOpts("analyze_requests_total",
		"Analyze requests by the extraction path whose plans were returned"), []string{"path"})
	m.plansGenerated = auto.NewCounterVec(m.counterOpts("plans_generated_total",
		"Event plans generated by source"), []string{"source"})
	m.planConfidence = auto.NewHistogramVec(m.histogramOpts("plan_confidence",
		"Confidence of generated plans", confidenceBuckets), []string{"source"})

	m.llmRequests = auto.NewCounterVec(m.counterOpts("llm_requests_total",
		"LLM extraction calls by outcome"), []string{"outcome"})
	m.llmLatency = auto.NewHistogram(m.histogramOpts("llm_latency_milliseconds",
		"LLM extraction latency in milliseconds", ms))
	m.llmFallbacks = auto.NewCounterVec(m.counterOpts("llm_fallbacks_total",
		"Times the heuristic plans were kept instead of the LLM result"), []string{"reason"})

	m.syllabusDocuments = auto.NewCounter(m.counterOpts("syllabus_documents_total",
		"Syllabus documents processed"))
	m.syllabusEvents = auto.NewCounterVec(m.counterOpts("syllabus_events_total",
		"Syllabus events extracted by type"), []string{"type"})
	m.syllabusImports = auto.NewCounterVec(m.counterOpts("syllabus_imports_total",
		"Syllabus events imported into a calendar by outcome"), []string{"outcome"})

	m.conflictChecks = auto.NewCounter(m.counterOpts("conflict_checks_total",
		"Conflict checks run"))
	m.conflicts = auto.NewCounterVec(m.counterOpts("conflicts_total",
		"Conflicts detected by type and severity"), []string{"type", "severity"})
	m.alternativesOffered = auto.NewCounter(m.counterOpts("alternatives_offered_total",
		"Alternative slots offered"))

	m.calendarRequests = auto.NewCounterVec(m.counterOpts("calendar_requests_total",
		"Calendar provider calls by provider, operation and status"), []string{"provider", "op", "status"})
	m.calendarLatency = auto.NewHistogramVec(m.histogramOpts("calendar_latency_milliseconds",
		"Calendar provider latency in milliseconds", ms), []string{"provider", "op"})

	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds",
		"Store operation latency in milliseconds", ms), []string{"op"})
	m.storeErrors = auto.NewCounterVec(m.counterOpts("store_errors_total",
		"Store operation errors"), []string{"op"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("audit_queue_size", "Audit entries waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("audit_queue_capacity", "Audit queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("audit_queue_utilization", "Audit queue fill ratio"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("audit_queue_enqueued_total", "Audit entries enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("audit_queue_dequeued_total", "Audit entries dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("audit_queue_enqueue_errors_total",
		"Audit entries dropped because the queue was full or closed"))
	m.queueProcessingLatency = auto.NewHistogram(m.histogramOpts("audit_queue_latency_milliseconds",
		"Time an audit entry waited in the queue", ms))

	m.workerCount = auto.NewGauge(m.gaugeOpts("audit_worker_count", "Configured audit workers"))
	m.workerActive = auto.NewGauge(m.gaugeOpts("audit_worker_active", "Audit workers writing an entry"))
	m.workerIdle = auto.NewGauge(m.gaugeOpts("audit_worker_idle", "Idle audit workers"))
	m.workerMessagesPerSecond = auto.NewGauge(m.gaugeOpts("audit_worker_messages_per_second",
		"Audit entries written per second"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("audit_worker_latency_milliseconds",
		"Audit entry write latency in milliseconds", ms))
	m.workerErrors = auto.NewCounter(m.counterOpts("audit_worker_errors_total", "Audit entries that failed to write"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", ms), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and type"), []string{"component", "error_type"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"HTTP errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Most recent GC pause in milliseconds", ms))
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// Planning.

// RecordAnalyzePath counts an analyze request by the path ("heuristic" or
// "llm") whose plans were returned.
func RecordAnalyzePath(path string) {
	globalManager.analyzeRequests.WithLabelValues(path).Inc()
}

// RecordPlan counts one generated plan and observes its confidence.
func RecordPlan(source string, confidence float64) {
	globalManager.plansGenerated.WithLabelValues(source).Inc()
	globalManager.planConfidence.WithLabelValues(source).Observe(confidence)
}

// LLM.

// RecordLLMRequest counts an LLM call by outcome and observes its latency.
func RecordLLMRequest(outcome string, latency time.Duration) {
	globalManager.llmRequests.WithLabelValues(outcome).Inc()
	globalManager.llmLatency.Observe(millis(latency))
}

// RecordLLMFallback counts a kept heuristic result, e.g. reason "error" or
// "low_confidence".
func RecordLLMFallback(reason string) {
	globalManager.llmFallbacks.WithLabelValues(reason).Inc()
}

// Syllabus.

// RecordSyllabusDocument counts a processed document.
func RecordSyllabusDocument() {
	globalManager.syllabusDocuments.Inc()
}

// RecordSyllabusEvent counts an extracted event by type.
func RecordSyllabusEvent(eventType string) {
	globalManager.syllabusEvents.WithLabelValues(eventType).Inc()
}

// RecordSyllabusImport counts an import attempt by outcome.
func RecordSyllabusImport(outcome string) {
	globalManager.syllabusImports.WithLabelValues(outcome).Inc()
}

// Conflicts.

// RecordConflictCheck counts a check and the alternatives it offered.
func RecordConflictCheck(alternatives int) {
	globalManager.conflictChecks.Inc()
	globalManager.alternativesOffered.Add(float64(alternatives))
}

// RecordConflict counts one detected conflict.
func RecordConflict(conflictType, severity string) {
	globalManager.conflicts.WithLabelValues(conflictType, severity).Inc()
}

// Calendar.

// RecordCalendarRequest counts a provider call and observes its latency.
func RecordCalendarRequest(provider, op string, latency time.Duration, err error) {
	globalManager.calendarRequests.WithLabelValues(provider, op, status(err)).Inc()
	globalManager.calendarLatency.WithLabelValues(provider, op).Observe(millis(latency))
}

// Store.

// RecordStoreOperation observes a store call and counts it if it failed.
func RecordStoreOperation(op string, latency time.Duration, err error) {
	globalManager.storeLatency.WithLabelValues(op).Observe(millis(latency))
	if err != nil {
		globalManager.storeErrors.WithLabelValues(op).Inc()
	}
}

// Audit queue.

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an enqueued entry.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeued entry.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a dropped entry.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency observes how long an entry waited.
func RecordQueueProcessingLatency(latency time.Duration) {
	globalManager.queueProcessingLatency.Observe(millis(latency))
}

// Audit workers.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdle.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the write rate.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency observes one write.
func RecordWorkerProcessingLatency(latency time.Duration) {
	globalManager.workerProcessingLatency.Observe(millis(latency))
}

// RecordWorkerError counts a failed write.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// HTTP.

// RecordHTTPRequest counts a request and observes its duration.
func RecordHTTPRequest(endpoint, method string, statusCode int, duration time.Duration) {
	code := strconv.Itoa(statusCode)
	globalManager.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(millis(duration))
}

// Errors.

// RecordErrorByComponent counts an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint counts an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes a GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global metrics live on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

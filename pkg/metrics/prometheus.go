// Package metrics provides Prometheus metrics for the risk assessment pipeline.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metric naming.
const (
	defaultNamespace = "penrisk"
	defaultSubsystem = "pipeline"
)

var (
	pointBuckets       = []float64{1, 4, 16, 32, 64, 128, 256, 512, 1024}
	probabilityBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}
	gcBuckets          = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
)

// Manager owns every metric of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// capture
	strokesCaptured  prometheus.Counter
	strokePoints     prometheus.Histogram
	strokesCancelled prometheus.Counter
	pointsDropped    prometheus.Counter

	// assessment
	submissions        prometheus.Counter
	submissionsDup     prometheus.Counter
	assessments        *prometheus.CounterVec
	assessmentsDegrade prometheus.Counter
	assessmentErrors   prometheus.Counter
	validationFailures prometheus.Counter
	assessmentLatency  prometheus.Histogram
	stageLatency       *prometheus.HistogramVec
	probability        prometheus.Histogram

	// repository
	storedAssessments  prometheus.Gauge
	riskLevelStored    *prometheus.GaugeVec
	repoUpdateLatency  prometheus.Histogram
	repoQueryLatency   prometheus.Histogram
	snapshotRebuild    prometheus.Histogram
	snapshotsPublished prometheus.Counter

	// queue
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueue      prometheus.Counter
	queueDequeue      prometheus.Counter
	queueEnqueueError prometheus.Counter
	queueLatency      prometheus.Histogram

	// worker
	workerCount      prometheus.Gauge
	workerActive     prometheus.Gauge
	workerIdle       prometheus.Gauge
	workerRate       prometheus.Gauge
	workerLatency    prometheus.Histogram
	workerErrorTotal prometheus.Counter

	// http
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// errors
	errorsByComponent *prometheus.CounterVec

	// system
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.strokesCaptured = m.counter("strokes_captured_total", "Total number of sealed strokes")
	m.strokePoints = m.histogram("stroke_points", "Points per sealed stroke", pointBuckets)
	m.strokesCancelled = m.counter("strokes_cancelled_total", "Total number of discarded in-progress strokes")
	m.pointsDropped = m.counter("points_dropped_total", "Points ignored because capture was paused")

	m.submissions = m.counter("submissions_total", "Sessions accepted for asynchronous assessment")
	m.submissionsDup = m.counter("submissions_duplicate_total", "Sessions rejected as already submitted")
	m.assessments = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "assessments_total", Help: "Completed assessments by risk level",
	}, []string{"risk_level"})
	m.assessmentsDegrade = m.counter("assessments_degraded_total", "Assessments that fell back to the neutral probability")
	m.assessmentErrors = m.counter("assessment_errors_total", "Assessments that failed or were cancelled")
	m.validationFailures = m.counter("validation_failures_total", "Sessions rejected by session validation")
	m.assessmentLatency = m.histogram("assessment_latency_milliseconds", "End-to-end assessment latency in milliseconds", m.histogramBuckets)
	m.stageLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "stage_latency_milliseconds", Help: "Pipeline stage latency in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"stage"})
	m.probability = m.histogram("risk_probability", "Distribution of final risk probabilities", probabilityBuckets)

	m.storedAssessments = m.gauge("stored_assessments", "Entries held by the assessment store")
	m.riskLevelStored = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "stored_risk_level", Help: "Stored completed assessments by risk level",
	}, []string{"risk_level"})
	m.repoUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Assessment store write latency in milliseconds", m.histogramBuckets)
	m.repoQueryLatency = m.histogram("repository_query_latency_milliseconds", "Assessment store read latency in milliseconds", m.histogramBuckets)
	m.snapshotRebuild = m.histogram("repository_snapshot_rebuild_duration_milliseconds", "Store summary rebuild duration in milliseconds", m.histogramBuckets)
	m.snapshotsPublished = m.counter("repository_snapshot_count_total", "Store summaries published")

	m.queueSize = m.gauge("queue_size", "Current number of queued jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueError = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.queueLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds", m.histogramBuckets)

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActive = m.gauge("worker_active_count", "Workers currently assessing a session")
	m.workerIdle = m.gauge("worker_idle_count", "Workers waiting for a job")
	m.workerRate = m.gauge("worker_messages_per_second", "Average jobs processed per second")
	m.workerLatency = m.histogram("worker_processing_latency_milliseconds", "Job processing latency in milliseconds", m.histogramBuckets)
	m.workerErrorTotal = m.counter("worker_errors_total", "Total number of failed jobs")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total", Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_request_duration_milliseconds", Help: "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_by_component_total", Help: "Total number of errors by component",
	}, []string{"component", "error_type"})

	m.systemMemory = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutines = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPause = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds", gcBuckets)
}

// Capture.

// RecordStrokeCaptured counts a sealed stroke and its size.
func RecordStrokeCaptured(points int) {
	globalManager.strokesCaptured.Inc()
	globalManager.strokePoints.Observe(float64(points))
}

// RecordStrokeCancelled counts a discarded in-progress stroke.
func RecordStrokeCancelled() { globalManager.strokesCancelled.Inc() }

// RecordPointDropped counts a point ignored while paused.
func RecordPointDropped() { globalManager.pointsDropped.Inc() }

// Assessment.

// RecordSubmission counts an accepted asynchronous submission.
func RecordSubmission() { globalManager.submissions.Inc() }

// RecordSubmissionDuplicate counts a resubmitted session id.
func RecordSubmissionDuplicate() { globalManager.submissionsDup.Inc() }

// RecordAssessment counts a completed assessment.
func RecordAssessment(level string, probability float64, degraded bool) {
	globalManager.assessments.WithLabelValues(level).Inc()
	globalManager.probability.Observe(probability)
	if degraded {
		globalManager.assessmentsDegrade.Inc()
	}
}

// RecordAssessmentError counts a failed or cancelled assessment.
func RecordAssessmentError() { globalManager.assessmentErrors.Inc() }

// RecordValidationFailure counts a session rejected before scoring.
func RecordValidationFailure() { globalManager.validationFailures.Inc() }

// RecordAssessmentLatency records end-to-end latency in milliseconds.
func RecordAssessmentLatency(latencyMs float64) { globalManager.assessmentLatency.Observe(latencyMs) }

// RecordStageLatency records one pipeline stage's latency in milliseconds.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(latencyMs)
}

// Repository.

// UpdateStoredAssessments sets the number of stored entries.
func UpdateStoredAssessments(count int) { globalManager.storedAssessments.Set(float64(count)) }

// UpdateStoredRiskLevel sets the stored count for one risk level.
func UpdateStoredRiskLevel(level string, count int) {
	globalManager.riskLevelStored.WithLabelValues(level).Set(float64(count))
}

// RecordRepositoryUpdateLatency records store write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) { globalManager.repoUpdateLatency.Observe(latencyMs) }

// RecordRepositoryQueryLatency records store read latency.
func RecordRepositoryQueryLatency(latencyMs float64) { globalManager.repoQueryLatency.Observe(latencyMs) }

// RecordRepositorySnapshot records a published store summary.
func RecordRepositorySnapshot(rebuildMs float64) {
	globalManager.snapshotRebuild.Observe(rebuildMs)
	globalManager.snapshotsPublished.Inc()
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueue.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeue.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueError.Inc() }

// RecordQueueProcessingLatency records enqueue latency.
func RecordQueueProcessingLatency(latencyMs float64) { globalManager.queueLatency.Observe(latencyMs) }

// Worker.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActive.Set(float64(count)) }

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) { globalManager.workerIdle.Set(float64(count)) }

// UpdateWorkerMessagesPerSecond sets the average jobs processed per second.
func UpdateWorkerMessagesPerSecond(rate float64) { globalManager.workerRate.Set(rate) }

// RecordWorkerProcessingLatency records job processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) { globalManager.workerLatency.Observe(latencyMs) }

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrorTotal.Inc() }

// HTTP.

// RecordHTTPRequest records a served request and its duration.
func RecordHTTPRequest(endpoint, method string, statusCode int, durationMs float64) {
	code := strconv.Itoa(statusCode)
	globalManager.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(durationMs)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemory.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutines.Set(float64(count)) }

// RecordSystemGCPauseTime records the average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPause.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

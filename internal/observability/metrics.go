// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Analysis metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	DegradedResults   *prometheus.CounterVec

	// Ingestion metrics
	RecordsReceived   prometheus.Counter
	RecordsRejected   *prometheus.CounterVec
	RecordsStored     prometheus.Counter
	SnapshotsStored   prometheus.Counter
	SnapshotsSkipped  prometheus.Counter
	EnrichmentLatency prometheus.Histogram
	WSMessageLatency  prometheus.Histogram
	WSReconnects      prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Reporting metrics
	ReportsGenerated *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates a Metrics instance registered with reg.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "ecommerce_trend_lab"
	}
	f := promauto.With(reg)

	return &Metrics{
		// Analysis metrics
		OperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "operations_total",
			Help:      "Total number of ranking and trend operations by name",
		}, []string{"operation"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "operation_duration_seconds",
			Help:      "Ranking and trend operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DegradedResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "degraded_results_total",
			Help:      "Total number of operations that returned an empty result after a failure",
		}, []string{"operation"}),

		// Ingestion metrics
		RecordsReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_received_total",
			Help:      "Total number of raw product records received",
		}),
		RecordsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_rejected_total",
			Help:      "Total number of product records rejected by reason",
		}, []string{"reason"}),
		RecordsStored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_stored_total",
			Help:      "Total number of product records upserted",
		}),
		SnapshotsStored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshots_stored_total",
			Help:      "Total number of history snapshots appended",
		}),
		SnapshotsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshots_skipped_total",
			Help:      "Total number of history snapshots skipped as duplicates",
		}),
		EnrichmentLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "enrichment_latency_seconds",
			Help:      "Per-record enrichment latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		WSMessageLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "ws_message_latency_seconds",
			Help:      "WebSocket message processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		WSReconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "ws_reconnects_total",
			Help:      "Total number of WebSocket reconnect attempts",
		}),

		// Database metrics
		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// HTTP metrics
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// Reporting metrics
		ReportsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports rendered by format",
		}, []string{"format"}),

		// Health metrics
		LastSuccessfulIngestion: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion batch",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// ObserveOperation counts an analysis operation and records its duration.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordDegraded counts an operation that fell back to an empty result.
func (m *Metrics) RecordDegraded(operation string) {
	if m == nil {
		return
	}
	m.DegradedResults.WithLabelValues(operation).Inc()
}

// RecordReceived increments the records received counter.
func (m *Metrics) RecordReceived() {
	if m == nil {
		return
	}
	m.RecordsReceived.Inc()
}

// RecordRejected records a rejected record.
func (m *Metrics) RecordRejected(reason string) {
	if m == nil {
		return
	}
	m.RecordsRejected.WithLabelValues(reason).Inc()
}

// RecordStored records a persisted product and whether its snapshot was new.
func (m *Metrics) RecordStored(snapshotStored bool) {
	if m == nil {
		return
	}
	m.RecordsStored.Inc()
	if snapshotStored {
		m.SnapshotsStored.Inc()
	} else {
		m.SnapshotsSkipped.Inc()
	}
	m.LastSuccessfulIngestion.SetToCurrentTime()
}

// RecordEnrichment records per-record enrichment latency.
func (m *Metrics) RecordEnrichment(seconds float64) {
	if m == nil {
		return
	}
	m.EnrichmentLatency.Observe(seconds)
}

// RecordWSMessage records WebSocket message handling latency.
func (m *Metrics) RecordWSMessage(seconds float64) {
	if m == nil {
		return
	}
	m.WSMessageLatency.Observe(seconds)
}

// RecordWSReconnect increments the reconnect counter.
func (m *Metrics) RecordWSReconnect() {
	if m == nil {
		return
	}
	m.WSReconnects.Inc()
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordReport increments the reports generated counter.
func (m *Metrics) RecordReport(format string) {
	if m == nil {
		return
	}
	m.ReportsGenerated.WithLabelValues(format).Inc()
}

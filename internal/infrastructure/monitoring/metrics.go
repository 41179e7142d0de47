package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
	StatementUploads *prometheus.CounterVec
	UploadRows       prometheus.Histogram
	EngineLatency    *prometheus.HistogramVec
	CacheLookups     *prometheus.CounterVec
	RateLimitHits    prometheus.Counter
}

// NewMetrics creates the metrics and registers them on the default
// registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the metrics on the given registerer.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finhealth_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finhealth_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		StatementUploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finhealth_statement_uploads_total",
				Help: "Total number of statement uploads by outcome.",
			},
			[]string{"format", "result"},
		),
		UploadRows: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "finhealth_statement_upload_rows",
				Help:    "Monthly rows extracted per accepted upload.",
				Buckets: []float64{1, 3, 6, 12, 24, 60, 120},
			},
		),
		EngineLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finhealth_engine_compute_duration_seconds",
				Help:    "Latency of analytics engine computations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"engine"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finhealth_summary_cache_lookups_total",
				Help: "Summary cache lookups by outcome.",
			},
			[]string{"kind", "outcome"},
		),
		RateLimitHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "finhealth_rate_limit_hits_total",
				Help: "Total number of rejected rate-limited requests.",
			},
		),
	}
}

// RecordHTTPRequest records one completed request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUpload records an upload attempt and, when accepted, its row count.
func (m *Metrics) RecordUpload(format, result string, rows int) {
	m.StatementUploads.WithLabelValues(format, result).Inc()
	if result == "accepted" {
		m.UploadRows.Observe(float64(rows))
	}
}

// RecordEngineCompute records one analytics engine run.
func (m *Metrics) RecordEngineCompute(engine string, duration time.Duration) {
	m.EngineLatency.WithLabelValues(engine).Observe(duration.Seconds())
}

// RecordCacheLookup records a summary cache hit or miss.
func (m *Metrics) RecordCacheLookup(kind, outcome string) {
	m.CacheLookups.WithLabelValues(kind, outcome).Inc()
}

// RecordRateLimitHit records a rejected request.
func (m *Metrics) RecordRateLimitHit() {
	m.RateLimitHits.Inc()
}

package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

const metricsNamespace = "seguimiento"

// MetricsService owns the Prometheus registry. All methods are safe on a nil receiver so
// components can be built without instrumentation.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec
	cacheOps     *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
	dbDuration   *prometheus.HistogramVec
	reportJobs   *prometheus.CounterVec

	hits, misses, requests atomic.Uint64
	requestNanos           atomic.Uint64
	dbQueries, dbNanos     atomic.Uint64
}

// NewMetricsService registers the service collectors plus the Go runtime collector.
func NewMetricsService() *MetricsService {
	m := &MetricsService{registry: prometheus.NewRegistry()}

	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	m.httpTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route template and status.",
	}, []string{"method", "path", "status"})
	m.cacheOps = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "cache",
		Name:      "operation_seconds",
		Help:      "Dashboard cache latency by operation.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
	}, []string{"op"})
	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Dashboard cache lookups by result.",
	}, []string{"result"})
	m.dbDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Duration of instrumented database work.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"query"})
	m.reportJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "reports",
		Name:      "jobs_total",
		Help:      "Report jobs reaching a terminal status.",
	}, []string{"type", "status"})
	hitRatio := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "cache",
		Name:      "hit_ratio",
		Help:      "Share of dashboard cache lookups served from Redis.",
	}, m.hitRatio)

	m.registry.MustRegister(
		m.httpDuration, m.httpTotal, m.cacheOps, m.cacheLookups, m.dbDuration, m.reportJobs, hitRatio,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, path, code).Inc()
	m.requests.Add(1)
	m.requestNanos.Add(uint64(duration))
}

// RecordCacheOperation records a cache read and whether it hit.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheOps.WithLabelValues("get").Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.hits.Add(1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	m.misses.Add(1)
}

func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheOps.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveDBQuery records the duration of a labelled unit of database work.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.dbQueries.Add(1)
	m.dbNanos.Add(uint64(duration))
}

// ObserveReportJob counts a report job reaching a terminal status.
func (m *MetricsService) ObserveReportJob(reportType models.ReportType, status models.ReportStatus) {
	if m == nil {
		return
	}
	m.reportJobs.WithLabelValues(string(reportType), string(status)).Inc()
}

func (m *MetricsService) hitRatio() float64 {
	hits, misses := m.hits.Load(), m.misses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// Snapshot summarises the counters for the health endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{GeneratedAt: time.Now().UTC()}
	}
	snap := models.SystemMetrics{
		CacheHitRatio: m.hitRatio(),
		CacheHits:     m.hits.Load(),
		CacheMisses:   m.misses.Load(),
		RequestsTotal: m.requests.Load(),
		DBQueryCount:  m.dbQueries.Load(),
		Goroutines:    runtime.NumGoroutine(),
		GeneratedAt:   time.Now().UTC(),
	}
	if snap.RequestsTotal > 0 {
		snap.AverageRequestDurationMs = millis(m.requestNanos.Load() / snap.RequestsTotal)
	}
	if snap.DBQueryCount > 0 {
		snap.AverageDBQueryDurationMs = millis(m.dbNanos.Load() / snap.DBQueryCount)
	}
	return snap
}

func millis(nanos uint64) float64 {
	return float64(nanos) / float64(time.Millisecond)
}

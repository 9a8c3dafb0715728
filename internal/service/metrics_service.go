package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import outcomes reported to the imports_total counter.
const (
	ImportOutcomeSuccess     = "success"
	ImportOutcomeDecodeError = "decode_failure"
	ImportOutcomeUnsupported = "unsupported"
	ImportOutcomeTooLarge    = "too_large"
	ImportOutcomeNotFound    = "not_found"
	ImportOutcomePersistence = "persistence_failure"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	importTotal     *prometheus.CounterVec
	importNames     *prometheus.CounterVec
	flushDuration   prometheus.Observer
	flushBytes      prometheus.Gauge
	flushFailures   prometheus.Counter
	students        prometheus.Gauge

	requestCount       uint64
	flushCount         uint64
	flushFailureCount  uint64
	importCount        uint64
	importedNamesCount uint64
}

// MetricsSnapshot is the JSON view of the in-process counters.
type MetricsSnapshot struct {
	RequestsTotal uint64    `json:"requests_total"`
	FlushesTotal  uint64    `json:"flushes_total"`
	FlushFailures uint64    `json:"flush_failures"`
	ImportsTotal  uint64    `json:"imports_total"`
	ImportedNames uint64    `json:"imported_names"`
	Goroutines    int       `json:"goroutines"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	importTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_imports_total",
		Help: "Roster imports by outcome",
	}, []string{"outcome"})

	importNames := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_import_names_total",
		Help: "Candidate names seen by imports, by result",
	}, []string{"result"})

	flushDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roster_flush_duration_seconds",
		Help:    "Duration of full roster snapshot writes",
		Buckets: prometheus.DefBuckets,
	})

	flushBytes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_snapshot_bytes",
		Help: "Size of the last written roster snapshot",
	})

	flushFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_flush_failures_total",
		Help: "Total failed roster snapshot writes",
	})

	students := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_students",
		Help: "Students across all classes after the last flush",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, importTotal, importNames, flushDuration, flushBytes, flushFailures, students, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		importTotal:     importTotal,
		importNames:     importNames,
		flushDuration:   flushDuration,
		flushBytes:      flushBytes,
		flushFailures:   flushFailures,
		students:        students,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveFlush records one full snapshot write.
func (m *MetricsService) ObserveFlush(size, students int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.flushDuration.Observe(duration.Seconds())
	if err != nil {
		m.flushFailures.Inc()
		atomic.AddUint64(&m.flushFailureCount, 1)
		return
	}
	m.flushBytes.Set(float64(size))
	m.students.Set(float64(students))
	atomic.AddUint64(&m.flushCount, 1)
}

// RecordImport records the outcome of one import and its name counts.
func (m *MetricsService) RecordImport(outcome string, added, skipped, rejected int) {
	if m == nil {
		return
	}
	m.importTotal.WithLabelValues(outcome).Inc()
	m.importNames.WithLabelValues("added").Add(float64(added))
	m.importNames.WithLabelValues("skipped").Add(float64(skipped))
	m.importNames.WithLabelValues("rejected").Add(float64(rejected))
	atomic.AddUint64(&m.importCount, 1)
	atomic.AddUint64(&m.importedNamesCount, uint64(added))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		RequestsTotal: atomic.LoadUint64(&m.requestCount),
		FlushesTotal:  atomic.LoadUint64(&m.flushCount),
		FlushFailures: atomic.LoadUint64(&m.flushFailureCount),
		ImportsTotal:  atomic.LoadUint64(&m.importCount),
		ImportedNames: atomic.LoadUint64(&m.importedNamesCount),
		Goroutines:    runtime.NumGoroutine(),
		GeneratedAt:   time.Now().UTC(),
	}
}

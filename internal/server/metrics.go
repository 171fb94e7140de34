package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. Each server
// carries its own registry so multiple instances never collide.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	UploadsTotal    *prometheus.CounterVec
	UploadBytes     prometheus.Counter
}

// NewMetrics creates a registry with process/go collectors and registers
// all application metrics on it.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediabank_http_requests_total",
			Help: "Total number of HTTP requests by method and status",
		}, []string{"method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mediabank_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediabank_uploads_total",
			Help: "Total number of file ingest attempts by outcome",
		}, []string{"outcome"}),
		UploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediabank_upload_bytes_total",
			Help: "Total bytes accepted into the file store",
		}),
	}
}

// Instrument records request counts and latency around the handler.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// RecordUpload tracks one ingest outcome.
func (m *Metrics) RecordUpload(ok bool, bytes int64) {
	outcome := "stored"
	if !ok {
		outcome = "rejected"
	}
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	if ok {
		m.UploadBytes.Add(float64(bytes))
	}
}

// Handler exposes the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	queryTotal     *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	queryEvidence  *prometheus.HistogramVec
	retrievalTotal *prometheus.CounterVec
	retrievalHits  *prometheus.HistogramVec
	uploadsTotal   *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rag",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "query",
			Name:      "total",
			Help:      "Total queries by retrieval mode and outcome.",
		},
		[]string{"service", "mode", "outcome"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "End-to-end query duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"service", "mode"},
	)
	queryEvidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "query",
			Name:      "evidence_blocks",
			Help:      "Evidence blocks attached to answered queries.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8, 13},
		},
		[]string{"service", "mode"},
	)
	retrievalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "retrieval",
			Name:      "adapter_calls_total",
			Help:      "Retrieval adapter calls by adapter and status.",
		},
		[]string{"service", "adapter", "status"},
	)
	retrievalHits := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "retrieval",
			Name:      "adapter_hits",
			Help:      "Hits returned per successful adapter call.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 20, 50},
		},
		[]string{"service", "adapter"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Accepted document uploads.",
		},
		[]string{"service"},
	)
	rejectedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "http",
			Name:      "rejected_total",
			Help:      "Requests rejected by traffic control.",
		},
		[]string{"service", "reason"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		queryTotal,
		queryDuration,
		queryEvidence,
		retrievalTotal,
		retrievalHits,
		uploadsTotal,
		rejectedTotal,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		queryTotal:      queryTotal,
		queryDuration:   queryDuration,
		queryEvidence:   queryEvidence,
		retrievalTotal:  retrievalTotal,
		retrievalHits:   retrievalHits,
		uploadsTotal:    uploadsTotal,
		rejectedTotal:   rejectedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

// RecordQuery counts one finished query. outcome is the answer outcome or
// "error".
func (m *HTTPServerMetrics) RecordQuery(service, mode, outcome string, evidence int, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.queryTotal.WithLabelValues(service, mode, outcome).Inc()
	m.queryDuration.WithLabelValues(service, mode).Observe(duration.Seconds())
	if outcome == "answered" {
		m.queryEvidence.WithLabelValues(service, mode).Observe(float64(evidence))
	}
}

func (m *HTTPServerMetrics) RecordUpload(service string) {
	m.uploadsTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordRejected(service, reason string) {
	m.rejectedTotal.WithLabelValues(service, reason).Inc()
}

// RetrievalObserver returns an observer that records per-adapter outcomes
// under the given service label.
func (m *HTTPServerMetrics) RetrievalObserver(service string) *RetrievalObserver {
	return &RetrievalObserver{metrics: m, service: service}
}

type RetrievalObserver struct {
	metrics *HTTPServerMetrics
	service string
}

func (o *RetrievalObserver) ObserveRetrieval(adapter string, hits int, err error) {
	if err != nil {
		o.metrics.retrievalTotal.WithLabelValues(o.service, adapter, "error").Inc()
		return
	}
	o.metrics.retrievalTotal.WithLabelValues(o.service, adapter, "ok").Inc()
	o.metrics.retrievalHits.WithLabelValues(o.service, adapter).Observe(float64(hits))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}

package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	salesPaid       *prometheus.CounterVec
	salesPaidCents  *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "celtis_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "celtis_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	salesPaid := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "celtis_pos_sales_paid_total",
		Help: "Paid sales by payment method.",
	}, []string{"method"})
	salesPaidCents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "celtis_pos_sales_paid_cents_total",
		Help: "Paid amount in cents by payment method.",
	}, []string{"method"})
	storageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "celtis_storage_write_failures_total",
		Help: "Failed storage calls by store and operation.",
	}, []string{"store", "op"})
	registry.MustRegister(requests, duration, salesPaid, salesPaidCents, storageFailures)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		salesPaid:       salesPaid,
		salesPaidCents:  salesPaidCents,
		storageFailures: storageFailures,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// RecordSalePaid counts a settled sale.
func (m *Metrics) RecordSalePaid(method string, amountCents int64) {
	if m == nil {
		return
	}
	m.salesPaid.WithLabelValues(method).Inc()
	if amountCents > 0 {
		m.salesPaidCents.WithLabelValues(method).Add(float64(amountCents))
	}
}

// RecordStorageFailure counts a failed read or write against a store.
func (m *Metrics) RecordStorageFailure(store, op string) {
	if m == nil {
		return
	}
	m.storageFailures.WithLabelValues(store, op).Inc()
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

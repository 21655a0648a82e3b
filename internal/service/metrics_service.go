package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the engine.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	availabilityDuration prometheus.Histogram
	cacheHits            prometheus.Counter
	cacheMisses          prometheus.Counter

	holdsCreated   prometheus.Counter
	holdsFinalized prometheus.Counter
	holdsCancelled prometheus.Counter
	holdsSwept     prometheus.Counter

	transitionsTotal *prometheus.CounterVec
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

	availabilityDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "availability_query_duration_seconds",
		Help:    "Duration of availability resolver queries",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "availability_cache_hits_total",
		Help: "Total availability cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "availability_cache_misses_total",
		Help: "Total availability cache misses",
	})

	holdsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "holds_created_total",
		Help: "Total payment holds created",
	})

	holdsFinalized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "holds_finalized_total",
		Help: "Total payment holds finalized into confirmed reservations",
	})

	holdsCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "holds_cancelled_total",
		Help: "Total payment holds cancelled",
	})

	holdsSwept := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "holds_swept_total",
		Help: "Total stale payment holds removed by the sweep",
	})

	transitionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_transitions_total",
		Help: "Total reservation status transitions",
	}, []string{"from", "to"})

	registry.MustRegister(
		requestDuration, requestTotal,
		availabilityDuration, cacheHits, cacheMisses,
		holdsCreated, holdsFinalized, holdsCancelled, holdsSwept,
		transitionsTotal,
	)

	return &MetricsService{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		availabilityDuration: availabilityDuration,
		cacheHits:            cacheHits,
		cacheMisses:          cacheMisses,
		holdsCreated:         holdsCreated,
		holdsFinalized:       holdsFinalized,
		holdsCancelled:       holdsCancelled,
		holdsSwept:           holdsSwept,
		transitionsTotal:     transitionsTotal,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveAvailabilityQuery records a resolver round trip.
func (s *MetricsService) ObserveAvailabilityQuery(duration time.Duration) {
	if s == nil {
		return
	}
	s.availabilityDuration.Observe(duration.Seconds())
}

// RecordCacheLookup tracks availability cache effectiveness.
func (s *MetricsService) RecordCacheLookup(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
}

// RecordHoldCreated increments the hold creation counter.
func (s *MetricsService) RecordHoldCreated() {
	if s != nil {
		s.holdsCreated.Inc()
	}
}

// RecordHoldFinalized increments the hold finalization counter.
func (s *MetricsService) RecordHoldFinalized() {
	if s != nil {
		s.holdsFinalized.Inc()
	}
}

// RecordHoldCancelled increments the hold cancellation counter.
func (s *MetricsService) RecordHoldCancelled() {
	if s != nil {
		s.holdsCancelled.Inc()
	}
}

// RecordHoldsSwept adds to the sweep counter.
func (s *MetricsService) RecordHoldsSwept(count int64) {
	if s != nil && count > 0 {
		s.holdsSwept.Add(float64(count))
	}
}

// RecordTransition tracks a successful state machine edge.
func (s *MetricsService) RecordTransition(from, to string) {
	if s != nil {
		s.transitionsTotal.WithLabelValues(from, to).Inc()
	}
}

// Package metrics exposes Prometheus counters for HTTP traffic and for the
// session and registration events published on the bus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/staff-registry/internal/core/events"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "staff_registry"

type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	sessionEvents      *prometheus.CounterVec
	registrationEvents *prometheus.CounterVec
	notificationErrors *prometheus.CounterVec
}

// New builds a private registry with Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Logins, refreshes, revocations and detected token reuse.",
		}, []string{"type"}),
		registrationEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_events_total",
			Help:      "Submitted, accepted and rejected registration requests.",
		}, []string{"type"}),
		notificationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Applicant notifications that could not be delivered.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.sessionEvents,
		m.registrationEvents,
		m.notificationErrors,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Subscriber is satisfied by *events.EventBus.
type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// Subscribe counts every session, registration and notification event.
func (m *Metrics) Subscribe(bus Subscriber) {
	for _, t := range []string{
		events.EventTypeSessionLogin,
		events.EventTypeSessionLoginFailed,
		events.EventTypeSessionRefreshed,
		events.EventTypeSessionReuseDetected,
		events.EventTypeSessionRevoked,
	} {
		bus.Subscribe(t, m.countSession)
	}
	for _, t := range []string{
		events.EventTypeRegistrationSubmitted,
		events.EventTypeRegistrationAccepted,
		events.EventTypeRegistrationRejected,
	} {
		bus.Subscribe(t, m.countRegistration)
	}
	bus.Subscribe(events.EventTypeNotificationFailed, m.countNotificationFailure)
}

func (m *Metrics) countSession(_ context.Context, e events.Event) error {
	m.sessionEvents.WithLabelValues(e.EventType()).Inc()
	return nil
}

func (m *Metrics) countRegistration(_ context.Context, e events.Event) error {
	m.registrationEvents.WithLabelValues(e.EventType()).Inc()
	return nil
}

func (m *Metrics) countNotificationFailure(_ context.Context, e events.Event) error {
	outcome := "unknown"
	if nf, ok := e.(*events.NotificationFailedEvent); ok && nf.Outcome != "" {
		outcome = nf.Outcome
	}
	m.notificationErrors.WithLabelValues(outcome).Inc()
	return nil
}

// Instrument records rate, latency and in-flight requests. Requests are
// labelled by chi route pattern so ids in paths do not explode cardinality.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := strconv.Itoa(sw.code)

		m.httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

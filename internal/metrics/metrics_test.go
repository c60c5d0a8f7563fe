package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/staff-registry/internal/core/events"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Metrics Suite")
}

var _ = Describe("Metrics", func() {
	var m *Metrics

	BeforeEach(func() {
		m = New()
	})

	It("counts bus events by type", func() {
		bus := events.NewEventBus(nil)
		m.Subscribe(bus)
		ctx := context.Background()

		Expect(bus.PublishSync(ctx, events.NewSessionEvent(events.EventTypeSessionLogin, "a", "t", "ip", ""))).To(Succeed())
		Expect(bus.PublishSync(ctx, events.NewSessionEvent(events.EventTypeSessionReuseDetected, "a", "t", "ip", ""))).To(Succeed())
		Expect(bus.PublishSync(ctx, events.NewSessionEvent(events.EventTypeSessionReuseDetected, "a", "t", "ip", ""))).To(Succeed())
		Expect(bus.PublishSync(ctx, events.NewRegistrationEvent(events.EventTypeRegistrationAccepted, "r", "a", "e", "Nurse"))).To(Succeed())
		Expect(bus.PublishSync(ctx, events.NewNotificationFailedEvent("REJECT", errors.New("down")))).To(Succeed())

		Expect(testutil.ToFloat64(m.sessionEvents.WithLabelValues(events.EventTypeSessionLogin))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.sessionEvents.WithLabelValues(events.EventTypeSessionReuseDetected))).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.registrationEvents.WithLabelValues(events.EventTypeRegistrationAccepted))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.notificationErrors.WithLabelValues("REJECT"))).To(Equal(1.0))
	})

	It("labels requests by route pattern", func() {
		r := chi.NewRouter()
		r.Use(m.Instrument)
		r.Get("/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/users/abc", nil))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/users/def", nil))

		Expect(testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/admin/users/{id}", "404"))).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.httpInFlight)).To(Equal(0.0))
	})

	It("serves the exposition format", func() {
		m.sessionEvents.WithLabelValues(events.EventTypeSessionLogin).Inc()

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		body, _ := io.ReadAll(rec.Body)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring("staff_registry_session_events_total"))
		Expect(string(body)).To(ContainSubstring("go_goroutines"))
	})
})

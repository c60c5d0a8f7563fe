package registration_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/registration"
	registrationPostgres "github.com/frahmantamala/staff-registry/internal/registration/postgres"
	"github.com/frahmantamala/staff-registry/internal/transport"
	userPostgres "github.com/frahmantamala/staff-registry/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registration Handler Integration", func() {
	var (
		router   chi.Router
		notifier *fakeNotifier
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db := openDB()
		notifier = &fakeNotifier{}

		service := registration.NewService(registration.ServiceDeps{
			Requests: registrationPostgres.NewRequestRepository(db),
			Accounts: userPostgres.NewAccountRepository(db),
			Hasher:   stubHasher{},
			Roles:    stubRoles{"Nurse": true},
			Notifier: notifier,
			Logger:   slogger,
		})
		handler := registration.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Post("/auth/signup", handler.Signup)
		router.Post("/admin/auth/signup", handler.AdminSignup)
		router.Get("/admin/requests", handler.ListRequests)
		router.Get("/admin/requests/{id}", handler.GetRequest)
		router.Post("/admin/requests/{id}/accept", handler.AcceptRequest)
		router.Post("/admin/requests/{id}/reject", handler.RejectRequest)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	const signup = `{"reg_no":"R-1","username":"ann","email":"ann@x.com","password":"pw","hospital":"General"}`

	submit := func() string {
		rec := do(http.MethodPost, "/auth/signup", signup)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var resp registration.SubmitResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return resp.ID
	}

	It("submits without echoing the password", func() {
		rec := do(http.MethodPost, "/auth/signup", signup)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring(registration.MessageSubmitted))
		Expect(rec.Body.String()).NotTo(ContainSubstring("hashed:pw"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("password"))
	})

	It("answers duplicate submissions with 409", func() {
		submit()
		rec := do(http.MethodPost, "/auth/signup", signup)
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeRequestPending)))
	})

	It("lists and fetches requests", func() {
		id := submit()

		rec := do(http.MethodGet, "/admin/requests", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var list []registration.RequestSummary
		Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
		Expect(list).To(HaveLen(1))

		rec = do(http.MethodGet, "/admin/requests/"+id, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("ann@x.com"))

		rec = do(http.MethodGet, "/admin/requests/missing", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("accepts with a warning when mail fails", func() {
		id := submit()
		notifier.err = http.ErrHandlerTimeout

		rec := do(http.MethodPost, "/admin/requests/"+id+"/accept", `{"role":"Nurse"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var result registration.AcceptResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Role).To(Equal("Nurse"))
		Expect(result.Warning).To(Equal(registration.WarningNotificationFailed))
	})

	It("rejects a request", func() {
		id := submit()
		rec := do(http.MethodPost, "/admin/requests/"+id+"/reject", `{"reason":"duplicate"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].Reason).To(Equal("duplicate"))
	})

	It("bootstraps an administrator", func() {
		rec := do(http.MethodPost, "/admin/auth/signup", `{"reg_no":"A-1","username":"root","email":"root@x.com","password":"pw"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring("System Admin"))
	})
})

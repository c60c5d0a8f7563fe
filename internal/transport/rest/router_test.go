package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/auth"
	authPostgres "github.com/frahmantamala/staff-registry/internal/auth/postgres"
	accountDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/account"
	hospitalDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/hospital"
	registrationDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/registration"
	roleDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/role"
	sessionDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/session"
	"github.com/frahmantamala/staff-registry/internal/core/events"
	"github.com/frahmantamala/staff-registry/internal/hospital"
	hospitalPostgres "github.com/frahmantamala/staff-registry/internal/hospital/postgres"
	"github.com/frahmantamala/staff-registry/internal/metrics"
	"github.com/frahmantamala/staff-registry/internal/notification"
	"github.com/frahmantamala/staff-registry/internal/registration"
	registrationPostgres "github.com/frahmantamala/staff-registry/internal/registration/postgres"
	"github.com/frahmantamala/staff-registry/internal/transport"
	"github.com/frahmantamala/staff-registry/internal/transport/middleware"
	"github.com/frahmantamala/staff-registry/internal/user"
	userPostgres "github.com/frahmantamala/staff-registry/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type recordingNotifier struct {
	outcomes []notification.Outcome
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, outcome notification.Outcome, _, _ string) error {
	n.outcomes = append(n.outcomes, outcome)
	return nil
}

func openDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)

	Expect(db.AutoMigrate(
		&accountDatamodel.Account{},
		&registrationDatamodel.Request{},
		&sessionDatamodel.RefreshToken{},
		&roleDatamodel.RolePermission{},
		&hospitalDatamodel.Hospital{},
	)).To(Succeed())
	return db
}

func buildRouter(cfg RouterConfig, notifier notification.Notifier) *chi.Mux {
	lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx := context.Background()
	db := openDB()
	bus := events.NewEventBus(lg)

	roles := authPostgres.NewRoleRepository(db)
	Expect(roles.Upsert(ctx, user.RoleSystemAdmin, 100)).To(Succeed())
	Expect(roles.Upsert(ctx, "Nurse", 10)).To(Succeed())

	hasher := auth.NewBcryptHasher(4)
	permissions := auth.NewPermissionChecker(roles, 100, lg)
	accounts := userPostgres.NewAccountRepository(db)

	authService := auth.NewService(auth.ServiceDeps{
		Accounts:    accounts,
		Ledger:      auth.NewLedger(authPostgres.NewRefreshTokenRepository(db), time.Hour, lg),
		Tokens:      auth.NewJWTTokenGenerator(strings.Repeat("s", 32), 15*time.Minute),
		Hasher:      hasher,
		Permissions: permissions,
		Publisher:   bus,
		Logger:      lg,
	})

	userService := user.NewService(accounts, hasher, permissions, lg)
	userService.SetSessionRevoker(authService)

	registrationService := registration.NewService(registration.ServiceDeps{
		Requests:  registrationPostgres.NewRequestRepository(db),
		Accounts:  accounts,
		Hasher:    hasher,
		Roles:     permissions,
		Notifier:  notifier,
		Publisher: bus,
		Logger:    lg,
	})

	m := metrics.New()
	m.Subscribe(bus)

	base := transport.NewBaseHandler(lg)
	router := chi.NewRouter()
	RegisterAllRoutes(router, Handlers{
		Auth:         auth.NewHandler(base, authService, internal.CookieConfig{Name: "refreshToken", Secure: true, SameSite: "strict"}),
		RBAC:         authService.RBACAuthorization(),
		User:         user.NewHandler(base, userService),
		Registration: registration.NewHandler(base, registrationService),
		Hospital:     hospital.NewHandler(base, hospital.NewService(hospitalPostgres.NewHospitalRepository(db), lg)),
		Notification: notification.NewHandler(base, notification.MustRenderer()),
		Health:       NewHealthHandler(nil),
		Metrics:      m,
	}, cfg, lg)
	return router
}

type client struct {
	router http.Handler
}

func (c client) do(method, path, body, bearer string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	return nil
}

func accessToken(rec *httptest.ResponseRecorder) string {
	var resp auth.SessionResponse
	Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
	return resp.AccessToken.Token
}

func errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body.Error.Code
}

var _ = Describe("Router", func() {
	var (
		c        client
		notifier *recordingNotifier
	)

	BeforeEach(func() {
		notifier = &recordingNotifier{}
		c = client{router: buildRouter(RouterConfig{AllowAdminSignup: true, Development: true, MetricsPath: "/metrics"}, notifier)}
	})

	login := func(email, password string) *httptest.ResponseRecorder {
		rec := c.do(http.MethodPost, "/api/v1/auth/login", `{"email":"`+email+`","password":"`+password+`"}`, "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		return rec
	}

	bootstrapAdmin := func() string {
		rec := c.do(http.MethodPost, "/api/v1/admin/auth/signup", `{"reg_no":"A-1","username":"root","email":"root@x.com","password":"rootpw"}`, "", nil)
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		return accessToken(login("root@x.com", "rootpw"))
	}

	It("walks an applicant from signup to an active session", func() {
		admin := bootstrapAdmin()

		rec := c.do(http.MethodPost, "/api/v1/auth/signup", `{"reg_no":"N-7","username":"nina","email":"nina@x.com","password":"ninapw","hospital":"General"}`, "", nil)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		rec = c.do(http.MethodGet, "/api/v1/admin/requests", "", admin, nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var pending []registration.RequestSummary
		Expect(json.Unmarshal(rec.Body.Bytes(), &pending)).To(Succeed())
		Expect(pending).To(HaveLen(1))

		rec = c.do(http.MethodPost, "/api/v1/admin/requests/"+pending[0].ID+"/accept", `{"role":"Nurse"}`, admin, nil)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		Expect(notifier.outcomes).To(Equal([]notification.Outcome{notification.OutcomeAccept}))

		rec = login("nina@x.com", "ninapw")
		nurse := accessToken(rec)

		rec = c.do(http.MethodGet, "/api/v1/users/me", "", nurse, nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"role":"Nurse"`))

		rec = c.do(http.MethodGet, "/api/v1/admin/requests", "", nurse, nil)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("detects a replayed refresh token and burns the chain", func() {
		bootstrapAdmin()
		first := refreshCookie(login("root@x.com", "rootpw"))
		Expect(first).NotTo(BeNil())
		Expect(first.HttpOnly).To(BeTrue())

		rec := c.do(http.MethodPost, "/api/v1/auth/refresh-token", "", "", first)
		Expect(rec.Code).To(Equal(http.StatusOK))
		second := refreshCookie(rec)
		Expect(second.Value).NotTo(Equal(first.Value))

		rec = c.do(http.MethodPost, "/api/v1/auth/refresh-token", "", "", first)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeTokenReused)))

		rec = c.do(http.MethodPost, "/api/v1/auth/refresh-token", "", "", second)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("requires authentication to revoke", func() {
		bootstrapAdmin()
		cookie := refreshCookie(login("root@x.com", "rootpw"))

		rec := c.do(http.MethodPost, "/api/v1/auth/revoke-token", `{"token":"`+cookie.Value+`"}`, "", nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("manages hospitals as an administrator", func() {
		admin := bootstrapAdmin()

		rec := c.do(http.MethodPost, "/api/v1/admin/hospitals", `{"name":"General","category":"Public","city":"Colombo"}`, admin, nil)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		rec = c.do(http.MethodGet, "/api/v1/admin/hospitals", "", admin, nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Colombo"))
	})

	It("serves development and operational routes", func() {
		rec := c.do(http.MethodGet, "/api/v1/dev/email-preview?outcome=reject&reason=late", "", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get(middleware.TraceHeader)).NotTo(BeEmpty())

		rec = c.do(http.MethodGet, "/api/v1/ping", "", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = c.do(http.MethodGet, "/metrics", "", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("staff_registry_http_requests_total"))
	})

	It("hides admin signup and dev routes in production", func() {
		c = client{router: buildRouter(RouterConfig{}, notifier)}

		rec := c.do(http.MethodPost, "/api/v1/admin/auth/signup", `{"reg_no":"A-1","username":"root","email":"root@x.com","password":"rootpw"}`, "", nil)
		Expect(rec.Code).NotTo(Equal(http.StatusCreated))

		rec = c.do(http.MethodGet, "/api/v1/dev/email-preview", "", "", nil)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})

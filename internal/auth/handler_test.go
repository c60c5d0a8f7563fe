package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/transport"
	"github.com/frahmantamala/staff-registry/internal/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type fakeSessionService struct {
	session   *Session
	principal *internal.Principal
	err       error

	refreshedWith string
	revokedWith   string
	revokedBy     *internal.Principal
}

func (f *fakeSessionService) Login(ctx context.Context, dto LoginDTO, clientIP string) (*Session, error) {
	return f.session, f.err
}

func (f *fakeSessionService) Refresh(ctx context.Context, presented, clientIP string) (*Session, error) {
	f.refreshedWith = presented
	return f.session, f.err
}

func (f *fakeSessionService) Revoke(ctx context.Context, presented, clientIP string, principal *internal.Principal) error {
	f.revokedWith = presented
	f.revokedBy = principal
	return f.err
}

func (f *fakeSessionService) Authenticate(ctx context.Context, tokenString string) (*internal.Principal, error) {
	return f.principal, f.err
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var _ = ginkgo.Describe("Session Handler", func() {
	var (
		svc     *fakeSessionService
		handler *Handler
		expiry  time.Time
	)

	ginkgo.BeforeEach(func() {
		expiry = time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
		svc = &fakeSessionService{
			session: &Session{
				AccessToken:   "access",
				AccessExpiry:  time.Now().Add(15 * time.Minute),
				RefreshToken:  "refresh-plaintext",
				RefreshExpiry: expiry,
				Account:       user.AccountView{ID: "acc-1", Email: "a@x.com", Role: "Nurse"},
				Permissions:   10,
			},
		}
		handler = NewHandler(transport.NewBaseHandler(nil), svc, internal.CookieConfig{Name: "refreshToken", Secure: true, SameSite: "strict"})
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("returns the session and sets an HttpOnly refresh cookie", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@x.com","password":"secret"}`))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var body SessionResponse
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body.Success).To(gomega.BeTrue())
			gomega.Expect(body.AccessToken.Token).To(gomega.Equal("access"))
			gomega.Expect(body.Permissions).To(gomega.Equal(10))
			gomega.Expect(rec.Body.String()).NotTo(gomega.ContainSubstring("refresh-plaintext"))

			cookie := findCookie(rec, "refreshToken")
			gomega.Expect(cookie).NotTo(gomega.BeNil())
			gomega.Expect(cookie.Value).To(gomega.Equal("refresh-plaintext"))
			gomega.Expect(cookie.HttpOnly).To(gomega.BeTrue())
			gomega.Expect(cookie.Secure).To(gomega.BeTrue())
			gomega.Expect(cookie.SameSite).To(gomega.Equal(http.SameSiteStrictMode))
			gomega.Expect(cookie.Expires.Equal(expiry)).To(gomega.BeTrue())
		})

		ginkgo.It("maps bad credentials to 401 without a cookie", func() {
			svc.err = internal.ErrInvalidCredentials
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@x.com","password":"x"}`))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(findCookie(rec, "refreshToken")).To(gomega.BeNil())
		})

		ginkgo.It("rejects malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("RefreshToken", func() {
		ginkgo.It("reads the cookie and sets the rotated one", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "old"})
			rec := httptest.NewRecorder()
			handler.RefreshToken(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(svc.refreshedWith).To(gomega.Equal("old"))
			gomega.Expect(findCookie(rec, "refreshToken").Value).To(gomega.Equal("refresh-plaintext"))
		})

		ginkgo.It("clears the cookie when the token was reused", func() {
			svc.err = internal.ErrTokenReused
			req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "old"})
			rec := httptest.NewRecorder()
			handler.RefreshToken(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			cookie := findCookie(rec, "refreshToken")
			gomega.Expect(cookie).NotTo(gomega.BeNil())
			gomega.Expect(cookie.MaxAge).To(gomega.BeNumerically("<", 0))
		})

		ginkgo.It("passes a missing cookie through as an empty token", func() {
			svc.err = internal.ErrTokenRequired
			req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
			rec := httptest.NewRecorder()
			handler.RefreshToken(rec, req)

			gomega.Expect(svc.refreshedWith).To(gomega.BeEmpty())
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("RevokeToken", func() {
		var principal *internal.Principal

		ginkgo.BeforeEach(func() {
			principal = &internal.Principal{AccountID: "acc-1", PermissionLevel: 10}
		})

		ginkgo.It("prefers the body token and keeps the cookie", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/revoke-token", strings.NewReader(`{"token":"from-body"}`))
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "from-cookie"})
			req = req.WithContext(internal.ContextWithPrincipal(req.Context(), principal))
			rec := httptest.NewRecorder()
			handler.RevokeToken(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(svc.revokedWith).To(gomega.Equal("from-body"))
			gomega.Expect(svc.revokedBy).To(gomega.Equal(principal))
			gomega.Expect(findCookie(rec, "refreshToken")).To(gomega.BeNil())
		})

		ginkgo.It("falls back to the cookie and clears it", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/revoke-token", nil)
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "from-cookie"})
			req = req.WithContext(internal.ContextWithPrincipal(req.Context(), principal))
			rec := httptest.NewRecorder()
			handler.RevokeToken(rec, req)

			gomega.Expect(svc.revokedWith).To(gomega.Equal("from-cookie"))
			gomega.Expect(findCookie(rec, "refreshToken").MaxAge).To(gomega.BeNumerically("<", 0))
		})

		ginkgo.It("reports forbidden revocations", func() {
			svc.err = internal.ErrForbidden
			req := httptest.NewRequest(http.MethodPost, "/auth/revoke-token", strings.NewReader(`{"token":"t"}`))
			rec := httptest.NewRecorder()
			handler.RevokeToken(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var reached *internal.Principal

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached, _ = internal.PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})

		ginkgo.BeforeEach(func() {
			reached = nil
		})

		ginkgo.It("rejects requests without a bearer token", func() {
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeNil())
		})

		ginkgo.It("puts the principal on the context", func() {
			svc.principal = &internal.Principal{AccountID: "acc-1", PermissionLevel: 10}
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer abc")
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(reached.AccountID).To(gomega.Equal("acc-1"))
		})

		ginkgo.It("maps expired tokens to 401", func() {
			svc.err = internal.ErrTokenExpired
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer abc")
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})

var _ = ginkgo.Describe("RBACAuthorization", func() {
	var rbac *RBACAuthorization

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ginkgo.BeforeEach(func() {
		rbac = NewRBACAuthorization(NewPermissionChecker(mockRoles{}, 100, nil), nil)
	})

	serve := func(p *internal.Principal) int {
		req := httptest.NewRequest(http.MethodGet, "/admin/x", nil)
		if p != nil {
			req = req.WithContext(internal.ContextWithPrincipal(req.Context(), p))
		}
		rec := httptest.NewRecorder()
		rbac.RequireAdmin()(ok).ServeHTTP(rec, req)
		return rec.Code
	}

	ginkgo.It("returns 401 without a principal", func() {
		gomega.Expect(serve(nil)).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("returns 403 below the admin level", func() {
		gomega.Expect(serve(&internal.Principal{AccountID: "a", PermissionLevel: 99})).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("passes at or above the admin level", func() {
		gomega.Expect(serve(&internal.Principal{AccountID: "a", PermissionLevel: 100})).To(gomega.Equal(http.StatusNoContent))
	})
})

var _ = ginkgo.Describe("Classify", func() {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	successor := "next"
	revokedAt := now.Add(-time.Minute)

	ginkgo.DescribeTable("transitions",
		func(t RefreshToken, want Transition) {
			gomega.Expect(Classify(&t, now)).To(gomega.Equal(want))
		},
		ginkgo.Entry("active", RefreshToken{ExpiresAt: later}, TransitionRotate),
		ginkgo.Entry("expiring exactly now", RefreshToken{ExpiresAt: now}, TransitionRejectDead),
		ginkgo.Entry("expired", RefreshToken{ExpiresAt: now.Add(-time.Second)}, TransitionRejectDead),
		ginkgo.Entry("revoked without successor", RefreshToken{ExpiresAt: later, RevokedAt: &revokedAt}, TransitionRejectDead),
		ginkgo.Entry("rotated", RefreshToken{ExpiresAt: later, RevokedAt: &revokedAt, ReplacedByID: &successor}, TransitionReuseDetected),
		ginkgo.Entry("rotated and expired", RefreshToken{ExpiresAt: now.Add(-time.Second), RevokedAt: &revokedAt, ReplacedByID: &successor}, TransitionReuseDetected),
	)

	ginkgo.It("hashes deterministically and generates distinct secrets", func() {
		a, err := GenerateRandomToken()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		b, err := GenerateRandomToken()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(a).NotTo(gomega.Equal(b))
		gomega.Expect(HashToken(a)).To(gomega.Equal(HashToken(a)))
		gomega.Expect(HashToken(a)).To(gomega.HaveLen(64))
	})
})

package user_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/staff-registry/internal"
	accountDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/account"
	"github.com/frahmantamala/staff-registry/internal/transport"
	"github.com/frahmantamala/staff-registry/internal/user"
	userPostgres "github.com/frahmantamala/staff-registry/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("User Handler Integration", func() {
	var (
		router  chi.Router
		repo    *userPostgres.AccountRepository
		nurseID string
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&accountDatamodel.Account{})).To(Succeed())

		repo = userPostgres.NewAccountRepository(db)
		nurse := &user.Account{Username: "nurse", Email: "a@x.com", PasswordHash: "secret-hash", RegNo: "R1", Role: "Nurse", Hospital: "General", Availability: true}
		Expect(repo.Create(context.Background(), nurse)).To(Succeed())
		nurseID = nurse.ID

		service := user.NewService(repo, stubHasher{}, stubRoles{"Nurse": true, "Doctor": true}, slogger)
		handler := user.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/users/me", handler.GetCurrentUser)
		router.Get("/admin/users/role/{role}", handler.ListByRole)
		router.Get("/admin/users/{id}", handler.GetAccount)
		router.Post("/admin/users/{id}/update", handler.UpdateAccount)
		router.Post("/admin/users/{id}/delete", handler.DeleteAccount)
		router.Post("/admin/users/{id}/reset-password", handler.ResetPassword)
	})

	do := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("returns the caller without the password hash", func() {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req = req.WithContext(internal.ContextWithPrincipal(req.Context(), &internal.Principal{AccountID: nurseID}))
		rec := do(req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).NotTo(ContainSubstring("secret-hash"))

		var view user.AccountView
		Expect(json.Unmarshal(rec.Body.Bytes(), &view)).To(Succeed())
		Expect(view.Email).To(Equal("a@x.com"))
	})

	It("requires a principal for /users/me", func() {
		rec := do(httptest.NewRequest(http.MethodGet, "/users/me", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("lists summaries by role", func() {
		rec := do(httptest.NewRequest(http.MethodGet, "/admin/users/role/All", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))

		var list []user.AccountSummary
		Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
		Expect(list).To(HaveLen(1))
		Expect(list[0].RegNo).To(Equal("R1"))
	})

	It("returns 404 for unknown accounts", func() {
		rec := do(httptest.NewRequest(http.MethodGet, "/admin/users/missing", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeAccountNotFound)))
	})

	It("updates an account", func() {
		body := strings.NewReader(`{"username":"head","role":"Doctor"}`)
		rec := do(httptest.NewRequest(http.MethodPost, "/admin/users/"+nurseID+"/update", body))
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp user.AccountResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Role).To(Equal("Doctor"))
		Expect(resp.Message).To(Equal("User details updated successfully"))
	})

	It("rejects unknown roles on update", func() {
		body := strings.NewReader(`{"username":"head","role":"Janitor"}`)
		rec := do(httptest.NewRequest(http.MethodPost, "/admin/users/"+nurseID+"/update", body))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeUnknownRole)))
	})

	It("resets the password and deletes", func() {
		rec := do(httptest.NewRequest(http.MethodPost, "/admin/users/"+nurseID+"/reset-password", strings.NewReader(`{"password":"n3w"}`)))
		Expect(rec.Code).To(Equal(http.StatusOK))

		stored, err := repo.GetByID(context.Background(), nurseID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.PasswordHash).To(Equal("hashed:n3w"))

		rec = do(httptest.NewRequest(http.MethodPost, "/admin/users/"+nurseID+"/delete", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))

		_, err = repo.GetByID(context.Background(), nurseID)
		Expect(err).To(Equal(internal.ErrAccountNotFound))
	})
})

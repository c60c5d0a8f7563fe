package hospital_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	hospitalDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/hospital"
	"github.com/frahmantamala/staff-registry/internal/hospital"
	hospitalPostgres "github.com/frahmantamala/staff-registry/internal/hospital/postgres"
	"github.com/frahmantamala/staff-registry/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Hospital Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&hospitalDatamodel.Hospital{})).To(Succeed())

		service := hospital.NewService(hospitalPostgres.NewHospitalRepository(db), slogger)
		handler := hospital.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/admin/hospitals", handler.GetHospitals)
		router.Post("/admin/hospitals", handler.CreateHospital)
		router.Post("/admin/hospitals/{id}/update", handler.UpdateHospital)
		router.Post("/admin/hospitals/{id}/delete", handler.DeleteHospital)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	list := func() []*hospital.Hospital {
		rec := do(http.MethodGet, "/admin/hospitals", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp hospital.HospitalsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return resp.Hospitals
	}

	const general = `{"name":"General","category":"Public","city":"Colombo"}`

	It("creates, lists, updates and deletes", func() {
		Expect(do(http.MethodPost, "/admin/hospitals", general).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodPost, "/admin/hospitals", `{"name":"Apex","category":"Private","city":"Galle"}`).Code).To(Equal(http.StatusCreated))

		hospitals := list()
		Expect(hospitals).To(HaveLen(2))
		Expect(hospitals[0].Name).To(Equal("Apex"))

		id := hospitals[1].ID
		rec := do(http.MethodPost, "/admin/hospitals/"+id+"/update", `{"name":"General","category":"Public","city":"Kandy","address":"2 Hill Rd"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(list()[1].City).To(Equal("Kandy"))

		Expect(do(http.MethodPost, "/admin/hospitals/"+id+"/delete", "").Code).To(Equal(http.StatusOK))
		Expect(list()).To(HaveLen(1))
	})

	It("returns 409 for a duplicate name", func() {
		Expect(do(http.MethodPost, "/admin/hospitals", general).Code).To(Equal(http.StatusCreated))
		rec := do(http.MethodPost, "/admin/hospitals", general)
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring("HOSPITAL_EXISTS"))
	})

	It("returns 409 when renaming onto an existing hospital", func() {
		Expect(do(http.MethodPost, "/admin/hospitals", general).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodPost, "/admin/hospitals", `{"name":"Apex","category":"Private","city":"Galle"}`).Code).To(Equal(http.StatusCreated))

		apex := list()[0]
		rec := do(http.MethodPost, "/admin/hospitals/"+apex.ID+"/update", general)
		Expect(rec.Code).To(Equal(http.StatusConflict))
	})

	It("returns 404 for unknown hospitals", func() {
		Expect(do(http.MethodPost, "/admin/hospitals/missing/delete", "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodPost, "/admin/hospitals/missing/update", general).Code).To(Equal(http.StatusNotFound))
	})
})

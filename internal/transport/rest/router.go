package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/staff-registry/internal/auth"
	"github.com/frahmantamala/staff-registry/internal/hospital"
	"github.com/frahmantamala/staff-registry/internal/metrics"
	"github.com/frahmantamala/staff-registry/internal/notification"
	"github.com/frahmantamala/staff-registry/internal/registration"
	"github.com/frahmantamala/staff-registry/internal/transport/middleware"
	"github.com/frahmantamala/staff-registry/internal/transport/swagger"
	"github.com/frahmantamala/staff-registry/internal/user"
	"github.com/go-chi/chi"
)

// RouterConfig carries the config switches that change which routes exist.
type RouterConfig struct {
	AllowAdminSignup bool
	Development      bool
	AllowedOrigins   string
	MetricsPath      string
}

// Handlers groups everything the router mounts. Nil members are skipped.
type Handlers struct {
	Auth         *auth.Handler
	RBAC         *auth.RBACAuthorization
	User         *user.Handler
	Registration *registration.Handler
	Hospital     *hospital.Handler
	Notification *notification.Handler
	Health       *HealthHandler
	Metrics      *metrics.Metrics
	Spec         *swagger.Spec
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, cfg RouterConfig, logger *slog.Logger) {
	// Apply global middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID(logger))
	if h.Metrics != nil {
		router.Use(h.Metrics.Instrument)
	}
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(logger))

	if h.Spec != nil {
		router.Handle(swagger.SpecRoute, h.Spec)
		router.Handle("/swagger/*", swagger.Handler())
	}
	if h.Metrics != nil && cfg.MetricsPath != "" {
		router.Handle(cfg.MetricsPath, h.Metrics.Handler())
	}

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if cfg.Development {
			r.Get("/", welcome)
			if h.Notification != nil {
				r.Get("/dev/email-preview", h.Notification.Preview)
			}
		}

		r.Route("/auth", func(ar chi.Router) {
			if h.Registration != nil {
				ar.Post("/signup", h.Registration.Signup)
			}
			if h.Auth != nil {
				ar.Post("/login", h.Auth.Login)
				ar.Post("/refresh-token", h.Auth.RefreshToken)
				ar.With(h.Auth.AuthMiddleware).Post("/revoke-token", h.Auth.RevokeToken)
			}
		})

		if cfg.AllowAdminSignup && h.Registration != nil {
			r.Post("/admin/auth/signup", h.Registration.AdminSignup)
		}

		if h.Auth == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			if h.RBAC == nil {
				return
			}

			pr.Route("/admin", func(adm chi.Router) {
				adm.Use(h.RBAC.RequireAdmin())

				if h.Registration != nil {
					adm.Get("/requests", h.Registration.ListRequests)
					adm.Get("/requests/{id}", h.Registration.GetRequest)
					adm.Post("/requests/{id}/accept", h.Registration.AcceptRequest)
					adm.Post("/requests/{id}/reject", h.Registration.RejectRequest)
				}

				if h.User != nil {
					adm.Get("/users/role/{role}", h.User.ListByRole)
					adm.Get("/users/{id}", h.User.GetAccount)
					adm.Post("/users/{id}/update", h.User.UpdateAccount)
					adm.Post("/users/{id}/delete", h.User.DeleteAccount)
					adm.Post("/users/{id}/reset-password", h.User.ResetPassword)
				}

				if h.Hospital != nil {
					adm.Get("/hospitals", h.Hospital.GetHospitals)
					adm.Post("/hospitals", h.Hospital.CreateHospital)
					adm.Post("/hospitals/{id}/update", h.Hospital.UpdateHospital)
					adm.Post("/hospitals/{id}/delete", h.Hospital.DeleteHospital)
				}
			})
		})
	})
}

func welcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the staff registry API"})
}

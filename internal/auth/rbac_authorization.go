package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/transport"
)

// RBACAuthorization gates routes on the caller's permission level. It runs
// before the handler, so a rejected request has no side effects.
type RBACAuthorization struct {
	*transport.BaseHandler
	permissions *PermissionChecker
}

func NewRBACAuthorization(permissions *PermissionChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		permissions: permissions,
	}
}

func (ra *RBACAuthorization) RequireLevel(required int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				ra.Logger.WarnContext(r.Context(), "authorization check failed: principal not found in context")
				ra.HandleError(w, r, internal.ErrUnauthenticated)
				return
			}

			if !ra.permissions.HasLevel(principal, required) {
				ra.Logger.WarnContext(r.Context(), "access denied: insufficient permission level",
					"account_id", principal.AccountID,
					"role", principal.Role,
					"level", principal.PermissionLevel,
					"required", required)
				ra.HandleError(w, r, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireLevel(ra.permissions.AdminLevel())
}

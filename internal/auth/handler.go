package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/transport"
	"github.com/frahmantamala/staff-registry/pkg/logger"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, clientIP string) (*Session, error)
	Refresh(ctx context.Context, presented, clientIP string) (*Session, error)
	Revoke(ctx context.Context, presented, clientIP string, principal *internal.Principal) error
	Authenticate(ctx context.Context, tokenString string) (*internal.Principal, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Cookie  internal.CookieConfig
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, cookie internal.CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = "refreshToken"
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Cookie:      cookie,
	}
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	session, err := h.Service.Login(r.Context(), dto, transport.ClientIP(r))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken, session.RefreshExpiry)
	h.WriteJSON(w, http.StatusOK, session.Response("Successfully logged in"))
}

// RefreshToken handles POST /auth/refresh-token. The token only travels in
// the HttpOnly cookie.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	presented := h.refreshCookie(r)

	session, err := h.Service.Refresh(r.Context(), presented, transport.ClientIP(r))
	if err != nil {
		if appErr, ok := internal.AsAppError(err); ok && appErr.StatusCode == http.StatusUnauthorized {
			h.clearRefreshCookie(w)
		}
		h.HandleError(w, r, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken, session.RefreshExpiry)
	h.WriteJSON(w, http.StatusOK, session.Response("Refresh token successful"))
}

// RevokeToken handles POST /auth/revoke-token. The body token wins over the cookie.
func (h *Handler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	var dto RevokeTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	token := dto.Token
	fromCookie := false
	if token == "" {
		token = h.refreshCookie(r)
		fromCookie = token != ""
	}

	principal, _ := internal.PrincipalFromContext(r.Context())
	if err := h.Service.Revoke(r.Context(), token, transport.ClientIP(r), principal); err != nil {
		h.HandleError(w, r, err)
		return
	}

	if fromCookie {
		h.clearRefreshCookie(w)
	}
	h.WriteJSON(w, http.StatusOK, RevokeResponse{Success: true, Message: "Token revoked"})
}

// AuthMiddleware resolves the bearer token into a principal on the context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleError(w, r, internal.ErrUnauthenticated)
			return
		}

		principal, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.HandleError(w, r, err)
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), principal)
		ctx = logger.With(ctx, "account_id", principal.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) refreshCookie(r *http.Request) string {
	c, err := r.Cookie(h.Cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    value,
		Path:     "/",
		Domain:   h.Cookie.Domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: h.Cookie.SameSiteMode(),
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   h.Cookie.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: h.Cookie.SameSiteMode(),
	})
}

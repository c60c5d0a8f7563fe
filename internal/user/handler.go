package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	ListByRole(ctx context.Context, role string) ([]AccountSummary, error)
	Update(ctx context.Context, id string, dto UpdateAccountDTO) (*Account, error)
	Delete(ctx context.Context, id, clientIP string) error
	ResetPassword(ctx context.Context, id string, dto ResetPasswordDTO, clientIP string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleError(w, r, internal.ErrUnauthenticated)
		return
	}

	account, err := h.Service.GetByID(r.Context(), principal.AccountID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, account.View())
}

// ListByRole handles GET /admin/users/role/{role}
func (h *Handler) ListByRole(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Service.ListByRole(r.Context(), chi.URLParam(r, "role"))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summaries)
}

// GetAccount handles GET /admin/users/{id}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, account.View())
}

// UpdateAccount handles POST /admin/users/{id}/update
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var dto UpdateAccountDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	account, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, AccountResponse{
		AccountView: account.View(),
		Message:     "User details updated successfully",
	})
}

// DeleteAccount handles POST /admin/users/{id}/delete
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"), transport.ClientIP(r)); err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// ResetPassword handles POST /admin/users/{id}/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), chi.URLParam(r, "id"), dto, transport.ClientIP(r)); err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "User password reset successfully"})
}

package registration

import (
	"context"
	"net/http"

	"github.com/frahmantamala/staff-registry/internal/transport"
	"github.com/frahmantamala/staff-registry/internal/user"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Submit(ctx context.Context, dto SubmitDTO) (*Request, error)
	List(ctx context.Context) ([]RequestSummary, error)
	Get(ctx context.Context, id string) (*Request, error)
	Accept(ctx context.Context, id string, dto AcceptDTO) (*AcceptResult, error)
	Reject(ctx context.Context, id string, dto RejectDTO) (*RejectResult, error)
	BootstrapAdmin(ctx context.Context, dto AdminSignupDTO) (*user.Account, error)
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

// Signup handles POST /auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SubmitDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	req, err := h.Service.Submit(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, SubmitResponse{RequestView: req.View(), Message: MessageSubmitted})
}

// AdminSignup handles POST /admin/auth/signup
func (h *Handler) AdminSignup(w http.ResponseWriter, r *http.Request) {
	var dto AdminSignupDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	account, err := h.Service.BootstrapAdmin(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, user.AccountResponse{AccountView: account.View(), Message: MessageAdmin})
}

// ListRequests handles GET /admin/requests
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, reqs)
}

// GetRequest handles GET /admin/requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req.View())
}

// AcceptRequest handles POST /admin/requests/{id}/accept
func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	var dto AcceptDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	result, err := h.Service.Accept(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// RejectRequest handles POST /admin/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var dto RejectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	result, err := h.Service.Reject(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

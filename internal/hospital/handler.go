package hospital

import (
	"context"
	"net/http"

	"github.com/frahmantamala/staff-registry/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Hospital, error)
	Create(ctx context.Context, dto HospitalDTO) (*Hospital, error)
	Update(ctx context.Context, id string, dto HospitalDTO) (*Hospital, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetHospitals handles GET /admin/hospitals
func (h *Handler) GetHospitals(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, HospitalsResponse{
		Hospitals: hospitals,
	})
}

// CreateHospital handles POST /admin/hospitals
func (h *Handler) CreateHospital(w http.ResponseWriter, r *http.Request) {
	var dto HospitalDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	if _, err := h.Service.Create(r.Context(), dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, MessageResponse{Message: "Hospital is added successfully!"})
}

// UpdateHospital handles POST /admin/hospitals/{id}/update
func (h *Handler) UpdateHospital(w http.ResponseWriter, r *http.Request) {
	var dto HospitalDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	if _, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Hospital details updated successfully!"})
}

// DeleteHospital handles POST /admin/hospitals/{id}/delete
func (h *Handler) DeleteHospital(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Hospital deleted successfully"})
}

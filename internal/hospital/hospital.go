package hospital

import (
	"time"

	hospitalDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/hospital"
)

type Hospital struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	ContactNo string    `json:"contact_no"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewHospital(dto HospitalDTO) *Hospital {
	now := time.Now().UTC()
	return &Hospital{
		Name:      dto.Name,
		Category:  dto.Category,
		City:      dto.City,
		Address:   dto.Address,
		ContactNo: dto.ContactNo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply overwrites every editable field. Address and contact number are
// cleared when omitted.
func (h *Hospital) Apply(dto HospitalDTO) {
	h.Name = dto.Name
	h.Category = dto.Category
	h.City = dto.City
	h.Address = dto.Address
	h.ContactNo = dto.ContactNo
	h.UpdatedAt = time.Now().UTC()
}

func ToDataModel(h *Hospital) *hospitalDatamodel.Hospital {
	return &hospitalDatamodel.Hospital{
		ID:        h.ID,
		Name:      h.Name,
		Category:  h.Category,
		City:      h.City,
		Address:   h.Address,
		ContactNo: h.ContactNo,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func FromDataModel(h *hospitalDatamodel.Hospital) *Hospital {
	return &Hospital{
		ID:        h.ID,
		Name:      h.Name,
		Category:  h.Category,
		City:      h.City,
		Address:   h.Address,
		ContactNo: h.ContactNo,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

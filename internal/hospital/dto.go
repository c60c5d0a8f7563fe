package hospital

import "github.com/frahmantamala/staff-registry/internal/core/common/validation"

type HospitalDTO struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	City      string `json:"city"`
	Address   string `json:"address"`
	ContactNo string `json:"contact_no"`
}

func (d HospitalDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(128)
	v.Field("category", d.Category).Required().MaxLength(64)
	v.Field("city", d.City).Required().MaxLength(64)
	v.Field("address", d.Address).MaxLength(256)
	v.Field("contact_no", d.ContactNo).MaxLength(32)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type HospitalsResponse struct {
	Hospitals []*Hospital `json:"hospitals"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

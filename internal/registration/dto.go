package registration

import (
	"time"

	"github.com/frahmantamala/staff-registry/internal/core/common/validation"
	"github.com/frahmantamala/staff-registry/internal/user"
)

type SubmitDTO struct {
	RegNo       string `json:"reg_no"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Hospital    string `json:"hospital"`
	Designation string `json:"designation"`
	ContactNo   string `json:"contact_no"`
}

func (d SubmitDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("reg_no", d.RegNo).Required().MaxLength(64)
	v.Field("username", d.Username).Required().MaxLength(64)
	v.Field("email", d.Email).Required().MaxLength(254).Email()
	v.Field("password", d.Password).Required().MaxLength(72)
	v.Field("hospital", d.Hospital).Required().MaxLength(128)
	v.Field("designation", d.Designation).MaxLength(128)
	v.Field("contact_no", d.ContactNo).MaxLength(32)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// AcceptDTO carries the administrator's decision. Empty optional fields keep
// the value from the request.
type AcceptDTO struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	Designation string `json:"designation"`
	ContactNo   string `json:"contact_no"`
}

func (d AcceptDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("role", d.Role).Required().MaxLength(64)
	v.Field("username", d.Username).MaxLength(64)
	v.Field("designation", d.Designation).MaxLength(128)
	v.Field("contact_no", d.ContactNo).MaxLength(32)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RejectDTO struct {
	Reason string `json:"reason"`
}

func (d RejectDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("reason", d.Reason).MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// AdminSignupDTO creates the first administrator directly, skipping review.
type AdminSignupDTO struct {
	RegNo    string `json:"reg_no"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Hospital string `json:"hospital"`
}

func (d AdminSignupDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("reg_no", d.RegNo).Required().MaxLength(64)
	v.Field("username", d.Username).Required().MaxLength(64)
	v.Field("email", d.Email).Required().MaxLength(254).Email()
	v.Field("password", d.Password).Required().MaxLength(72)
	v.Field("hospital", d.Hospital).MaxLength(128)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// RequestView never carries the password hash.
type RequestView struct {
	ID          string    `json:"id"`
	RegNo       string    `json:"reg_no"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Hospital    string    `json:"hospital"`
	Designation string    `json:"designation"`
	ContactNo   string    `json:"contact_no"`
	CreatedAt   time.Time `json:"created_at"`
}

type RequestSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	RegNo    string `json:"reg_no"`
}

type SubmitResponse struct {
	RequestView
	Message string `json:"message"`
}

// AcceptResult is returned even when the notification could not be sent; in
// that case Warning is set.
type AcceptResult struct {
	user.AccountView
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

type RejectResult struct {
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

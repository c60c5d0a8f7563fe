package user

import (
	"time"

	"github.com/frahmantamala/staff-registry/internal/core/common/validation"
)

// AccountView is an account as returned over the API. It never carries the
// password hash.
type AccountView struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegNo        string    `json:"reg_no"`
	Role         string    `json:"role"`
	Hospital     string    `json:"hospital"`
	Designation  string    `json:"designation"`
	ContactNo    string    `json:"contact_no"`
	Availability bool      `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AccountSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	RegNo    string `json:"reg_no"`
	Hospital string `json:"hospital"`
	Role     string `json:"role"`
}

type AccountResponse struct {
	AccountView
	Message string `json:"message,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UpdateAccountDTO struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (d UpdateAccountDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MaxLength(64)
	v.Field("role", d.Role).Required().MaxLength(64)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ResetPasswordDTO struct {
	Password string `json:"password"`
}

func (d ResetPasswordDTO) Validate() error {
	if err := validation.ValidatePassword(d.Password); err != nil {
		return err
	}
	return nil
}

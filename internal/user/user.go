package user

import (
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	accountDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/account"
)

const RoleSystemAdmin = "System Admin"

// RoleAll is the pseudo role used by the admin listing to select every account.
const RoleAll = "All"

// Account is a registered staff member.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RegNo        string    `json:"reg_no"`
	Role         string    `json:"role"`
	Hospital     string    `json:"hospital"`
	Designation  string    `json:"designation"`
	ContactNo    string    `json:"contact_no"`
	Availability bool      `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) IsSystemAdmin() bool {
	return a.Role == RoleSystemAdmin
}

func (a *Account) View() AccountView {
	return AccountView{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		RegNo:        a.RegNo,
		Role:         a.Role,
		Hospital:     a.Hospital,
		Designation:  a.Designation,
		ContactNo:    a.ContactNo,
		Availability: a.Availability,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:       a.ID,
		Username: a.Username,
		RegNo:    a.RegNo,
		Hospital: a.Hospital,
		Role:     a.Role,
	}
}

func ToDataModel(a *Account) *accountDatamodel.Account {
	return &accountDatamodel.Account{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		RegNo:        a.RegNo,
		Role:         a.Role,
		Hospital:     a.Hospital,
		Designation:  a.Designation,
		ContactNo:    a.ContactNo,
		Availability: a.Availability,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func FromDataModel(a *accountDatamodel.Account) *Account {
	return &Account{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		RegNo:        a.RegNo,
		Role:         a.Role,
		Hospital:     a.Hospital,
		Designation:  a.Designation,
		ContactNo:    a.ContactNo,
		Availability: a.Availability,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ConflictForColumn maps a violated unique column of the accounts table onto
// its domain error.
func ConflictForColumn(column string) error {
	switch column {
	case "reg_no":
		return internal.ErrRegNoInUse
	case "email":
		return internal.ErrEmailInUse
	case "username":
		return internal.ErrUsernameInUse
	default:
		return internal.NewConflictError("Account already exists", internal.ErrCodeAlreadyRegistered)
	}
}

package registration

import (
	"time"

	registrationDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/registration"
)

const (
	MessageSubmitted = "Request is sent successfully. You will receive an Email on acceptance"
	MessageAccepted  = "User registration successful!"
	MessageRejected  = "Request has been deleted!"
	MessageAdmin     = "Successfully signed in"

	WarningNotificationFailed = "Email notification failed"
)

// Request is a pending application to become an account. It is deleted once
// an administrator accepts or rejects it.
type Request struct {
	ID           string
	RegNo        string
	Username     string
	Email        string
	PasswordHash string
	Hospital     string
	Designation  string
	ContactNo    string
	CreatedAt    time.Time
}

func (r *Request) View() RequestView {
	return RequestView{
		ID:          r.ID,
		RegNo:       r.RegNo,
		Username:    r.Username,
		Email:       r.Email,
		Hospital:    r.Hospital,
		Designation: r.Designation,
		ContactNo:   r.ContactNo,
		CreatedAt:   r.CreatedAt,
	}
}

func (r *Request) Summary() RequestSummary {
	return RequestSummary{ID: r.ID, Username: r.Username, RegNo: r.RegNo}
}

func ToDataModel(r *Request) *registrationDatamodel.Request {
	return &registrationDatamodel.Request{
		ID:           r.ID,
		RegNo:        r.RegNo,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Hospital:     r.Hospital,
		Designation:  r.Designation,
		ContactNo:    r.ContactNo,
		CreatedAt:    r.CreatedAt,
	}
}

func FromDataModel(r *registrationDatamodel.Request) *Request {
	return &Request{
		ID:           r.ID,
		RegNo:        r.RegNo,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Hospital:     r.Hospital,
		Designation:  r.Designation,
		ContactNo:    r.ContactNo,
		CreatedAt:    r.CreatedAt,
	}
}

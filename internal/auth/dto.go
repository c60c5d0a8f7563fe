package auth

import (
	"time"

	"github.com/frahmantamala/staff-registry/internal/core/common/validation"
	"github.com/frahmantamala/staff-registry/internal/user"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate only checks presence. Format errors would leak which inputs are
// plausible accounts, so bad emails fall through to InvalidCredentials.
func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// RevokeTokenDTO names the refresh token to revoke. When empty the handler
// falls back to the refresh cookie.
type RevokeTokenDTO struct {
	Token string `json:"token"`
}

// Session is the result of a login or refresh.
type Session struct {
	AccessToken   string
	AccessExpiry  time.Time
	RefreshToken  string
	RefreshExpiry time.Time
	Account       user.AccountView
	Permissions   int
}

type AccessToken struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"expiry"`
}

type SessionResponse struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	AccessToken AccessToken      `json:"accessToken"`
	Account     user.AccountView `json:"account"`
	Permissions int              `json:"permissions"`
}

func (s *Session) Response(message string) SessionResponse {
	return SessionResponse{
		Success: true,
		Message: message,
		AccessToken: AccessToken{
			Token:  s.AccessToken,
			Expiry: s.AccessExpiry,
		},
		Account:     s.Account,
		Permissions: s.Permissions,
	}
}

type RevokeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

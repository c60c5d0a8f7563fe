package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	sessionDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/session"
)

const (
	refreshTokenBytes = 40

	ReasonReplaced       = "replaced by new token"
	ReasonRevokedByUser  = "revoked by user"
	ReasonReuseDetection = "revoked due to reuse detection"
)

// RefreshToken is one link of a rotation chain. Only the SHA-256 of the
// secret is stored; the plaintext leaves the process once, in a cookie.
type RefreshToken struct {
	ID            string
	AccountID     string
	TokenHash     string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	CreatedByIP   string
	RevokedAt     *time.Time
	RevokedByIP   *string
	RevokedReason *string
	ReplacedByID  *string
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}

// Transition is the outcome of presenting a refresh token.
type Transition int

const (
	TransitionRotate Transition = iota
	TransitionRejectDead
	TransitionReuseDetected
)

func (t Transition) String() string {
	switch t {
	case TransitionRotate:
		return "rotate"
	case TransitionRejectDead:
		return "reject_dead"
	case TransitionReuseDetected:
		return "reuse_detected"
	default:
		return "unknown"
	}
}

// Classify decides what a refresh call does with the presented token. An
// active token rotates. A revoked token that already has a successor is a
// replay of a rotated credential, so the chain must be burned. Any other
// inactive token is simply dead.
func Classify(t *RefreshToken, now time.Time) Transition {
	if t.IsActive(now) {
		return TransitionRotate
	}
	if t.IsRevoked() && t.ReplacedByID != nil {
		return TransitionReuseDetected
	}
	return TransitionRejectDead
}

// GenerateRandomToken returns a hex encoded secret of refreshTokenBytes bytes.
func GenerateRandomToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func ToDataModel(t *RefreshToken) *sessionDatamodel.RefreshToken {
	return &sessionDatamodel.RefreshToken{
		ID:            t.ID,
		AccountID:     t.AccountID,
		TokenHash:     t.TokenHash,
		CreatedAt:     t.CreatedAt,
		ExpiresAt:     t.ExpiresAt,
		CreatedByIP:   t.CreatedByIP,
		RevokedAt:     t.RevokedAt,
		RevokedByIP:   t.RevokedByIP,
		RevokedReason: t.RevokedReason,
		ReplacedByID:  t.ReplacedByID,
	}
}

func FromDataModel(t *sessionDatamodel.RefreshToken) *RefreshToken {
	return &RefreshToken{
		ID:            t.ID,
		AccountID:     t.AccountID,
		TokenHash:     t.TokenHash,
		CreatedAt:     t.CreatedAt,
		ExpiresAt:     t.ExpiresAt,
		CreatedByIP:   t.CreatedByIP,
		RevokedAt:     t.RevokedAt,
		RevokedByIP:   t.RevokedByIP,
		RevokedReason: t.RevokedReason,
		ReplacedByID:  t.ReplacedByID,
	}
}

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/core/ids"
)

// RefreshTokenRepository persists the ledger. Lookups return
// internal.ErrTokenNotFound for unknown tokens.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	GetByID(ctx context.Context, id string) (*RefreshToken, error)
	// Rotate inserts successor and revokes oldID in one transaction. The
	// revoke only matches a row that is not revoked yet; when nothing
	// matches it rolls back and returns internal.ErrTokenReused.
	Rotate(ctx context.Context, oldID string, successor *RefreshToken, revokedAt time.Time, ip, reason string) error
	// Revoke reports whether a row changed. Already revoked rows are left alone.
	Revoke(ctx context.Context, id string, revokedAt time.Time, ip, reason string) (bool, error)
	RevokeAllForAccount(ctx context.Context, accountID string, revokedAt time.Time, ip, reason string) (int64, error)
}

type Ledger struct {
	repo   RefreshTokenRepository
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

func NewLedger(repo RefreshTokenRepository, ttl time.Duration, logger *slog.Logger) *Ledger {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		repo:   repo,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// WithClock swaps the time source; tests use it to age tokens.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

func (l *Ledger) Now() time.Time {
	return l.now()
}

func (l *Ledger) newToken(accountID, clientIP string) (*RefreshToken, string, error) {
	plaintext, err := GenerateRandomToken()
	if err != nil {
		return nil, "", internal.NewInternalError("failed to generate refresh token", err)
	}
	created := l.now()
	return &RefreshToken{
		ID:          ids.NewAt(created),
		AccountID:   accountID,
		TokenHash:   HashToken(plaintext),
		CreatedAt:   created,
		ExpiresAt:   created.Add(l.ttl),
		CreatedByIP: clientIP,
	}, plaintext, nil
}

// Issue starts a new chain for accountID.
func (l *Ledger) Issue(ctx context.Context, accountID, clientIP string) (*RefreshToken, string, error) {
	token, plaintext, err := l.newToken(accountID, clientIP)
	if err != nil {
		return nil, "", err
	}
	if err := l.repo.Create(ctx, token); err != nil {
		return nil, "", err
	}
	return token, plaintext, nil
}

func (l *Ledger) Lookup(ctx context.Context, plaintext string) (*RefreshToken, error) {
	return l.repo.GetByHash(ctx, HashToken(plaintext))
}

func (l *Ledger) Get(ctx context.Context, id string) (*RefreshToken, error) {
	return l.repo.GetByID(ctx, id)
}

// Rotate replaces old with a fresh token on the same account. A concurrent
// rotation of old surfaces as internal.ErrTokenReused.
func (l *Ledger) Rotate(ctx context.Context, old *RefreshToken, clientIP string) (*RefreshToken, string, error) {
	successor, plaintext, err := l.newToken(old.AccountID, clientIP)
	if err != nil {
		return nil, "", err
	}
	if err := l.repo.Rotate(ctx, old.ID, successor, successor.CreatedAt, clientIP, ReasonReplaced); err != nil {
		return nil, "", err
	}

	revokedAt := successor.CreatedAt
	reason := ReasonReplaced
	ip := clientIP
	old.RevokedAt = &revokedAt
	old.RevokedByIP = &ip
	old.RevokedReason = &reason
	old.ReplacedByID = &successor.ID

	return successor, plaintext, nil
}

// Revoke reports whether it revoked token. Already revoked tokens are left
// alone so the first reason sticks.
func (l *Ledger) Revoke(ctx context.Context, token *RefreshToken, clientIP, reason string) (bool, error) {
	if token.IsRevoked() {
		return false, nil
	}
	revokedAt := l.now()
	changed, err := l.repo.Revoke(ctx, token.ID, revokedAt, clientIP, reason)
	if err != nil {
		return false, err
	}
	if changed {
		ip := clientIP
		token.RevokedAt = &revokedAt
		token.RevokedByIP = &ip
		token.RevokedReason = &reason
	}
	return changed, nil
}

// RevokeDescendants walks the replacement chain forward from token and
// revokes every successor that is still live. It returns how many tokens it
// revoked. The walk stops at the end of the chain or on a repeated id.
func (l *Ledger) RevokeDescendants(ctx context.Context, token *RefreshToken, clientIP string) (int, error) {
	visited := map[string]struct{}{token.ID: {}}
	revoked := 0

	next := token.ReplacedByID
	for next != nil {
		if _, seen := visited[*next]; seen {
			l.logger.Warn("refresh token chain loops", "token_id", *next)
			break
		}
		visited[*next] = struct{}{}

		descendant, err := l.repo.GetByID(ctx, *next)
		if err != nil {
			if errors.Is(err, internal.ErrTokenNotFound) {
				break
			}
			return revoked, err
		}

		if !descendant.IsRevoked() {
			changed, err := l.repo.Revoke(ctx, descendant.ID, l.now(), clientIP, ReasonReuseDetection)
			if err != nil {
				return revoked, err
			}
			if changed {
				revoked++
			}
		}
		next = descendant.ReplacedByID
	}

	return revoked, nil
}

func (l *Ledger) RevokeAllForAccount(ctx context.Context, accountID, clientIP, reason string) (int64, error) {
	return l.repo.RevokeAllForAccount(ctx, accountID, l.now(), clientIP, reason)
}

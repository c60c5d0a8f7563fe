package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/core/events"
	"github.com/frahmantamala/staff-registry/internal/user"
)

// AccountReader is the slice of the account store the session manager needs.
// Missing accounts are reported as internal.ErrAccountNotFound.
type AccountReader interface {
	GetByEmail(ctx context.Context, email string) (*user.Account, error)
	GetByID(ctx context.Context, id string) (*user.Account, error)
}

// Service is the session manager: login, refresh rotation and revocation.
type Service struct {
	accounts    AccountReader
	ledger      *Ledger
	tokens      *JWTTokenGenerator
	hasher      PasswordHasher
	permissions *PermissionChecker
	abac        *ABACPolicy
	publisher   events.Publisher
	logger      *slog.Logger
}

type ServiceDeps struct {
	Accounts    AccountReader
	Ledger      *Ledger
	Tokens      *JWTTokenGenerator
	Hasher      PasswordHasher
	Permissions *PermissionChecker
	Publisher   events.Publisher
	Logger      *slog.Logger
}

func NewService(deps ServiceDeps) *Service {
	lg := deps.Logger
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		accounts:    deps.Accounts,
		ledger:      deps.Ledger,
		tokens:      deps.Tokens,
		hasher:      deps.Hasher,
		permissions: deps.Permissions,
		abac:        NewABACPolicy(deps.Permissions),
		publisher:   deps.Publisher,
		logger:      lg,
	}
}

func (s *Service) RBACAuthorization() *RBACAuthorization {
	return NewRBACAuthorization(s.permissions, s.logger)
}

// Login verifies credentials and opens a new session chain. Unknown email
// and wrong password return the same error.
func (s *Service) Login(ctx context.Context, dto LoginDTO, clientIP string) (*Session, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrAccountNotFound) {
			s.publish(ctx, events.NewSessionEvent(events.EventTypeSessionLoginFailed, "", "", clientIP, "unknown email"))
			return nil, internal.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(account.PasswordHash, dto.Password); err != nil {
		s.publish(ctx, events.NewSessionEvent(events.EventTypeSessionLoginFailed, account.ID, "", clientIP, "password mismatch"))
		return nil, internal.ErrInvalidCredentials
	}

	level, err := s.permissions.LevelOrZero(ctx, account.Role)
	if err != nil {
		return nil, err
	}

	refresh, plaintext, err := s.ledger.Issue(ctx, account.ID, clientIP)
	if err != nil {
		s.logger.Error("failed to issue refresh token", "account_id", account.ID, "error", err)
		return nil, err
	}

	session, err := s.newSession(account, level, refresh, plaintext)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded", "account_id", account.ID, "role", account.Role)
	s.publish(ctx, events.NewSessionEvent(events.EventTypeSessionLogin, account.ID, refresh.ID, clientIP, ""))
	return session, nil
}

// Refresh rotates the presented token. Replaying an already rotated token
// burns every descendant before failing with internal.ErrTokenReused.
func (s *Service) Refresh(ctx context.Context, presented, clientIP string) (*Session, error) {
	if presented == "" {
		return nil, internal.ErrTokenRequired
	}

	current, err := s.ledger.Lookup(ctx, presented)
	if err != nil {
		return nil, err
	}

	switch Classify(current, s.ledger.Now()) {
	case TransitionReuseDetected:
		s.handleReuse(ctx, current, clientIP)
		return nil, internal.ErrTokenReused
	case TransitionRejectDead:
		return nil, internal.ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, current.AccountID)
	if err != nil {
		if errors.Is(err, internal.ErrAccountNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, err
	}

	next, plaintext, err := s.ledger.Rotate(ctx, current, clientIP)
	if err != nil {
		if errors.Is(err, internal.ErrTokenReused) {
			// Lost a race with another rotation of the same token.
			if latest, gerr := s.ledger.Get(ctx, current.ID); gerr == nil {
				s.handleReuse(ctx, latest, clientIP)
			}
			return nil, internal.ErrTokenReused
		}
		return nil, err
	}

	level, err := s.permissions.LevelOrZero(ctx, account.Role)
	if err != nil {
		return nil, err
	}

	session, err := s.newSession(account, level, next, plaintext)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewSessionEvent(events.EventTypeSessionRefreshed, account.ID, next.ID, clientIP, ""))
	return session, nil
}

func (s *Service) handleReuse(ctx context.Context, token *RefreshToken, clientIP string) {
	revoked, err := s.ledger.RevokeDescendants(ctx, token, clientIP)
	if err != nil {
		s.logger.Error("failed to revoke refresh token chain", "token_id", token.ID, "account_id", token.AccountID, "error", err)
	}
	s.logger.Warn("refresh token reuse detected",
		"token_id", token.ID,
		"account_id", token.AccountID,
		"client_ip", clientIP,
		"revoked_descendants", revoked)
	s.publish(ctx, events.NewSessionEvent(events.EventTypeSessionReuseDetected, token.AccountID, token.ID, clientIP, ReasonReuseDetection))
}

// Revoke ends the session behind a refresh token. Only the owner or an
// administrator may do so. Revoking twice succeeds.
func (s *Service) Revoke(ctx context.Context, presented, clientIP string, principal *internal.Principal) error {
	if presented == "" {
		return internal.ErrTokenRequired
	}

	token, err := s.ledger.Lookup(ctx, presented)
	if err != nil {
		return err
	}

	if err := s.abac.CanRevokeToken(principal, token); err != nil {
		caller := ""
		if principal != nil {
			caller = principal.AccountID
		}
		s.logger.Warn("revoke denied", "token_id", token.ID, "caller", caller)
		return err
	}

	changed, err := s.ledger.Revoke(ctx, token, clientIP, ReasonRevokedByUser)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	s.publish(ctx, events.NewSessionEvent(events.EventTypeSessionRevoked, token.AccountID, token.ID, clientIP, ReasonRevokedByUser))
	return nil
}

// RevokeAccountSessions revokes every live refresh token of the account.
func (s *Service) RevokeAccountSessions(ctx context.Context, accountID, clientIP, reason string) error {
	n, err := s.ledger.RevokeAllForAccount(ctx, accountID, clientIP, reason)
	if err != nil {
		return err
	}
	s.logger.Info("account sessions revoked", "account_id", accountID, "count", n, "reason", reason)
	if n > 0 {
		s.publish(ctx, events.NewSessionEvent(events.EventTypeSessionRevoked, accountID, "", clientIP, reason))
	}
	return nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

// Authenticate resolves an access token to the caller. Role and level come
// from the current account row, not the token, so demotions apply at once.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*internal.Principal, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, internal.ErrAccountNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, err
	}

	level, err := s.permissions.LevelOrZero(ctx, account.Role)
	if err != nil {
		return nil, err
	}

	return &internal.Principal{
		AccountID:       account.ID,
		Email:           account.Email,
		Username:        account.Username,
		Role:            account.Role,
		PermissionLevel: level,
	}, nil
}

func (s *Service) newSession(account *user.Account, level int, refresh *RefreshToken, plaintext string) (*Session, error) {
	access, accessExpiry, err := s.tokens.GenerateAccessToken(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:   access,
		AccessExpiry:  accessExpiry,
		RefreshToken:  plaintext,
		RefreshExpiry: refresh.ExpiresAt,
		Account:       account.View(),
		Permissions:   level,
	}, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

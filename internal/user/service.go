package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/staff-registry/internal"
)

// Repository returns internal.ErrAccountNotFound for missing rows and maps
// unique violations onto ErrEmailInUse, ErrRegNoInUse or ErrUsernameInUse.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	ExistsByRegNoOrEmail(ctx context.Context, regNo, email string) (bool, error)
	ListByRole(ctx context.Context, role string) ([]*Account, error)
	UpdateProfile(ctx context.Context, id, username, role string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

type RoleValidator interface {
	ValidateRole(ctx context.Context, role string) error
}

// SessionRevoker ends every live session of an account.
type SessionRevoker interface {
	RevokeAccountSessions(ctx context.Context, accountID, clientIP, reason string) error
}

type Service struct {
	repo     Repository
	hasher   PasswordHasher
	roles    RoleValidator
	sessions SessionRevoker
	logger   *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, roles RoleValidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		hasher: hasher,
		roles:  roles,
		logger: logger,
	}
}

// SetSessionRevoker breaks the construction cycle with the auth service,
// which itself reads accounts through Repository.
func (s *Service) SetSessionRevoker(sessions SessionRevoker) {
	s.sessions = sessions
}

func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListByRole returns every account when role is RoleAll.
func (s *Service) ListByRole(ctx context.Context, role string) ([]AccountSummary, error) {
	filter := role
	if role == RoleAll {
		filter = ""
	}

	accounts, err := s.repo.ListByRole(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list accounts", "role", role, "error", err)
		return nil, err
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		summaries = append(summaries, a.Summary())
	}
	return summaries, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateAccountDTO) (*Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.roles.ValidateRole(ctx, dto.Role); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, id, dto.Username, dto.Role); err != nil {
		s.logger.Error("failed to update account", "account_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("account updated", "account_id", id, "role", dto.Role)
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id, clientIP string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	s.revokeSessions(ctx, id, clientIP, "account deleted")

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete account", "account_id", id, "error", err)
		return err
	}

	s.logger.Info("account deleted", "account_id", id)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, id string, dto ResetPasswordDTO, clientIP string) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		s.logger.Error("failed to reset password", "account_id", id, "error", err)
		return err
	}

	s.revokeSessions(ctx, id, clientIP, "password reset")
	s.logger.Info("account password reset", "account_id", id)
	return nil
}

func (s *Service) revokeSessions(ctx context.Context, id, clientIP, reason string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeAccountSessions(ctx, id, clientIP, reason); err != nil {
		s.logger.Warn("failed to revoke account sessions", "account_id", id, "reason", reason, "error", err)
	}
}

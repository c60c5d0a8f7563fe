package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/staff-registry/internal"
)

const DefaultAdminPermissionLevel = 100

// RoleRepository resolves a role name to its permission level. Unknown roles
// return internal.ErrUnknownRole.
type RoleRepository interface {
	GetLevel(ctx context.Context, role string) (int, error)
}

type PermissionChecker struct {
	roles      RoleRepository
	adminLevel int
	logger     *slog.Logger
}

func NewPermissionChecker(roles RoleRepository, adminLevel int, logger *slog.Logger) *PermissionChecker {
	if adminLevel <= 0 {
		adminLevel = DefaultAdminPermissionLevel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionChecker{
		roles:      roles,
		adminLevel: adminLevel,
		logger:     logger,
	}
}

func (c *PermissionChecker) AdminLevel() int {
	return c.adminLevel
}

func (c *PermissionChecker) Level(ctx context.Context, role string) (int, error) {
	return c.roles.GetLevel(ctx, role)
}

// LevelOrZero is used on the login path: an account whose role was removed
// from the table can still sign in but holds no privileges.
func (c *PermissionChecker) LevelOrZero(ctx context.Context, role string) (int, error) {
	level, err := c.roles.GetLevel(ctx, role)
	if err != nil {
		if appErr, ok := internal.AsAppError(err); ok && appErr.Code == internal.ErrCodeUnknownRole {
			c.logger.Warn("account role has no permission entry", "role", role)
			return 0, nil
		}
		return 0, err
	}
	return level, nil
}

// ValidateRole reports internal.ErrUnknownRole for roles missing from the table.
func (c *PermissionChecker) ValidateRole(ctx context.Context, role string) error {
	_, err := c.roles.GetLevel(ctx, role)
	return err
}

func (c *PermissionChecker) HasLevel(p *internal.Principal, required int) bool {
	return p.HasLevel(required)
}

func (c *PermissionChecker) IsAdmin(p *internal.Principal) bool {
	return p.HasLevel(c.adminLevel)
}

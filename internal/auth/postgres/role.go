package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/auth"
	"github.com/frahmantamala/staff-registry/internal/core/common/dberr"
	roleDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/role"
	"github.com/frahmantamala/staff-registry/internal/core/ids"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

var _ auth.RoleRepository = (*RoleRepository)(nil)

func (r *RoleRepository) GetLevel(ctx context.Context, role string) (int, error) {
	var row roleDatamodel.RolePermission
	if err := r.db.WithContext(ctx).Where("role = ?", role).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return 0, internal.ErrUnknownRole
		}
		return 0, storeError("find role", err)
	}
	return row.Permissions, nil
}

// Upsert sets the level of role, creating it when missing. Used by the seeder.
func (r *RoleRepository) Upsert(ctx context.Context, role string, permissions int) error {
	row := roleDatamodel.RolePermission{
		ID:          ids.New(),
		Role:        role,
		Permissions: permissions,
		CreatedAt:   time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{"permissions"}),
	}).Create(&row).Error
	if err != nil {
		return storeError(fmt.Sprintf("upsert role %q", role), err)
	}
	return nil
}

func (r *RoleRepository) List(ctx context.Context) (map[string]int, error) {
	var rows []roleDatamodel.RolePermission
	if err := r.db.WithContext(ctx).Order("permissions DESC").Find(&rows).Error; err != nil {
		return nil, storeError("list roles", err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Permissions
	}
	return out, nil
}

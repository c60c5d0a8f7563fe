package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/core/common/dberr"
	accountDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/account"
	"github.com/frahmantamala/staff-registry/internal/core/ids"
	"github.com/frahmantamala/staff-registry/internal/user"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ user.Repository = (*AccountRepository)(nil)

func (r *AccountRepository) Create(ctx context.Context, account *user.Account) error {
	if account.ID == "" {
		account.ID = ids.New()
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(user.ToDataModel(account)).Error; err != nil {
		return mapWriteError("create account", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*user.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*user.Account, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *AccountRepository) first(ctx context.Context, query string, args ...interface{}) (*user.Account, error) {
	var row accountDatamodel.Account
	err := r.db.WithContext(ctx).Where(query, args...).First(&row).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrAccountNotFound
		}
		return nil, internal.NewInternalError("account store failure", fmt.Errorf("find account: %w", err))
	}
	return user.FromDataModel(&row), nil
}

func (r *AccountRepository) ExistsByRegNoOrEmail(ctx context.Context, regNo, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&accountDatamodel.Account{}).
		Where("reg_no = ? OR email = ?", regNo, email).
		Count(&count).Error
	if err != nil {
		return false, internal.NewInternalError("account store failure", fmt.Errorf("count accounts: %w", err))
	}
	return count > 0, nil
}

// ListByRole lists every account when role is empty.
func (r *AccountRepository) ListByRole(ctx context.Context, role string) ([]*user.Account, error) {
	var rows []*accountDatamodel.Account
	q := r.db.WithContext(ctx).
		Select("id", "username", "reg_no", "hospital", "role").
		Order("username ASC")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, internal.NewInternalError("account store failure", fmt.Errorf("list accounts: %w", err))
	}

	accounts := make([]*user.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, user.FromDataModel(row))
	}
	return accounts, nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id, username, role string) error {
	return r.update(ctx, id, map[string]interface{}{
		"username":   username,
		"role":       role,
		"updated_at": time.Now().UTC(),
	})
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	})
}

func (r *AccountRepository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&accountDatamodel.Account{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return mapWriteError("update account", res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&accountDatamodel.Account{})
	if res.Error != nil {
		return internal.NewInternalError("account store failure", fmt.Errorf("delete account: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return internal.ErrAccountNotFound
	}
	return nil
}

func mapWriteError(op string, err error) error {
	if column, ok := dberr.UniqueViolation(err); ok {
		return user.ConflictForColumn(column)
	}
	return internal.NewInternalError("account store failure", fmt.Errorf("%s: %w", op, err))
}

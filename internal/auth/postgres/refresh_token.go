package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/auth"
	"github.com/frahmantamala/staff-registry/internal/core/common/dberr"
	sessionDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/session"
	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

var _ auth.RefreshTokenRepository = (*RefreshTokenRepository)(nil)

func storeError(op string, err error) error {
	return internal.NewInternalError("session store failure", fmt.Errorf("%s: %w", op, err))
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *auth.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(auth.ToDataModel(token)).Error; err != nil {
		return storeError("insert refresh token", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	return r.first(ctx, "token_hash = ?", tokenHash)
}

func (r *RefreshTokenRepository) GetByID(ctx context.Context, id string) (*auth.RefreshToken, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *RefreshTokenRepository) first(ctx context.Context, query string, args ...interface{}) (*auth.RefreshToken, error) {
	var row sessionDatamodel.RefreshToken
	if err := r.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrTokenNotFound
		}
		return nil, storeError("find refresh token", err)
	}
	return auth.FromDataModel(&row), nil
}

func revokeFields(revokedAt time.Time, ip, reason string) map[string]interface{} {
	return map[string]interface{}{
		"revoked_at":     revokedAt,
		"revoked_by_ip":  ip,
		"revoked_reason": reason,
	}
}

func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID string, successor *auth.RefreshToken, revokedAt time.Time, ip, reason string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(auth.ToDataModel(successor)).Error; err != nil {
			return storeError("insert successor token", err)
		}

		fields := revokeFields(revokedAt, ip, reason)
		fields["replaced_by_id"] = successor.ID

		res := tx.Model(&sessionDatamodel.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", oldID).
			Updates(fields)
		if res.Error != nil {
			return storeError("revoke rotated token", res.Error)
		}
		if res.RowsAffected == 0 {
			return internal.ErrTokenReused
		}
		return nil
	})
	if err != nil {
		var appErr *internal.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return storeError("rotate refresh token", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id string, revokedAt time.Time, ip, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&sessionDatamodel.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Updates(revokeFields(revokedAt, ip, reason))
	if res.Error != nil {
		return false, storeError("revoke refresh token", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *RefreshTokenRepository) RevokeAllForAccount(ctx context.Context, accountID string, revokedAt time.Time, ip, reason string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&sessionDatamodel.RefreshToken{}).
		Where("account_id = ? AND revoked_at IS NULL", accountID).
		Updates(revokeFields(revokedAt, ip, reason))
	if res.Error != nil {
		return 0, storeError("revoke account tokens", res.Error)
	}
	return res.RowsAffected, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/core/common/dberr"
	registrationDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/registration"
	"github.com/frahmantamala/staff-registry/internal/core/ids"
	"github.com/frahmantamala/staff-registry/internal/registration"
	"github.com/frahmantamala/staff-registry/internal/user"
	"gorm.io/gorm"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

var _ registration.Repository = (*RequestRepository)(nil)

func storeError(op string, err error) error {
	return internal.NewInternalError("registration store failure", fmt.Errorf("%s: %w", op, err))
}

func (r *RequestRepository) Create(ctx context.Context, req *registration.Request) error {
	if req.ID == "" {
		req.ID = ids.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(registration.ToDataModel(req)).Error; err != nil {
		if _, ok := dberr.UniqueViolation(err); ok {
			return internal.ErrRequestPending
		}
		return storeError("insert request", err)
	}
	return nil
}

func (r *RequestRepository) List(ctx context.Context) ([]*registration.Request, error) {
	var rows []*registrationDatamodel.Request
	err := r.db.WithContext(ctx).
		Select("id", "username", "reg_no", "created_at").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storeError("list requests", err)
	}

	out := make([]*registration.Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, registration.FromDataModel(row))
	}
	return out, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*registration.Request, error) {
	var row registrationDatamodel.Request
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrRequestNotFound
		}
		return nil, storeError("find request", err)
	}
	return registration.FromDataModel(&row), nil
}

func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&registrationDatamodel.Request{})
	if res.Error != nil {
		return storeError("delete request", res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrRequestNotFound
	}
	return nil
}

// Promote creates the account and removes the request atomically. If the
// request vanished in the meantime nothing is written.
func (r *RequestRepository) Promote(ctx context.Context, requestID string, account *user.Account) error {
	if account.ID == "" {
		account.ID = ids.New()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user.ToDataModel(account)).Error; err != nil {
			if column, ok := dberr.UniqueViolation(err); ok {
				return user.ConflictForColumn(column)
			}
			return storeError("insert account", err)
		}

		res := tx.Where("id = ?", requestID).Delete(&registrationDatamodel.Request{})
		if res.Error != nil {
			return storeError("delete request", res.Error)
		}
		if res.RowsAffected == 0 {
			return internal.ErrRequestNotFound
		}
		return nil
	})
	if err != nil {
		var appErr *internal.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return storeError("promote request", err)
	}
	return nil
}

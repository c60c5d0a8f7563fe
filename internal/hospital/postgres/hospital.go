package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/core/common/dberr"
	hospitalDatamodel "github.com/frahmantamala/staff-registry/internal/core/datamodel/hospital"
	"github.com/frahmantamala/staff-registry/internal/core/ids"
	"github.com/frahmantamala/staff-registry/internal/hospital"
	"gorm.io/gorm"
)

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepository(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

var _ hospital.Repository = (*HospitalRepository)(nil)

func writeError(op string, err error) error {
	if _, ok := dberr.UniqueViolation(err); ok {
		return internal.ErrHospitalExists
	}
	return internal.NewInternalError("hospital store failure", fmt.Errorf("%s: %w", op, err))
}

func (r *HospitalRepository) List(ctx context.Context) ([]*hospital.Hospital, error) {
	var rows []*hospitalDatamodel.Hospital
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, internal.NewInternalError("hospital store failure", fmt.Errorf("list hospitals: %w", err))
	}
	out := make([]*hospital.Hospital, 0, len(rows))
	for _, row := range rows {
		out = append(out, hospital.FromDataModel(row))
	}
	return out, nil
}

func (r *HospitalRepository) GetByID(ctx context.Context, id string) (*hospital.Hospital, error) {
	var row hospitalDatamodel.Hospital
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrHospitalNotFound
		}
		return nil, internal.NewInternalError("hospital store failure", fmt.Errorf("find hospital: %w", err))
	}
	return hospital.FromDataModel(&row), nil
}

func (r *HospitalRepository) Create(ctx context.Context, h *hospital.Hospital) error {
	if h.ID == "" {
		h.ID = ids.New()
	}
	if err := r.db.WithContext(ctx).Create(hospital.ToDataModel(h)).Error; err != nil {
		return writeError("insert hospital", err)
	}
	return nil
}

func (r *HospitalRepository) Update(ctx context.Context, h *hospital.Hospital) error {
	res := r.db.WithContext(ctx).
		Model(&hospitalDatamodel.Hospital{}).
		Where("id = ?", h.ID).
		Updates(map[string]interface{}{
			"name":       h.Name,
			"category":   h.Category,
			"city":       h.City,
			"address":    h.Address,
			"contact_no": h.ContactNo,
			"updated_at": h.UpdatedAt,
		})
	if res.Error != nil {
		return writeError("update hospital", res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrHospitalNotFound
	}
	return nil
}

func (r *HospitalRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&hospitalDatamodel.Hospital{})
	if res.Error != nil {
		return internal.NewInternalError("hospital store failure", fmt.Errorf("delete hospital: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return internal.ErrHospitalNotFound
	}
	return nil
}

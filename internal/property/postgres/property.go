package postgres

import (
	"context"
	"errors"

	appErrors "github.com/frahmantamala/property-management/internal"
	propertyDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/property"
	"github.com/frahmantamala/property-management/internal/property"
	"gorm.io/gorm"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, p *propertyDatamodel.Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*property.Property, error) {
	var p propertyDatamodel.Property
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrPropertyNotFound
		}
		return nil, err
	}
	return property.FromDataModel(&p), nil
}

func (r *PropertyRepository) ListIDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&propertyDatamodel.Property{}).
		Where("owner_id = ?", ownerID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

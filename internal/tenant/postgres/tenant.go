package postgres

import (
	"context"
	"errors"

	appErrors "github.com/frahmantamala/property-management/internal"
	tenantDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/tenant"
	"github.com/frahmantamala/property-management/internal/tenant"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(ctx context.Context, t *tenantDatamodel.Tenant) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TenantRepository) GetByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	var t tenantDatamodel.Tenant
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrTenantNotFound
		}
		return nil, err
	}
	return tenant.FromDataModel(&t), nil
}

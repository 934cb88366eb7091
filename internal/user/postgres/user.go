package postgres

import (
	"context"
	"errors"

	appErrors "github.com/frahmantamala/property-management/internal"
	userDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/user"
	"github.com/frahmantamala/property-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

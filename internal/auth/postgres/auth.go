package auth

import (
	"context"
	stderrors "errors"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/auth"
	"github.com/frahmantamala/property-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

var _ auth.Repository = (*Repository)(nil)

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	return r.first(r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email))
}

func (r *Repository) GetCredentialsByID(ctx context.Context, userID int64) (*auth.Credentials, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", userID))
}

func (r *Repository) first(query *gorm.DB) (*auth.Credentials, error) {
	var u user.User
	if err := query.First(&u).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	return &auth.Credentials{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}, nil
}

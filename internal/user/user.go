package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/user"
)

// User is an owner account as exposed by the API.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToDataModel(u *User) *userDatamodel.User {
	m := &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Phone != "" {
		phone := u.Phone
		m.Phone = &phone
	}
	return m
}

func FromDataModel(u *userDatamodel.User) *User {
	domainUser := &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Phone != nil {
		domainUser.Phone = *u.Phone
	}
	return domainUser
}

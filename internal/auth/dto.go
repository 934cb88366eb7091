package auth

import (
	"github.com/frahmantamala/property-management/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d LoginDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("email", d.Email).Required().MaxLength(255)
	validator.Field("password", d.Password).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("refresh_token", d.RefreshToken).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

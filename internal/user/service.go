package user

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/payment"
)

// Repository returns ErrUserNotFound for unknown ids.
type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
}

type ServiceAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

var _ payment.OwnerDirectory = (*Service)(nil)

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrUserNotFound
		}
		s.logger.Error("failed to get user by id", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to load user", err)
	}
	return u, nil
}

// GetOwner returns the landlord block printed on receipts.
func (s *Service) GetOwner(ctx context.Context, ownerID int64) (*payment.OwnerView, error) {
	u, err := s.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &payment.OwnerView{Name: u.Name, Email: u.Email, Phone: u.Phone}, nil
}

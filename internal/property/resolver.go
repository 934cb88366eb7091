package property

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/property-management/internal"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Property, error)
	ListIDsByOwner(ctx context.Context, ownerID int64) ([]int64, error)
}

// Resolver answers ownership questions about properties for the payment and
// statistics services.
type Resolver struct {
	repo   Repository
	logger *slog.Logger
}

func NewResolver(repo Repository, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// ResolveOwnedProperty returns the property when ownerID owns it. A missing
// property is NotFound, someone else's is Forbidden.
func (r *Resolver) ResolveOwnedProperty(ctx context.Context, ownerID, propertyID int64) (*Property, error) {
	p, err := r.repo.GetByID(ctx, propertyID)
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		r.logger.Error("failed to load property", "error", err, "property_id", propertyID)
		return nil, errors.NewInternalError("failed to load property", err)
	}

	if !p.OwnedBy(ownerID) {
		r.logger.Warn("property access denied", "property_id", propertyID, "owner_id", ownerID)
		return nil, errors.ErrForbidden
	}

	return p, nil
}

func (r *Resolver) OwnedPropertyIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	ids, err := r.repo.ListIDsByOwner(ctx, ownerID)
	if err != nil {
		r.logger.Error("failed to list owned properties", "error", err, "owner_id", ownerID)
		return nil, errors.NewInternalError("failed to list properties", err)
	}
	return ids, nil
}

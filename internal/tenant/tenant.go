package tenant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/property-management/internal"
	tenantDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/tenant"
	"github.com/shopspring/decimal"
)

type Tenant struct {
	ID             int64            `json:"id"`
	PropertyID     int64            `json:"property_id"`
	Name           string           `json:"name"`
	Email          *string          `json:"email,omitempty"`
	Phone          *string          `json:"phone,omitempty"`
	RentShare      *decimal.Decimal `json:"rent_share,omitempty"`
	LeaseStartDate time.Time        `json:"lease_start_date"`
	LeaseEndDate   *time.Time       `json:"lease_end_date,omitempty"`
}

// ContactEmail returns the trimmed email and whether one is on file.
func (t *Tenant) ContactEmail() (string, bool) {
	if t.Email == nil {
		return "", false
	}
	email := strings.TrimSpace(*t.Email)
	return email, email != ""
}

func (t *Tenant) LivesIn(propertyID int64) bool {
	return t.PropertyID == propertyID
}

func FromDataModel(t *tenantDatamodel.Tenant) *Tenant {
	return &Tenant{
		ID:             t.ID,
		PropertyID:     t.PropertyID,
		Name:           t.Name,
		Email:          t.Email,
		Phone:          t.Phone,
		RentShare:      t.RentShare,
		LeaseStartDate: t.LeaseStartDate,
		LeaseEndDate:   t.LeaseEndDate,
	}
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Tenant, error)
}

type Resolver struct {
	repo   Repository
	logger *slog.Logger
}

func NewResolver(repo Repository, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

func (r *Resolver) ResolveTenant(ctx context.Context, tenantID int64) (*Tenant, error) {
	t, err := r.repo.GetByID(ctx, tenantID)
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		r.logger.Error("failed to load tenant", "error", err, "tenant_id", tenantID)
		return nil, errors.NewInternalError("failed to load tenant", err)
	}
	return t, nil
}

package stats

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/property-management/internal"
)

type Repository interface {
	PaymentTotals(ctx context.Context, propertyIDs []int64, from, to time.Time) (PaymentTotals, error)
	TicketTotals(ctx context.Context, propertyIDs []int64, from, to time.Time) (TicketTotals, error)
	OccupiedTenants(ctx context.Context, propertyIDs []int64, from, to time.Time) (int64, error)
}

type PropertyLister interface {
	OwnedPropertyIDs(ctx context.Context, ownerID int64) ([]int64, error)
}

type ServiceAPI interface {
	GetDashboardStats(ctx context.Context, ownerID int64) (*DashboardSnapshot, error)
}

type Service struct {
	repo       Repository
	properties PropertyLister
	months     int
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo Repository, properties PropertyLister, months int, logger *slog.Logger) *Service {
	if months < 2 {
		months = DefaultMonths
	}
	return &Service{
		repo:       repo,
		properties: properties,
		months:     months,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetDashboardStats computes the snapshot fresh on every call. Any failed
// query fails the whole snapshot.
func (s *Service) GetDashboardStats(ctx context.Context, ownerID int64) (*DashboardSnapshot, error) {
	ids, err := s.properties.OwnedPropertyIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	windows := MonthWindows(now, s.months)
	figures := make([]MonthFigures, len(windows))
	propertyCount := int64(len(ids))

	for i, w := range windows {
		figures[i].Window = w
		if propertyCount == 0 {
			continue
		}

		if figures[i].Payments, err = s.repo.PaymentTotals(ctx, ids, w.Start, w.End); err != nil {
			return nil, s.queryFailed(err, "payments", ownerID, w)
		}
		if figures[i].Tickets, err = s.repo.TicketTotals(ctx, ids, w.Start, w.End); err != nil {
			return nil, s.queryFailed(err, "tickets", ownerID, w)
		}
		if figures[i].Occupied, err = s.repo.OccupiedTenants(ctx, ids, w.Start, w.End); err != nil {
			return nil, s.queryFailed(err, "occupancy", ownerID, w)
		}
		figures[i].Occupancy = OccupancyRate(figures[i].Occupied, propertyCount)
	}

	s.logger.Debug("dashboard stats computed", "owner_id", ownerID, "properties", propertyCount, "months", len(windows))
	return BuildSnapshot(figures, propertyCount, now), nil
}

func (s *Service) queryFailed(err error, metric string, ownerID int64, w Window) error {
	s.logger.Error("dashboard query failed", "error", err, "metric", metric, "owner_id", ownerID, "month", w.Label)
	return errors.NewInternalError("failed to compute dashboard statistics", err)
}

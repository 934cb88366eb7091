package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/property-management/internal/core/datamodel/payment"
	"github.com/frahmantamala/property-management/internal/core/datamodel/ticket"
	"github.com/frahmantamala/property-management/internal/stats"
	"github.com/jmoiron/sqlx"
)

const paymentTotalsQuery = `
SELECT
  COALESCE(SUM(amount), 0) AS amount,
  COUNT(*) AS count,
  COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS paid
FROM payments
WHERE property_id IN (?) AND due_date >= ? AND due_date < ?
`

const ticketTotalsQuery = `
SELECT
  COUNT(*) AS created,
  COALESCE(SUM(CASE WHEN status IN (?) THEN 1 ELSE 0 END), 0) AS resolved
FROM tickets
WHERE property_id IN (?) AND created_at >= ? AND created_at < ?
`

// A lease intersects [from, to) when it starts before to and has not ended
// before from. An open lease has no end date.
const occupiedTenantsQuery = `
SELECT COUNT(*)
FROM tenants
WHERE property_id IN (?)
  AND lease_start_date < ?
  AND (lease_end_date IS NULL OR lease_end_date >= ?)
`

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

var _ stats.Repository = (*StatsRepository)(nil)

func (r *StatsRepository) PaymentTotals(ctx context.Context, propertyIDs []int64, from, to time.Time) (stats.PaymentTotals, error) {
	var totals stats.PaymentTotals
	query, args, err := sqlx.In(paymentTotalsQuery, payment.StatusPaid, propertyIDs, from.UTC(), to.UTC())
	if err != nil {
		return totals, fmt.Errorf("payment totals query: %w", err)
	}
	if err := r.db.GetContext(ctx, &totals, r.db.Rebind(query), args...); err != nil {
		return totals, fmt.Errorf("payment totals: %w", err)
	}
	return totals, nil
}

func (r *StatsRepository) TicketTotals(ctx context.Context, propertyIDs []int64, from, to time.Time) (stats.TicketTotals, error) {
	var totals stats.TicketTotals
	resolved := []string{ticket.StatusResolved, ticket.StatusClosed}
	query, args, err := sqlx.In(ticketTotalsQuery, resolved, propertyIDs, from.UTC(), to.UTC())
	if err != nil {
		return totals, fmt.Errorf("ticket totals query: %w", err)
	}
	if err := r.db.GetContext(ctx, &totals, r.db.Rebind(query), args...); err != nil {
		return totals, fmt.Errorf("ticket totals: %w", err)
	}
	return totals, nil
}

func (r *StatsRepository) OccupiedTenants(ctx context.Context, propertyIDs []int64, from, to time.Time) (int64, error) {
	var count int64
	query, args, err := sqlx.In(occupiedTenantsQuery, propertyIDs, to.UTC(), from.UTC())
	if err != nil {
		return 0, fmt.Errorf("occupancy query: %w", err)
	}
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("occupancy: %w", err)
	}
	return count, nil
}

// Package stats aggregates an owner's payments, tickets and tenancies into
// the monthly dashboard snapshot.
package stats

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultMonths = 6

const MonthLabelLayout = "Jan 2006"

// CalculateTrend is the rounded percentage change from previous to current.
// It is 0 whenever previous is 0, including when current is also 0.
func CalculateTrend(current, previous float64) int {
	if previous == 0 {
		return 0
	}
	return int(math.Round((current - previous) / previous * 100))
}

// PaymentRate is the rounded share of paid payments, 0 when there are none.
func PaymentRate(paid, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(paid) / float64(total) * 100))
}

// OccupancyRate is occupied tenants per property as a rounded percentage,
// 0 when there are no properties.
func OccupancyRate(occupied, properties int64) int {
	if properties == 0 {
		return 0
	}
	return int(math.Round(float64(occupied) / float64(properties) * 100))
}

// Window is one calendar month, [Start, End) in UTC.
type Window struct {
	Label string
	Start time.Time
	End   time.Time
}

// MonthWindows returns the n calendar months ending with the month of now,
// oldest first.
func MonthWindows(now time.Time, n int) []Window {
	if n <= 0 {
		n = DefaultMonths
	}
	now = now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	windows := make([]Window, n)
	for i := 0; i < n; i++ {
		start := current.AddDate(0, i-(n-1), 0)
		windows[i] = Window{
			Label: start.Format(MonthLabelLayout),
			Start: start,
			End:   start.AddDate(0, 1, 0),
		}
	}
	return windows
}

type PaymentTotals struct {
	Amount decimal.Decimal `db:"amount"`
	Count  int64           `db:"count"`
	Paid   int64           `db:"paid"`
}

type TicketTotals struct {
	Created  int64 `db:"created"`
	Resolved int64 `db:"resolved"`
}

// MonthFigures is everything measured for one window.
type MonthFigures struct {
	Window    Window
	Payments  PaymentTotals
	Tickets   TicketTotals
	Occupied  int64
	Occupancy int
}

type ChartPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

type PaymentSummary struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int64           `json:"count"`
	PaidCount   int64           `json:"paid_count"`
	PaymentRate int             `json:"payment_rate"`
	Trend       int             `json:"trend"`
}

type TicketSummary struct {
	Created  int64 `json:"created"`
	Resolved int64 `json:"resolved"`
	Trend    int   `json:"trend"`
}

type OccupancySummary struct {
	Rate            int   `json:"rate"`
	OccupiedTenants int64 `json:"occupied_tenants"`
	Properties      int64 `json:"properties"`
	Trend           int   `json:"trend"`
}

type Summary struct {
	Payments  PaymentSummary   `json:"payments"`
	Tickets   TicketSummary    `json:"tickets"`
	Occupancy OccupancySummary `json:"occupancy"`
}

type Charts struct {
	Payments  []ChartPoint `json:"payments"`
	Tickets   []ChartPoint `json:"tickets"`
	Occupancy []ChartPoint `json:"occupancy"`
}

type DashboardSnapshot struct {
	Period      string    `json:"period"`
	Summary     Summary   `json:"summary"`
	Charts      Charts    `json:"charts"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BuildSnapshot assembles the snapshot from per-month figures ordered oldest
// first. The last entry is the current month.
func BuildSnapshot(figures []MonthFigures, properties int64, generatedAt time.Time) *DashboardSnapshot {
	snapshot := &DashboardSnapshot{
		GeneratedAt: generatedAt,
		Summary: Summary{
			Payments:  PaymentSummary{TotalAmount: decimal.Zero},
			Occupancy: OccupancySummary{Properties: properties},
		},
		Charts: Charts{
			Payments:  make([]ChartPoint, 0, len(figures)),
			Tickets:   make([]ChartPoint, 0, len(figures)),
			Occupancy: make([]ChartPoint, 0, len(figures)),
		},
	}

	for _, f := range figures {
		snapshot.Charts.Payments = append(snapshot.Charts.Payments, ChartPoint{Month: f.Window.Label, Value: f.Payments.Amount.InexactFloat64()})
		snapshot.Charts.Tickets = append(snapshot.Charts.Tickets, ChartPoint{Month: f.Window.Label, Value: float64(f.Tickets.Created)})
		snapshot.Charts.Occupancy = append(snapshot.Charts.Occupancy, ChartPoint{Month: f.Window.Label, Value: float64(f.Occupancy)})
	}

	if len(figures) == 0 {
		return snapshot
	}

	cur := figures[len(figures)-1]
	var prev MonthFigures
	if len(figures) > 1 {
		prev = figures[len(figures)-2]
	}
	snapshot.Period = cur.Window.Label
	snapshot.Summary.Payments = PaymentSummary{
		TotalAmount: cur.Payments.Amount,
		Count:       cur.Payments.Count,
		PaidCount:   cur.Payments.Paid,
		PaymentRate: PaymentRate(cur.Payments.Paid, cur.Payments.Count),
		Trend:       CalculateTrend(cur.Payments.Amount.InexactFloat64(), prev.Payments.Amount.InexactFloat64()),
	}
	snapshot.Summary.Tickets = TicketSummary{
		Created:  cur.Tickets.Created,
		Resolved: cur.Tickets.Resolved,
		Trend:    CalculateTrend(float64(cur.Tickets.Created), float64(prev.Tickets.Created)),
	}
	snapshot.Summary.Occupancy = OccupancySummary{
		Rate:            cur.Occupancy,
		OccupiedTenants: cur.Occupied,
		Properties:      properties,
		Trend:           CalculateTrend(float64(cur.Occupancy), float64(prev.Occupancy)),
	}

	return snapshot
}

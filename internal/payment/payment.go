package payment

import (
	"time"

	errors "github.com/frahmantamala/property-management/internal"
	paymentDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/payment"
	"github.com/frahmantamala/property-management/internal/rentshare"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusPending = paymentDatamodel.StatusPending
	StatusPaid    = paymentDatamodel.StatusPaid
	StatusLate    = paymentDatamodel.StatusLate
)

const (
	MethodBankTransfer = "bank_transfer"
	MethodCash         = "cash"
	MethodCheck        = "check"
)

const (
	ActionMarkedPaid   = "marked_paid"
	ActionReminderSent = "reminder_sent"
)

var (
	Statuses       = []string{StatusPending, StatusPaid, StatusLate}
	PaymentMethods = []string{MethodBankTransfer, MethodCash, MethodCheck}
)

type HistoryEntry struct {
	Action      string                 `json:"action"`
	PerformedBy int64                  `json:"performed_by"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Payment is one rent obligation of a tenant for one billing period.
type Payment struct {
	ID              int64              `json:"id"`
	TenantID        int64              `json:"tenant_id"`
	PropertyID      int64              `json:"property_id"`
	Amount          decimal.Decimal    `json:"amount"`
	DueDate         time.Time          `json:"due_date"`
	PaidDate        *time.Time         `json:"paid_date,omitempty"`
	Status          string             `json:"status"`
	PaymentMethod   *string            `json:"payment_method,omitempty"`
	Reference       *string            `json:"reference,omitempty"`
	IsCoLivingShare bool               `json:"is_co_living_share"`
	ShareDetails    *rentshare.Details `json:"share_details,omitempty"`
	History         []HistoryEntry     `json:"history"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (p *Payment) IsPaid() bool {
	return p.Status == StatusPaid
}

// IsOverdue reports whether the payment would be picked up by the late sweep at now.
func (p *Payment) IsOverdue(now time.Time) bool {
	return p.Status == StatusPending && p.PaidDate == nil && p.DueDate.Before(now)
}

// DeriveAmount enforces the co-living invariant: a co-living share's amount
// is always the calculator's output for its share details. It must run
// before every write of a payment.
func (p *Payment) DeriveAmount() error {
	if !p.IsCoLivingShare {
		p.ShareDetails = nil
		return nil
	}
	if p.ShareDetails == nil {
		return errors.NewValidationFieldError("share_details", "share_details is required for a co-living share", errors.ErrCodeInvalidShare)
	}

	amount, err := p.ShareDetails.Amount()
	if err != nil {
		return errors.NewValidationFieldError("share_details", err.Error(), errors.ErrCodeInvalidShare)
	}
	p.Amount = amount
	return nil
}

type TenantSummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

type PropertySummary struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// View is a payment populated with its tenant and property.
type View struct {
	*Payment
	Tenant   *TenantSummary   `json:"tenant,omitempty"`
	Property *PropertySummary `json:"property,omitempty"`
}

func (v *View) TenantName() string {
	if v.Tenant == nil {
		return ""
	}
	return v.Tenant.Name
}

func (v *View) PropertyName() string {
	if v.Property == nil {
		return ""
	}
	return v.Property.Name
}

// OwnerView is the landlord block printed on receipts.
type OwnerView struct {
	Name  string
	Email string
	Phone string
}

type Receipt struct {
	FileName string
	Content  []byte
}

func ToDataModel(p *Payment) *paymentDatamodel.Payment {
	m := &paymentDatamodel.Payment{
		ID:              p.ID,
		TenantID:        p.TenantID,
		PropertyID:      p.PropertyID,
		Amount:          p.Amount,
		DueDate:         p.DueDate,
		PaidDate:        p.PaidDate,
		Status:          p.Status,
		PaymentMethod:   p.PaymentMethod,
		Reference:       p.Reference,
		IsCoLivingShare: p.IsCoLivingShare,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}

	if d := p.ShareDetails; d != nil {
		percentage, totalRent := d.Percentage, d.TotalRent
		m.SharePercentage = &percentage
		m.ShareTotalRent = &totalRent
		m.ChargeInternet = d.CommonCharges.Internet
		m.ChargeElectricity = d.CommonCharges.Electricity
		m.ChargeWater = d.CommonCharges.Water
		m.ChargeHeating = d.CommonCharges.Heating
	}

	return m
}

func FromDataModel(m *paymentDatamodel.Payment) *Payment {
	p := &Payment{
		ID:              m.ID,
		TenantID:        m.TenantID,
		PropertyID:      m.PropertyID,
		Amount:          m.Amount,
		DueDate:         m.DueDate,
		PaidDate:        m.PaidDate,
		Status:          m.Status,
		PaymentMethod:   m.PaymentMethod,
		Reference:       m.Reference,
		IsCoLivingShare: m.IsCoLivingShare,
		History:         make([]HistoryEntry, 0, len(m.History)),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	if m.IsCoLivingShare && m.SharePercentage != nil && m.ShareTotalRent != nil {
		p.ShareDetails = &rentshare.Details{
			Percentage: *m.SharePercentage,
			TotalRent:  *m.ShareTotalRent,
			CommonCharges: rentshare.CommonCharges{
				Internet:    m.ChargeInternet,
				Electricity: m.ChargeElectricity,
				Water:       m.ChargeWater,
				Heating:     m.ChargeHeating,
			},
		}
	}

	for _, h := range m.History {
		p.History = append(p.History, HistoryEntry{
			Action:      h.Action,
			PerformedBy: h.PerformedBy,
			Timestamp:   h.CreatedAt,
			Metadata:    map[string]interface{}(h.Metadata),
		})
	}

	return p
}

func HistoryToDataModel(paymentID int64, e HistoryEntry) *paymentDatamodel.History {
	return &paymentDatamodel.History{
		PaymentID:   paymentID,
		Action:      e.Action,
		PerformedBy: e.PerformedBy,
		Metadata:    datatypes.JSONMap(e.Metadata),
		CreatedAt:   e.Timestamp,
	}
}

// ViewFromDataModel expects Tenant and Property to be preloaded; missing
// associations leave the summaries nil.
func ViewFromDataModel(m *paymentDatamodel.Payment) *View {
	v := &View{Payment: FromDataModel(m)}
	if m.Tenant != nil {
		v.Tenant = &TenantSummary{ID: m.Tenant.ID, Name: m.Tenant.Name, Email: m.Tenant.Email}
	}
	if m.Property != nil {
		v.Property = &PropertySummary{ID: m.Property.ID, Name: m.Property.Name, Address: m.Property.Address}
	}
	return v
}

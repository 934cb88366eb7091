package payment

import (
	"time"

	"github.com/frahmantamala/property-management/internal/core/datamodel/property"
	"github.com/frahmantamala/property-management/internal/core/datamodel/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusLate    = "late"
)

type Payment struct {
	ID         int64           `gorm:"primaryKey"`
	TenantID   int64           `gorm:"column:tenant_id;not null;index:idx_payments_tenant_due,priority:1"`
	PropertyID int64           `gorm:"column:property_id;not null;index:idx_payments_property_status,priority:1"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	DueDate    time.Time       `gorm:"column:due_date;not null;index:idx_payments_tenant_due,priority:2"`
	PaidDate   *time.Time      `gorm:"column:paid_date"`
	Status     string          `gorm:"column:status;not null;default:pending;index:idx_payments_property_status,priority:2"`

	PaymentMethod *string `gorm:"column:payment_method"`
	Reference     *string `gorm:"column:reference"`

	IsCoLivingShare   bool             `gorm:"column:is_co_living_share;not null;default:false"`
	SharePercentage   *decimal.Decimal `gorm:"column:share_percentage;type:numeric(5,2)"`
	ShareTotalRent    *decimal.Decimal `gorm:"column:share_total_rent;type:numeric(12,2)"`
	ChargeInternet    *decimal.Decimal `gorm:"column:charge_internet;type:numeric(12,2)"`
	ChargeElectricity *decimal.Decimal `gorm:"column:charge_electricity;type:numeric(12,2)"`
	ChargeWater       *decimal.Decimal `gorm:"column:charge_water;type:numeric(12,2)"`
	ChargeHeating     *decimal.Decimal `gorm:"column:charge_heating;type:numeric(12,2)"`

	History  []History          `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
	Tenant   *tenant.Tenant     `gorm:"foreignKey:TenantID;constraint:OnDelete:RESTRICT"`
	Property *property.Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:RESTRICT"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// History is one append-only lifecycle entry of a payment.
type History struct {
	ID          int64             `gorm:"primaryKey"`
	PaymentID   int64             `gorm:"column:payment_id;not null;index"`
	Action      string            `gorm:"column:action;not null"`
	PerformedBy int64             `gorm:"column:performed_by;not null"`
	Metadata    datatypes.JSONMap `gorm:"column:metadata"`
	CreatedAt   time.Time         `gorm:"column:created_at"`
}

func (History) TableName() string {
	return "payment_history"
}

package tenant

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tenant struct {
	ID             int64            `gorm:"primaryKey"`
	PropertyID     int64            `gorm:"column:property_id;not null;index"`
	Name           string           `gorm:"column:name;not null"`
	Email          *string          `gorm:"column:email"`
	Phone          *string          `gorm:"column:phone"`
	RentShare      *decimal.Decimal `gorm:"column:rent_share;type:numeric(5,2)"`
	LeaseStartDate time.Time        `gorm:"column:lease_start_date;not null"`
	LeaseEndDate   *time.Time       `gorm:"column:lease_end_date"`
	CreatedAt      time.Time        `gorm:"column:created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

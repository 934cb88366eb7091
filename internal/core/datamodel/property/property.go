package property

import (
	"time"

	"github.com/shopspring/decimal"
)

type Property struct {
	ID         int64           `gorm:"primaryKey"`
	OwnerID    int64           `gorm:"column:owner_id;not null;index"`
	Name       string          `gorm:"column:name;not null"`
	Address    string          `gorm:"column:address"`
	Rent       decimal.Decimal `gorm:"column:rent;type:numeric(12,2);not null"`
	IsCoLiving bool            `gorm:"column:is_co_living;not null;default:false"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

package ticket

import "time"

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

type Ticket struct {
	ID         int64      `gorm:"primaryKey"`
	PropertyID int64      `gorm:"column:property_id;not null;index"`
	Title      string     `gorm:"column:title;not null"`
	Status     string     `gorm:"column:status;not null;default:open"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

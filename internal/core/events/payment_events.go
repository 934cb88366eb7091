package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentPaid     = "payment.paid"
	EventTypePaymentReminder = "payment.reminder"
)

// PaymentNotice is the flattened payment view carried by notification events.
type PaymentNotice struct {
	PaymentID     int64      `json:"payment_id"`
	TenantName    string     `json:"tenant_name"`
	TenantEmail   string     `json:"tenant_email"`
	PropertyName  string     `json:"property_name"`
	Amount        string     `json:"amount"`
	DueDate       time.Time  `json:"due_date"`
	PaidDate      *time.Time `json:"paid_date,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Reference     string     `json:"reference,omitempty"`
	Status        string     `json:"status"`
}

type PaymentNotificationEvent struct {
	BaseEvent
	Notice PaymentNotice `json:"notice"`
}

func newPaymentNotificationEvent(eventType string, notice PaymentNotice) *PaymentNotificationEvent {
	return &PaymentNotificationEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":   notice.PaymentID,
				"tenant_email": notice.TenantEmail,
				"amount":       notice.Amount,
				"status":       notice.Status,
			},
		},
		Notice: notice,
	}
}

func NewPaymentPaidEvent(notice PaymentNotice) *PaymentNotificationEvent {
	return newPaymentNotificationEvent(EventTypePaymentPaid, notice)
}

func NewPaymentReminderEvent(notice PaymentNotice) *PaymentNotificationEvent {
	return newPaymentNotificationEvent(EventTypePaymentReminder, notice)
}

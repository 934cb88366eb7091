// Package notification turns payment lifecycle events into tenant emails.
// The payment service publishes on the event bus, EventHandler queues a job
// and the Dispatcher's workers render and send it.
package notification

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/property-management/internal/core/events"
	"github.com/frahmantamala/property-management/internal/payment"
)

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Notifier is the payment service's notification sink.
type Notifier struct {
	bus    Publisher
	logger *slog.Logger
}

func NewNotifier(bus Publisher, logger *slog.Logger) *Notifier {
	return &Notifier{bus: bus, logger: logger}
}

var _ payment.Notifier = (*Notifier)(nil)

func (n *Notifier) SendPaymentConfirmation(ctx context.Context, email string, view *payment.View) error {
	event := events.NewPaymentPaidEvent(NoticeFromView(email, view))
	n.logger.Debug("publishing payment confirmation", "payment_id", view.ID, "event_id", event.EventID())
	return n.bus.Publish(ctx, event)
}

func (n *Notifier) SendPaymentReminder(ctx context.Context, email string, view *payment.View) error {
	event := events.NewPaymentReminderEvent(NoticeFromView(email, view))
	n.logger.Debug("publishing payment reminder", "payment_id", view.ID, "event_id", event.EventID())
	return n.bus.Publish(ctx, event)
}

func NoticeFromView(email string, view *payment.View) events.PaymentNotice {
	notice := events.PaymentNotice{
		PaymentID:    view.ID,
		TenantName:   view.TenantName(),
		TenantEmail:  email,
		PropertyName: view.PropertyName(),
		Amount:       view.Amount.StringFixed(2),
		DueDate:      view.DueDate,
		PaidDate:     view.PaidDate,
		Status:       view.Status,
	}
	if view.PaymentMethod != nil {
		notice.PaymentMethod = *view.PaymentMethod
	}
	if view.Reference != nil {
		notice.Reference = *view.Reference
	}
	return notice
}

package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/property-management/internal/core/events"
)

type Enqueuer interface {
	Enqueue(job Job) error
}

type EventHandler struct {
	queue  Enqueuer
	logger *slog.Logger
}

func NewEventHandler(queue Enqueuer, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		queue:  queue,
		logger: logger,
	}
}

func (h *EventHandler) HandlePaymentPaid(ctx context.Context, event events.Event) error {
	return h.enqueue(KindConfirmation, event)
}

func (h *EventHandler) HandlePaymentReminder(ctx context.Context, event events.Event) error {
	return h.enqueue(KindReminder, event)
}

func (h *EventHandler) enqueue(kind string, event events.Event) error {
	paymentEvent, ok := event.(*events.PaymentNotificationEvent)
	if !ok {
		h.logger.Error("invalid event type for notification handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentNotificationEvent, got %T", event)
	}

	if err := h.queue.Enqueue(Job{Kind: kind, EventID: event.EventID(), Notice: paymentEvent.Notice}); err != nil {
		return fmt.Errorf("queue %s for payment %d: %w", kind, paymentEvent.Notice.PaymentID, err)
	}
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentPaid, h.HandlePaymentPaid)
	eventBus.Subscribe(events.EventTypePaymentReminder, h.HandlePaymentReminder)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypePaymentPaid, events.EventTypePaymentReminder})
}

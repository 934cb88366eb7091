package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/property-management/internal/core/events"
	"github.com/frahmantamala/property-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish payment notification events through the notification pipeline for testing`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [payment.paid|payment.reminder]",
	Short:     "Publish a test payment event",
	Long:      `Publish a sample payment event on the event bus and send the resulting mail with the configured mail driver`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypePaymentPaid, events.EventTypePaymentReminder},
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishTestEvent(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var eventEmail string

func publishTestEvent(eventType string) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	pipeline := newNotificationPipeline(config.Notification, lg)

	now := time.Now().UTC()
	notice := events.PaymentNotice{
		PaymentID:    0,
		TenantName:   "Test Tenant",
		TenantEmail:  eventEmail,
		PropertyName: "Test Property",
		Amount:       "1000.00",
		DueDate:      now,
		Status:       "pending",
	}

	var event events.Event
	switch eventType {
	case events.EventTypePaymentPaid:
		notice.Status = "paid"
		notice.PaidDate = &now
		notice.PaymentMethod = "bank_transfer"
		event = events.NewPaymentPaidEvent(notice)
	case events.EventTypePaymentReminder:
		event = events.NewPaymentReminderEvent(notice)
	default:
		return fmt.Errorf("unknown event type %q", eventType)
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := pipeline.Bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	pipeline.Close(ctx, lg)

	lg.Info("test event processed")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventEmail, "email", "tenant@example.com", "Recipient address for the test mail")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}

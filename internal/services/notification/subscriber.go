package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"pizzapap/internal/logger"
	"pizzapap/internal/messaging"
	"pizzapap/internal/models"
	"pizzapap/internal/services/order"
)

// Consumer delivers queued messages to a handler until ctx is done
type Consumer interface {
	Run(ctx context.Context, handler messaging.MessageHandler) error
}

// Subscriber prints a customer-facing line for every order event
type Subscriber struct {
	consumer Consumer
	out      io.Writer
	logger   *logger.Logger
}

// NewSubscriber creates a new notification subscriber writing to out
func NewSubscriber(consumer Consumer, out io.Writer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		out:      out,
		logger:   log,
	}
}

// Start consumes order events until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info("service_started", "Notification subscriber started", "startup", map[string]interface{}{
		"queue": messaging.QueueNotifications,
	})

	err := s.consumer.Run(ctx, s.handleEvent)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("consume notifications: %w", err)
	}

	s.logger.Info("graceful_shutdown", "Notification subscriber stopped", "", nil)
	return nil
}

// handleEvent decodes one order event and prints it. Malformed payloads are
// logged and dropped since redelivery cannot fix them.
func (s *Subscriber) handleEvent(ctx context.Context, routingKey string, body []byte) error {
	requestID := logger.GenerateRequestID()

	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse order event", requestID, err, map[string]interface{}{
			"routing_key": routingKey,
		})
		return nil
	}

	if _, err := fmt.Fprintln(s.out, FormatEvent(&event)); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed to user", requestID, map[string]interface{}{
		"event":      string(event.Event),
		"order_id":   event.OrderID.String(),
		"account_id": event.AccountID.String(),
	})

	return nil
}

// FormatEvent renders an order event as one human-readable line
func FormatEvent(event *models.OrderEvent) string {
	timestamp := event.Timestamp.Format("2006-01-02 15:04:05")

	switch event.Event {
	case models.EventOrderPlaced:
		return fmt.Sprintf("🍕 [%s] Order %s: %s",
			timestamp, event.OrderID, order.StatusMessage(models.StatusConfirmed, event.Name, event.Location))
	case models.EventOrderRejected:
		return fmt.Sprintf("❌ [%s] %s",
			timestamp, order.StatusMessage(models.StatusRejected, event.Name, event.Location))
	case models.EventOrderDelivered:
		return fmt.Sprintf("🎉 [%s] Order %s for %s has been delivered. Enjoy your pizza!",
			timestamp, event.OrderID, event.AccountID)
	default:
		return fmt.Sprintf("📋 [%s] Order %s: %s",
			timestamp, event.OrderID, order.StatusMessage(event.Status, event.Name, event.Location))
	}
}

package tracking

import (
	"context"
	"errors"
	"fmt"

	"pizzapap/internal/logger"
	"pizzapap/internal/models"
	"pizzapap/internal/services/order"
)

// Service provides order history and delivery confirmation
type Service struct {
	query     OrderQuery
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new tracking service. publisher may be nil.
func NewService(query OrderQuery, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		query:     query,
		publisher: publisher,
		logger:    log,
	}
}

// ListOrders retrieves every order placed by account, oldest first
func (s *Service) ListOrders(ctx context.Context, account models.AccountID, requestID string) ([]models.OrderRecord, error) {
	orders, err := s.query.ListOrders(ctx, account)
	if err != nil {
		s.logger.Error("db_query_failed", "Failed to list orders", requestID, err, map[string]interface{}{
			"account_id": account.String(),
		})
		return nil, fmt.Errorf("list orders: %w", err)
	}

	if orders == nil {
		orders = []models.OrderRecord{}
	}
	return orders, nil
}

// ConfirmDelivery marks the order as delivered. Confirming twice succeeds.
func (s *Service) ConfirmDelivery(ctx context.Context, account models.AccountID, rawID, requestID string) error {
	orderID, err := models.ParseOrderID(rawID)
	if err != nil {
		return fmt.Errorf("%w: %w", order.ErrInvalidInput, err)
	}

	if err := s.query.ConfirmDelivery(ctx, account, orderID); err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			return err
		}
		s.logger.Error("delivery_confirm_failed", "Failed to confirm delivery", requestID, err, map[string]interface{}{
			"order_id":   orderID.String(),
			"account_id": account.String(),
		})
		return fmt.Errorf("%w: %w", order.ErrSubmissionFailed, err)
	}

	s.logger.Info("order_delivered", fmt.Sprintf("Order %s delivered", orderID), requestID, map[string]interface{}{
		"order_id":   orderID.String(),
		"account_id": account.String(),
	})

	if s.publisher != nil {
		event := models.NewOrderEvent(models.EventOrderDelivered, account, orderID, nil, models.StatusConfirmed)
		if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
			s.logger.Error("notification_publish_failed", "Failed to publish delivery event", requestID, err, map[string]interface{}{
				"order_id": orderID.String(),
			})
		}
	}

	return nil
}

package order

import (
	"context"
	"errors"
	"fmt"

	"pizzapap/internal/logger"
	"pizzapap/internal/models"
)

// ErrSubmissionFailed wraps any failure of the order submission backend
var ErrSubmissionFailed = errors.New("order submission failed")

// Service places finalized orders with the injected backend
type Service struct {
	submitter Submitter
	balances  BalanceService
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new checkout service. publisher may be nil.
func NewService(submitter Submitter, balances BalanceService, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		submitter: submitter,
		balances:  balances,
		publisher: publisher,
		logger:    log,
	}
}

// Quote reports the running total and completeness of a draft
func (s *Service) Quote(b *Builder) *models.QuoteResponse {
	missing := b.Missing()
	if missing == nil {
		missing = []string{}
	}
	return &models.QuoteResponse{
		Total:    b.Total(),
		Complete: len(missing) == 0,
		Missing:  missing,
	}
}

// PlaceOrder submits a snapshot for account. The submission is attempted
// exactly once. On backend failure the returned receipt is still non-nil and
// carries StatusRejected, and the error wraps ErrSubmissionFailed.
func (s *Service) PlaceOrder(ctx context.Context, account models.AccountID, snapshot models.OrderSnapshot, requestID string) (*models.Receipt, error) {
	s.logger.Debug("order_submitting", "Submitting order", requestID, map[string]interface{}{
		"account_id": account.String(),
		"flavor":     snapshot.Flavor.String(),
		"size":       snapshot.Size.String(),
		"crust":      snapshot.Crust.String(),
		"toppings":   snapshot.Toppings,
		"total":      snapshot.Total,
	})

	orderID, err := s.submitter.Submit(ctx, account, snapshot)
	if err != nil {
		s.logger.Error("order_rejected", "Order submission failed", requestID, err, map[string]interface{}{
			"account_id": account.String(),
			"total":      snapshot.Total,
		})

		s.publish(ctx, models.NewOrderEvent(models.EventOrderRejected, account, "", &snapshot, models.StatusRejected), requestID)

		receipt := &models.Receipt{
			Status:  models.StatusRejected,
			Message: StatusMessage(models.StatusRejected, snapshot.Name, snapshot.Location),
			Total:   snapshot.Total,
		}
		return receipt, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	s.logger.Info("order_placed", fmt.Sprintf("Order %s placed", orderID), requestID, map[string]interface{}{
		"order_id":   orderID.String(),
		"account_id": account.String(),
		"total":      snapshot.Total,
	})

	s.publish(ctx, models.NewOrderEvent(models.EventOrderPlaced, account, orderID, &snapshot, models.StatusConfirmed), requestID)

	receipt := &models.Receipt{
		OrderID: orderID,
		Status:  models.StatusConfirmed,
		Message: StatusMessage(models.StatusConfirmed, snapshot.Name, snapshot.Location),
		Total:   snapshot.Total,
	}

	balance, err := s.balances.FetchBalance(ctx, account)
	if err != nil {
		// the order went through; a stale balance is not a checkout failure
		s.logger.Error("balance_fetch_failed", "Failed to refresh balance after order", requestID, err, map[string]interface{}{
			"account_id": account.String(),
		})
	} else {
		receipt.Balance = balance
	}

	return receipt, nil
}

// Balance returns the account balance in tokens
func (s *Service) Balance(ctx context.Context, account models.AccountID) (*models.BalanceResponse, error) {
	balance, err := s.balances.FetchBalance(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("fetch balance: %w", err)
	}
	return &models.BalanceResponse{AccountID: account, Balance: balance}, nil
}

func (s *Service) publish(ctx context.Context, event *models.OrderEvent, requestID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish order event", requestID, err, map[string]interface{}{
			"event":    string(event.Event),
			"order_id": event.OrderID.String(),
		})
	}
}

package tracking

import (
	"context"

	"pizzapap/internal/models"
)

// OrderQuery reads and updates an account's stored orders
type OrderQuery interface {
	ListOrders(ctx context.Context, account models.AccountID) ([]models.OrderRecord, error)
	ConfirmDelivery(ctx context.Context, account models.AccountID, orderID models.OrderID) error
}

// EventPublisher announces delivery confirmations
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error
}

// CurrentUser resolves the signed-in account for a request
type CurrentUser interface {
	CurrentUser(ctx context.Context) models.User
}

package order

import (
	"context"

	"pizzapap/internal/models"
)

// Submitter persists a finalized order and charges the account for it
type Submitter interface {
	Submit(ctx context.Context, account models.AccountID, snapshot models.OrderSnapshot) (models.OrderID, error)
}

// BalanceService reports an account balance as a numeric string in tokens
type BalanceService interface {
	FetchBalance(ctx context.Context, account models.AccountID) (string, error)
}

// EventPublisher announces checkout outcomes
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error
}

// SessionProvider is the wallet session as seen by the HTTP layer
type SessionProvider interface {
	CurrentUser(ctx context.Context) models.User
	SignIn(ctx context.Context, account models.AccountID) error
	SignOut(ctx context.Context) error
}

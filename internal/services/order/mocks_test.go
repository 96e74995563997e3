package order

import (
	"context"

	"pizzapap/internal/models"
)

type submitterMock struct {
	calls    int
	submitFn func(ctx context.Context, account models.AccountID, snapshot models.OrderSnapshot) (models.OrderID, error)
}

func (m *submitterMock) Submit(ctx context.Context, account models.AccountID, snapshot models.OrderSnapshot) (models.OrderID, error) {
	m.calls++
	return m.submitFn(ctx, account, snapshot)
}

type balanceMock struct {
	fetchFn func(ctx context.Context, account models.AccountID) (string, error)
}

func (m *balanceMock) FetchBalance(ctx context.Context, account models.AccountID) (string, error) {
	return m.fetchFn(ctx, account)
}

type publisherMock struct {
	events []*models.OrderEvent
	err    error
}

func (m *publisherMock) PublishOrderEvent(_ context.Context, event *models.OrderEvent) error {
	m.events = append(m.events, event)
	return m.err
}

type sessionMock struct {
	user      models.User
	signInErr error
	signedIn  models.AccountID
	signedOut bool
}

func (m *sessionMock) CurrentUser(context.Context) models.User { return m.user }

func (m *sessionMock) SignIn(_ context.Context, account models.AccountID) error {
	m.signedIn = account
	return m.signInErr
}

func (m *sessionMock) SignOut(context.Context) error {
	m.signedOut = true
	return nil
}

type healthMock struct {
	err error
}

func (m *healthMock) Ping(context.Context) error { return m.err }

func fixedBalance(balance string) *balanceMock {
	return &balanceMock{fetchFn: func(context.Context, models.AccountID) (string, error) {
		return balance, nil
	}}
}

func acceptingSubmitter(id models.OrderID) *submitterMock {
	return &submitterMock{submitFn: func(context.Context, models.AccountID, models.OrderSnapshot) (models.OrderID, error) {
		return id, nil
	}}
}

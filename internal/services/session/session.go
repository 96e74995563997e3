package session

import (
	"context"
	"net/http"
	"strings"

	"pizzapap/internal/models"
)

// HeaderAccountID carries the signed-in wallet account on every request
const HeaderAccountID = "X-Account-ID"

// AccountRegistry registers accounts on first sign-in
type AccountRegistry interface {
	EnsureAccount(ctx context.Context, account models.AccountID) error
}

type accountKey struct{}

// WithAccount stores account as the signed-in account of ctx
func WithAccount(ctx context.Context, account models.AccountID) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// Middleware copies the account header into the request context
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := models.AccountID(strings.TrimSpace(r.Header.Get(HeaderAccountID)))
		if !account.IsZero() {
			r = r.WithContext(WithAccount(r.Context(), account))
		}
		next.ServeHTTP(w, r)
	})
}

// Provider is a stateless wallet session. The caller proves nothing beyond
// naming the account; key custody stays with the wallet.
type Provider struct {
	registry AccountRegistry
}

// NewProvider creates a session provider backed by registry
func NewProvider(registry AccountRegistry) *Provider {
	return &Provider{registry: registry}
}

// CurrentUser returns the account bound to ctx
func (p *Provider) CurrentUser(ctx context.Context) models.User {
	account, _ := ctx.Value(accountKey{}).(models.AccountID)
	if account.IsZero() {
		return models.User{}
	}
	return models.User{ID: account, IsAuthenticated: true}
}

// SignIn registers account so it can pay for orders
func (p *Provider) SignIn(ctx context.Context, account models.AccountID) error {
	return p.registry.EnsureAccount(ctx, account)
}

// SignOut has nothing to release; clients drop the header
func (p *Provider) SignOut(ctx context.Context) error {
	return nil
}

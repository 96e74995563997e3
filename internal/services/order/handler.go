package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"pizzapap/internal/httpapi"
	"pizzapap/internal/logger"
	"pizzapap/internal/models"
)

// ErrUnauthenticated is returned when no wallet account is signed in
var ErrUnauthenticated = errors.New("wallet not connected")

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler handles HTTP requests for the storefront checkout
type Handler struct {
	service  *Service
	sessions SessionProvider
	health   HealthChecker
	logger   *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, sessions SessionProvider, health HealthChecker, log *logger.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		health:   health,
		logger:   log,
	}
}

// RegisterRoutes adds the checkout routes to mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /catalog", httpapi.WithLogging(h.logger, h.GetCatalog))
	mux.HandleFunc("POST /orders/quote", httpapi.WithLogging(h.logger, h.QuoteOrder))
	mux.HandleFunc("POST /orders", httpapi.WithLogging(h.logger, h.CreateOrder))
	mux.HandleFunc("GET /balance", httpapi.WithLogging(h.logger, h.GetBalance))
	mux.HandleFunc("POST /session", httpapi.WithLogging(h.logger, h.SignIn))
	mux.HandleFunc("DELETE /session", httpapi.WithLogging(h.logger, h.SignOut))
	mux.HandleFunc("GET /health", httpapi.WithLogging(h.logger, h.HealthCheck))
}

// GetCatalog handles GET /catalog requests
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteJSON(w, http.StatusOK, models.Catalog(), h.logger, logger.RequestIDFromContext(r.Context()))
}

// QuoteOrder handles POST /orders/quote requests. Nothing is submitted.
func (h *Handler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	builder, ok := h.decodeSelection(w, r, requestID)
	if !ok {
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, h.service.Quote(builder), h.logger, requestID)
}

// CreateOrder handles POST /orders requests
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	user := h.sessions.CurrentUser(r.Context())
	if !user.IsAuthenticated {
		httpapi.WriteError(w, http.StatusUnauthorized, ErrUnauthenticated.Error(), requestID)
		return
	}

	builder, ok := h.decodeSelection(w, r, requestID)
	if !ok {
		return
	}

	snapshot, err := builder.Finalize()
	if err != nil {
		h.logger.Error("validation_failed", "Order is incomplete", requestID, err, map[string]interface{}{
			"missing": builder.Missing(),
		})
		httpapi.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	receipt, err := h.service.PlaceOrder(r.Context(), user.ID, snapshot, requestID)
	if err != nil {
		if errors.Is(err, ErrSubmissionFailed) && receipt != nil {
			httpapi.WriteJSON(w, http.StatusBadGateway, receipt, h.logger, requestID)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, receipt, h.logger, requestID)
}

// GetBalance handles GET /balance requests
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	user := h.sessions.CurrentUser(r.Context())
	if !user.IsAuthenticated {
		httpapi.WriteError(w, http.StatusUnauthorized, ErrUnauthenticated.Error(), requestID)
		return
	}

	balance, err := h.service.Balance(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("balance_fetch_failed", "Failed to fetch balance", requestID, err, map[string]interface{}{
			"account_id": user.ID.String(),
		})
		httpapi.WriteError(w, http.StatusBadGateway, "Balance unavailable", requestID)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, balance, h.logger, requestID)
}

type signInRequest struct {
	AccountID string `json:"account_id"`
}

// SignIn handles POST /session requests
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	var req signInRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	account := models.AccountID(req.AccountID)
	if account.IsZero() {
		httpapi.WriteError(w, http.StatusBadRequest, "account_id is required", requestID)
		return
	}

	if err := h.sessions.SignIn(r.Context(), account); err != nil {
		h.logger.Error("sign_in_failed", "Failed to sign in", requestID, err, map[string]interface{}{
			"account_id": account.String(),
		})
		httpapi.WriteError(w, http.StatusBadGateway, "Sign in failed", requestID)
		return
	}

	h.logger.Info("signed_in", fmt.Sprintf("Account %s signed in", account), requestID, nil)
	httpapi.WriteJSON(w, http.StatusOK, models.User{ID: account, IsAuthenticated: true}, h.logger, requestID)
}

// SignOut handles DELETE /session requests
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	if err := h.sessions.SignOut(r.Context()); err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "Sign out failed", requestID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := true
	if h.health != nil {
		if err := h.health.Ping(ctx); err != nil {
			h.logger.Error("health_check_failed", "Database ping failed", "", err, nil)
			healthy = false
		}
	}

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "storefront",
		"healthy":   healthy,
	}

	w.Header().Set("Content-Type", "application/json")

	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		response["status"] = "unhealthy"
	}

	json.NewEncoder(w).Encode(response)
}

// decodeSelection parses the body and applies it to a fresh builder. It
// writes the error response itself and reports whether to continue.
func (h *Handler) decodeSelection(w http.ResponseWriter, r *http.Request, requestID string) (*Builder, bool) {
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType != "application/json" {
		httpapi.WriteError(w, http.StatusBadRequest, "Content-Type must be application/json", requestID)
		return nil, false
	}

	var sel models.OrderSelection
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&sel); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		httpapi.WriteError(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return nil, false
	}

	builder := NewBuilder()
	if err := builder.Apply(sel); err != nil {
		h.logger.Error("validation_failed", "Selection rejected", requestID, err, map[string]interface{}{
			"size":  sel.Size,
			"crust": sel.Crust,
		})
		httpapi.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return nil, false
	}

	return builder, true
}

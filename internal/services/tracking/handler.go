package tracking

import (
	"errors"
	"net/http"

	"pizzapap/internal/httpapi"
	"pizzapap/internal/logger"
	"pizzapap/internal/models"
	"pizzapap/internal/services/order"
)

// Handler handles HTTP requests for the order history
type Handler struct {
	service *Service
	users   CurrentUser
	logger  *logger.Logger
}

// NewHandler creates a new tracking handler
func NewHandler(service *Service, users CurrentUser, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		users:   users,
		logger:  log,
	}
}

// RegisterRoutes adds the order history routes to mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /orders", httpapi.WithLogging(h.logger, h.ListOrders))
	mux.HandleFunc("POST /orders/{id}/confirm", httpapi.WithLogging(h.logger, h.ConfirmDelivery))
}

// ListOrders handles GET /orders requests
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	user := h.users.CurrentUser(r.Context())
	if !user.IsAuthenticated {
		httpapi.WriteError(w, http.StatusUnauthorized, order.ErrUnauthenticated.Error(), requestID)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), user.ID, requestID)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, orders, h.logger, requestID)
}

// ConfirmDelivery handles POST /orders/{id}/confirm requests
func (h *Handler) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	user := h.users.CurrentUser(r.Context())
	if !user.IsAuthenticated {
		httpapi.WriteError(w, http.StatusUnauthorized, order.ErrUnauthenticated.Error(), requestID)
		return
	}

	rawID := r.PathValue("id")
	h.logger.Debug("request_received", "Confirm delivery request", requestID, map[string]interface{}{
		"order_id": rawID,
	})

	err := h.service.ConfirmDelivery(r.Context(), user.ID, rawID, requestID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, order.ErrInvalidInput):
		httpapi.WriteError(w, http.StatusBadRequest, "Invalid order ID", requestID)
	case errors.Is(err, models.ErrOrderNotFound):
		httpapi.WriteError(w, http.StatusNotFound, "Order not found", requestID)
	case errors.Is(err, order.ErrSubmissionFailed):
		httpapi.WriteError(w, http.StatusBadGateway, "Delivery confirmation failed", requestID)
	default:
		httpapi.WriteError(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

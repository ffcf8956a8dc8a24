package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	checkout Checkout
	timeout  time.Duration
	logger   *slog.Logger
}

func NewOrdersHandler(checkout Checkout, timeout time.Duration, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{
		checkout: checkout,
		timeout:  timeout,
		logger:   logger,
	}
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id is required")
		return
	}

	order, err := h.checkout.GetOrder(ctx, orderID)
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

type OrdersResponseDTO struct {
	Orders []*domain.OrderRecord `json:"orders"`
	Total  int                   `json:"total"`
}

func (h *OrdersHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.checkout.ListOrders(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}
	if orders == nil {
		orders = []*domain.OrderRecord{}
	}

	respondJSON(w, http.StatusOK, OrdersResponseDTO{Orders: orders, Total: len(orders)})
}

func (h *OrdersHandler) LoyaltyBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	balance, err := h.checkout.LoyaltyBalance(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, balance)
}

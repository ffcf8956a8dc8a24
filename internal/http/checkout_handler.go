package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
)

type Checkout interface {
	Preview(ctx context.Context, sessionID string, method domain.PaymentMethod, code string) (*service.Quote, error)
	PlaceOrder(ctx context.Context, sessionID string, req service.PlaceOrderRequest) (*service.Receipt, error)
	GetOrder(ctx context.Context, id string) (*domain.OrderRecord, error)
	ListOrders(ctx context.Context, userID string) ([]*domain.OrderRecord, error)
	LoyaltyBalance(ctx context.Context, userID string) (*repository.LoyaltyBalance, error)
	ShippingMethods() pricing.ShippingTable
}

type CheckoutHandler struct {
	checkout Checkout
	timeout  time.Duration
	logger   *slog.Logger
}

func NewCheckoutHandler(checkout Checkout, timeout time.Duration, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
		logger:   logger,
	}
}

type PlaceOrderRequestDTO struct {
	Customer      domain.CustomerInfo    `json:"customer"`
	Address       domain.ShippingAddress `json:"address"`
	PaymentMethod string                 `json:"payment_method"`
	DiscountCode  string                 `json:"discount_code,omitempty"`
}

func (h *CheckoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	method := domain.ParsePaymentMethod(r.URL.Query().Get("payment_method"))
	if method == "" {
		method = domain.PaymentMethodUPI
	}

	quote, err := h.checkout.Preview(ctx, getSessionID(r.Context()), method, r.URL.Query().Get("code"))
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PlaceOrderRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	receipt, err := h.checkout.PlaceOrder(ctx, getSessionID(r.Context()), service.PlaceOrderRequest{
		Customer:      req.Customer,
		Address:       req.Address,
		PaymentMethod: domain.ParsePaymentMethod(req.PaymentMethod),
		DiscountCode:  req.DiscountCode,
	})
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, receipt)
}

type ShippingMethodDTO struct {
	Method string `json:"method"`
	Cost   string `json:"cost"`
}

func (h *CheckoutHandler) ShippingMethods(w http.ResponseWriter, _ *http.Request) {
	table := h.checkout.ShippingMethods()

	methods := make([]ShippingMethodDTO, 0, len(table))
	for _, m := range table.Methods() {
		methods = append(methods, ShippingMethodDTO{Method: m.String(), Cost: table[m].StringFixed(2)})
	}
	respondJSON(w, http.StatusOK, methods)
}

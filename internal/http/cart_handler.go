package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartManager interface {
	GetCart(ctx context.Context, sessionID string) (*domain.SessionCart, error)
	AddItem(ctx context.Context, sessionID, productID, size, color string, quantity int) (*domain.SessionCart, error)
	SetQuantity(ctx context.Context, sessionID, key string, quantity int) (*domain.SessionCart, error)
	RemoveItem(ctx context.Context, sessionID, key string) (*domain.SessionCart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

type CartHandler struct {
	carts   CartManager
	timeout time.Duration
	logger  *slog.Logger
}

func NewCartHandler(carts CartManager, timeout time.Duration, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
		logger:  logger,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemDTO struct {
	Key               string          `json:"key"`
	ProductID         string          `json:"product_id"`
	Name              string          `json:"name"`
	Size              string          `json:"size"`
	Color             string          `json:"color,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	UnitOriginalPrice decimal.Decimal `json:"unit_original_price"`
	LineTotal         decimal.Decimal `json:"line_total"`
}

type CartResponseDTO struct {
	SessionID        string          `json:"session_id"`
	Items            []CartItemDTO   `json:"items"`
	ItemCount        int             `json:"item_count"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	OriginalSubtotal decimal.Decimal `json:"original_subtotal"`
	State            string          `json:"state"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toCartResponse(sc *domain.SessionCart) CartResponseDTO {
	resp := CartResponseDTO{
		SessionID:        sc.SessionID,
		Items:            make([]CartItemDTO, 0, len(sc.Items)),
		Subtotal:         domain.Subtotal(sc.Items),
		OriginalSubtotal: domain.OriginalSubtotal(sc.Items),
		State:            "empty",
		UpdatedAt:        sc.UpdatedAt,
	}
	for _, item := range sc.Items {
		resp.ItemCount += item.Quantity
		resp.Items = append(resp.Items, CartItemDTO{
			Key:               item.Key(),
			ProductID:         item.ProductID,
			Name:              item.Name,
			Size:              item.Size,
			Color:             item.Color,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			UnitOriginalPrice: item.UnitOriginalPrice,
			LineTotal:         item.LineTotal(),
		})
	}
	if len(sc.Items) > 0 {
		resp.State = "non_empty"
	}
	return resp
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sc, err := h.carts.GetCart(ctx, getSessionID(r.Context()))
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(sc))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	sc, err := h.carts.AddItem(ctx, getSessionID(r.Context()), req.ProductID, req.Size, req.Color, req.Quantity)
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCartResponse(sc))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key, ok := itemKey(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sc, err := h.carts.SetQuantity(ctx, getSessionID(r.Context()), key, req.Quantity)
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(sc))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key, ok := itemKey(w, r)
	if !ok {
		return
	}

	sc, err := h.carts.RemoveItem(ctx, getSessionID(r.Context()), key)
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(sc))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.ClearCart(ctx, getSessionID(r.Context())); err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// itemKey reads the selection key path parameter; keys contain '|' so clients escape them.
func itemKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_key", "item key is malformed")
		return "", false
	}
	return key, true
}

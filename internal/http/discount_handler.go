package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Discounts interface {
	Issue(ctx context.Context, codeType domain.CodeType, percentage *int, maxUses int) (domain.DiscountCode, error)
	Validate(ctx context.Context, code string) (domain.ValidationResult, error)
}

type DiscountHandler struct {
	discounts Discounts
	timeout   time.Duration
	logger    *slog.Logger
}

func NewDiscountHandler(discounts Discounts, timeout time.Duration, logger *slog.Logger) *DiscountHandler {
	return &DiscountHandler{
		discounts: discounts,
		timeout:   timeout,
		logger:    logger,
	}
}

type IssueDiscountRequestDTO struct {
	Type       string `json:"type"`
	Percentage *int   `json:"percentage,omitempty"`
	MaxUses    int    `json:"max_uses,omitempty"`
}

type ValidateDiscountRequestDTO struct {
	Code string `json:"code"`
}

func (h *DiscountHandler) Issue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req IssueDiscountRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	codeType, err := domain.ParseCodeType(req.Type)
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	code, err := h.discounts.Issue(ctx, codeType, req.Percentage, req.MaxUses)
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, code)
}

func (h *DiscountHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ValidateDiscountRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := h.discounts.Validate(ctx, req.Code)
	if err != nil {
		handleDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

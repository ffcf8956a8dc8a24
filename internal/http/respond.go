package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError maps service errors to HTTP status codes. Unexpected errors are logged
// and reported without internals.
func handleDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var addrErr *domain.IncompleteAddressError
	var redeemErr *domain.RedemptionError

	switch {
	case errors.As(err, &redeemErr):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:   redeemErr.Message,
			Code:    "redemption_failed",
			Details: redeemErr.Code,
		})
	case errors.As(err, &addrErr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   domain.ErrIncompleteAddress.Error(),
			Code:    "incomplete_address",
			Details: strings.Join(addrErr.Missing, ","),
		})
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, domain.ErrInvalidSelection):
		respondError(w, http.StatusBadRequest, "invalid_selection", err.Error())
	case errors.Is(err, domain.ErrUnknownPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
	case errors.Is(err, domain.ErrInvalidPercentage),
		errors.Is(err, domain.ErrInvalidMaxUses),
		errors.Is(err, domain.ErrUnknownCodeType):
		respondError(w, http.StatusBadRequest, "invalid_discount_request", err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrRegistryUnavailable):
		logger.ErrorContext(r.Context(), "discount registry unavailable", "request_id", getRequestID(r.Context()), "error", err)
		respondError(w, http.StatusServiceUnavailable, "registry_unavailable", domain.ErrRegistryUnavailable.Error())
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		logger.ErrorContext(r.Context(), "catalog unavailable", "request_id", getRequestID(r.Context()), "error", err)
		respondError(w, http.StatusServiceUnavailable, "catalog_unavailable", catalog.ErrCatalogUnavailable.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		logger.ErrorContext(r.Context(), "request failed", "request_id", getRequestID(r.Context()), "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidSelection  = errors.New("size or color not offered for product")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrIncompleteAddress = errors.New("shipping address is incomplete")

	ErrRegistryUnavailable = errors.New("discount registry unavailable")
	ErrRedemptionFailed    = errors.New("discount code could not be redeemed")
	ErrInvalidPercentage   = errors.New("discount percentage must be between 0 and 100")
	ErrInvalidMaxUses      = errors.New("max uses must be at least 1")
	ErrUnknownCodeType     = errors.New("unknown discount code type")
	ErrCodeCollision       = errors.New("discount code already exists")
	ErrCodeNotFound        = errors.New("discount code not found")

	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrOrderNotFound        = errors.New("order not found")
)

// IncompleteAddressError names the missing address fields. It matches ErrIncompleteAddress.
type IncompleteAddressError struct {
	Missing []string
}

func (e *IncompleteAddressError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteAddress, strings.Join(e.Missing, ", "))
}

func (e *IncompleteAddressError) Unwrap() error {
	return ErrIncompleteAddress
}

// RedemptionError carries the registry message for a code that is no longer redeemable.
// It matches ErrRedemptionFailed.
type RedemptionError struct {
	Code    string
	Message string
}

func (e *RedemptionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRedemptionFailed, e.Message)
}

func (e *RedemptionError) Unwrap() error {
	return ErrRedemptionFailed
}

package order

import (
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Assemble builds an order record from the cart contents and a finalized pricing snapshot.
// The record has no ID until persistence assigns one.
func Assemble(
	items []domain.LineItem,
	customer domain.CustomerInfo,
	address domain.ShippingAddress,
	method domain.PaymentMethod,
	pricing domain.PricingSnapshot,
	now time.Time,
) (domain.OrderRecord, error) {
	if len(items) == 0 {
		return domain.OrderRecord{}, domain.ErrEmptyCart
	}
	if missing := address.MissingFields(); len(missing) > 0 {
		return domain.OrderRecord{}, &domain.IncompleteAddressError{Missing: missing}
	}

	return domain.OrderRecord{
		Status:        domain.OrderStatusConfirmed,
		Items:         domain.CloneItems(items),
		Customer:      customer,
		Address:       address,
		PaymentMethod: method,
		Pricing:       pricing,
		CreatedAt:     now.UTC(),
	}, nil
}

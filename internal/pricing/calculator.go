package pricing

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount is an already-validated percentage discount. The zero value applies nothing.
type Discount struct {
	Code       string
	Percentage int
}

// Calculator derives pricing snapshots. It holds configuration only and is safe for concurrent use.
type Calculator struct {
	shipping ShippingTable
	currency string
}

func NewCalculator(shipping ShippingTable, currency string) *Calculator {
	if len(shipping) == 0 {
		shipping = DefaultShippingTable()
	}
	return &Calculator{shipping: shipping, currency: currency}
}

func (c *Calculator) ShippingTable() ShippingTable {
	return c.shipping
}

// Calculate prices items for the payment method with an optional discount.
// The discount applies to the subtotal only and the total never drops below zero.
func (c *Calculator) Calculate(items []domain.LineItem, method domain.PaymentMethod, discount Discount) (domain.PricingSnapshot, error) {
	if discount.Percentage < 0 || discount.Percentage > 100 {
		return domain.PricingSnapshot{}, fmt.Errorf("%w: %d", domain.ErrInvalidPercentage, discount.Percentage)
	}

	shipping, err := c.shipping.Cost(method)
	if err != nil {
		return domain.PricingSnapshot{}, err
	}

	subtotal := domain.Subtotal(items)
	original := domain.OriginalSubtotal(items)

	discountAmount := subtotal.Mul(decimal.NewFromInt(int64(discount.Percentage))).Div(hundred).Round(2)
	if discountAmount.GreaterThan(subtotal) {
		discountAmount = subtotal
	}

	total := subtotal.Add(shipping).Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	savings := original.Sub(subtotal)
	if savings.IsNegative() {
		savings = decimal.Zero
	}

	snapshot := domain.PricingSnapshot{
		Subtotal:           subtotal,
		OriginalSubtotal:   original,
		Savings:            savings,
		ShippingCost:       shipping,
		DiscountPercentage: discount.Percentage,
		DiscountAmount:     discountAmount,
		Total:              total,
		Currency:           c.currency,
		PaymentMethod:      method,
	}
	if discount.Code != "" {
		snapshot.DiscountCode = domain.NormalizeCode(discount.Code)
	}
	return snapshot, nil
}

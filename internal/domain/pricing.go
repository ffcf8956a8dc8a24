package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodUPI PaymentMethod = "upi"
	PaymentMethodCOD PaymentMethod = "cod"
)

func ParsePaymentMethod(s string) PaymentMethod {
	return PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
}

func (m PaymentMethod) String() string {
	return string(m)
}

// PricingSnapshot is the derived price breakdown of a cart at a point in time.
type PricingSnapshot struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	OriginalSubtotal   decimal.Decimal `json:"original_subtotal"`
	Savings            decimal.Decimal `json:"savings"`
	ShippingCost       decimal.Decimal `json:"shipping_cost"`
	DiscountCode       string          `json:"discount_code,omitempty"`
	DiscountPercentage int             `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	Total              decimal.Decimal `json:"total"`
	Currency           string          `json:"currency"`
	PaymentMethod      PaymentMethod   `json:"payment_method"`
}

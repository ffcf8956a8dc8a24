package pricing

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// ShippingTable maps a payment method to its flat shipping charge.
type ShippingTable map[domain.PaymentMethod]decimal.Decimal

func DefaultShippingTable() ShippingTable {
	return ShippingTable{
		domain.PaymentMethodUPI: decimal.Zero,
		domain.PaymentMethodCOD: decimal.NewFromInt(30),
	}
}

// ParseShippingTable reads "method=amount" pairs separated by commas, e.g. "upi=0,cod=30".
func ParseShippingTable(s string) (ShippingTable, error) {
	table := ShippingTable{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		method, amount, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid shipping rate %q", pair)
		}
		cost, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("invalid shipping amount for %s: %w", method, err)
		}
		if cost.IsNegative() {
			return nil, fmt.Errorf("negative shipping amount for %s", method)
		}
		table[domain.ParsePaymentMethod(method)] = cost
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("shipping table is empty")
	}
	return table, nil
}

func (t ShippingTable) Cost(method domain.PaymentMethod) (decimal.Decimal, error) {
	cost, ok := t[method]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrUnknownPaymentMethod, method)
	}
	return cost, nil
}

// Methods returns the configured payment methods in lexical order.
func (t ShippingTable) Methods() []domain.PaymentMethod {
	methods := make([]domain.PaymentMethod, 0, len(t))
	for m := range t {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return methods
}

package pricing

import (
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineItem(price string, qty int) domain.LineItem {
	return domain.LineItem{
		ProductID: "p-" + price,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculate_CashOnDeliveryAddsShipping(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")

	snap, err := calc.Calculate([]domain.LineItem{lineItem("850", 2)}, domain.PaymentMethodCOD, Discount{})
	require.NoError(t, err)

	assert.True(t, dec("1700").Equal(snap.Subtotal))
	assert.True(t, dec("30").Equal(snap.ShippingCost))
	assert.True(t, dec("0").Equal(snap.DiscountAmount))
	assert.True(t, dec("1730").Equal(snap.Total))
	assert.Equal(t, "INR", snap.Currency)
	assert.Empty(t, snap.DiscountCode)
}

func TestCalculate_PercentageDiscountWithUPI(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")

	snap, err := calc.Calculate([]domain.LineItem{lineItem("1000", 1)}, domain.PaymentMethodUPI, Discount{Code: "news1234abcd", Percentage: 15})
	require.NoError(t, err)

	assert.True(t, dec("150").Equal(snap.DiscountAmount))
	assert.True(t, dec("0").Equal(snap.ShippingCost))
	assert.True(t, dec("850").Equal(snap.Total))
	assert.Equal(t, "NEWS1234ABCD", snap.DiscountCode)
	assert.Equal(t, 15, snap.DiscountPercentage)
}

func TestCalculate_DiscountRoundsToTwoDecimals(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")

	snap, err := calc.Calculate([]domain.LineItem{lineItem("99.99", 1)}, domain.PaymentMethodUPI, Discount{Percentage: 15})
	require.NoError(t, err)

	assert.True(t, dec("15").Equal(snap.DiscountAmount))
	assert.True(t, dec("84.99").Equal(snap.Total))
}

func TestCalculate_FullDiscountLeavesShipping(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")

	snap, err := calc.Calculate([]domain.LineItem{lineItem("400", 1)}, domain.PaymentMethodCOD, Discount{Percentage: 100})
	require.NoError(t, err)

	assert.True(t, dec("400").Equal(snap.DiscountAmount))
	assert.True(t, dec("30").Equal(snap.Total))
}

func TestCalculate_EmptyItems(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")

	snap, err := calc.Calculate(nil, domain.PaymentMethodUPI, Discount{Percentage: 50})
	require.NoError(t, err)

	assert.True(t, snap.Total.IsZero())
	assert.True(t, snap.DiscountAmount.IsZero())
}

func TestCalculate_SavingsFromOriginalPrices(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")
	item := lineItem("850", 2)
	item.UnitOriginalPrice = dec("1200")

	snap, err := calc.Calculate([]domain.LineItem{item}, domain.PaymentMethodUPI, Discount{})
	require.NoError(t, err)

	assert.True(t, dec("2400").Equal(snap.OriginalSubtotal))
	assert.True(t, dec("700").Equal(snap.Savings))
}

func TestCalculate_Bounds(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")
	carts := [][]domain.LineItem{
		nil,
		{lineItem("0.01", 1)},
		{lineItem("850", 2), lineItem("33.33", 3)},
		{lineItem("1000", 1)},
	}

	for _, items := range carts {
		for _, method := range []domain.PaymentMethod{domain.PaymentMethodUPI, domain.PaymentMethodCOD} {
			for pct := 0; pct <= 100; pct += 5 {
				snap, err := calc.Calculate(items, method, Discount{Percentage: pct})
				require.NoError(t, err)
				assert.False(t, snap.Total.IsNegative())
				assert.True(t, snap.DiscountAmount.LessThanOrEqual(snap.Subtotal))
			}
		}
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")
	items := []domain.LineItem{lineItem("850", 2)}

	a, err := calc.Calculate(items, domain.PaymentMethodCOD, Discount{Percentage: 10})
	require.NoError(t, err)
	b, err := calc.Calculate(items, domain.PaymentMethodCOD, Discount{Percentage: 10})
	require.NoError(t, err)

	assert.True(t, a.Total.Equal(b.Total))
}

func TestCalculate_UnknownPaymentMethod(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")

	_, err := calc.Calculate([]domain.LineItem{lineItem("10", 1)}, "card", Discount{})
	assert.ErrorIs(t, err, domain.ErrUnknownPaymentMethod)
}

func TestCalculate_InvalidPercentage(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")

	for _, pct := range []int{-1, 101} {
		_, err := calc.Calculate([]domain.LineItem{lineItem("10", 1)}, domain.PaymentMethodUPI, Discount{Percentage: pct})
		assert.ErrorIs(t, err, domain.ErrInvalidPercentage)
	}
}

func TestParseShippingTable(t *testing.T) {
	table, err := ParseShippingTable("upi=0, COD=30, card=49.5")
	require.NoError(t, err)

	cost, err := table.Cost(domain.PaymentMethodCOD)
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(cost))
	assert.Equal(t, []domain.PaymentMethod{"card", "cod", "upi"}, table.Methods())

	for _, bad := range []string{"", "upi", "upi=abc", "cod=-1"} {
		_, err := ParseShippingTable(bad)
		assert.Error(t, err, bad)
	}
}

func TestCalculate_ZeroPercentCodeIsRecorded(t *testing.T) {
	calc := NewCalculator(DefaultShippingTable(), "INR")

	snap, err := calc.Calculate([]domain.LineItem{lineItem("500", 1)}, domain.PaymentMethodUPI, Discount{Code: "refzero00001"})
	require.NoError(t, err)

	assert.Equal(t, "REFZERO00001", snap.DiscountCode)
	assert.True(t, snap.DiscountAmount.IsZero())
	assert.True(t, dec("500").Equal(snap.Total))
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/loyalty"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	svc      *CheckoutService
	carts    *CartService
	cache    *MockCartCache
	orders   *MockOrderStore
	profiles *MockProfileStore
	registry *MockRegistry
	log      *callLog
}

func setupCheckout(t *testing.T) *checkoutFixture {
	t.Helper()
	log := &callLog{}
	c := newMockCartCache()
	c.log = log
	carts := NewCartService(c, newMockCatalog(), logger.Discard())
	orders := newMockOrderStore(log)
	profiles := newMockProfileStore(log)
	registry := newMockRegistry(log)

	svc := NewCheckoutService(carts, orders, profiles, registry,
		pricing.NewCalculator(pricing.DefaultShippingTable(), "INR"),
		loyalty.NewAccrual(loyalty.DefaultRate),
		logger.Discard())

	return &checkoutFixture{svc: svc, carts: carts, cache: c, orders: orders, profiles: profiles, registry: registry, log: log}
}

func validRequest(method domain.PaymentMethod, code string) PlaceOrderRequest {
	return PlaceOrderRequest{
		Customer: domain.CustomerInfo{UserID: "user-1", Name: "Asha Rao", Email: "asha@example.com"},
		Address: domain.ShippingAddress{
			Name: "Asha Rao", Line1: "12 MG Road", City: "Pune", State: "MH", PostalCode: "411001", Contact: "9876543210",
		},
		PaymentMethod: method,
		DiscountCode:  code,
	}
}

func TestPlaceOrder_CashOnDelivery(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-1", "kurta-linen", "M", "white", 2)
	require.NoError(t, err)

	receipt, err := f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodCOD, ""))
	require.NoError(t, err)

	assert.Equal(t, "order-1", receipt.Order.ID)
	assert.True(t, decimal.NewFromInt(1730).Equal(receipt.Order.Pricing.Total))
	assert.Equal(t, int64(173), receipt.PointsEarned)
	assert.Equal(t, int64(173), receipt.Order.PointsEarned)
	assert.True(t, receipt.PointsCredited)
	assert.False(t, receipt.DiscountRedeemed)

	assert.Empty(t, f.cache.items("sess-1"))
	balance, err := f.svc.LoyaltyBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(173), balance.Balance)
	assert.Equal(t, []string{"save_order", "credit_points", "clear_cart"}, f.log.list())
}

func TestPlaceOrder_DiscountRedeemedAfterSave(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.registry.put("NEWSAB12CD34", 15, 1, 0, 30*24*time.Hour)

	_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)

	receipt, err := f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, " newsab12cd34 "))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(150).Equal(receipt.Order.Pricing.DiscountAmount))
	assert.True(t, decimal.NewFromInt(850).Equal(receipt.Order.Pricing.Total))
	assert.Equal(t, int64(85), receipt.PointsEarned)
	assert.True(t, receipt.DiscountRedeemed)
	assert.Equal(t, 1, f.registry.usedCount("NEWSAB12CD34"))

	assert.Equal(t, []string{"validate", "save_order", "redeem", "credit_points", "clear_cart"}, f.log.list())
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := setupCheckout(t)

	_, err := f.svc.PlaceOrder(context.Background(), "sess-1", validRequest(domain.PaymentMethodUPI, ""))
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Equal(t, 0, f.orders.count())
}

func TestPlaceOrder_IncompleteAddressKeepsCartAndCode(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.registry.put("EXITAAAA1111", 10, 1, 0, time.Hour)

	_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)

	req := validRequest(domain.PaymentMethodUPI, "EXITAAAA1111")
	req.Address.City = ""
	req.Address.Contact = " "

	_, err = f.svc.PlaceOrder(ctx, "sess-1", req)
	assert.ErrorIs(t, err, domain.ErrIncompleteAddress)

	var addrErr *domain.IncompleteAddressError
	require.True(t, errors.As(err, &addrErr))
	assert.Equal(t, []string{"city", "contact"}, addrErr.Missing)

	assert.Len(t, f.cache.items("sess-1"), 1)
	assert.Equal(t, 0, f.registry.usedCount("EXITAAAA1111"))
	assert.Equal(t, 0, f.orders.count())
}

func TestPlaceOrder_SaveFailureKeepsCartAndCode(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.registry.put("LOYALAAAA2222", 20, 1, 0, time.Hour)
	f.orders.SaveErr = errors.New("connection reset")

	_, err := f.carts.AddItem(ctx, "sess-1", "kurta-linen", "L", "indigo", 1)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodCOD, "LOYALAAAA2222"))
	require.Error(t, err)

	assert.Len(t, f.cache.items("sess-1"), 1)
	assert.Equal(t, 0, f.registry.usedCount("LOYALAAAA2222"))
	assert.Equal(t, []string{"validate", "save_order"}, f.log.list())
}

func TestPlaceOrder_ExhaustedCodeFailsBeforeSave(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.registry.put("REFAAAA3333", 10, 1, 1, time.Hour)

	_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, "REFAAAA3333"))
	assert.ErrorIs(t, err, domain.ErrRedemptionFailed)

	var re *domain.RedemptionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, domain.MessageCodeExhausted, re.Message)

	assert.Equal(t, 0, f.orders.count())
	assert.Len(t, f.cache.items("sess-1"), 1)
}

func TestPlaceOrder_LostRedeemRaceKeepsOrder(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.registry.put("NEWSZZZZ9999", 10, 1, 0, time.Hour)
	f.registry.LoseRace = true

	_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)

	receipt, err := f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, "NEWSZZZZ9999"))
	require.NoError(t, err)

	assert.False(t, receipt.DiscountRedeemed)
	assert.Equal(t, 1, f.orders.count())
	assert.Empty(t, f.cache.items("sess-1"))
}

func TestPlaceOrder_RegistryUnavailable(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.registry.ValidateErr = domain.ErrRegistryUnavailable

	_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, "NEWSAAAA0000"))
	assert.ErrorIs(t, err, domain.ErrRegistryUnavailable)
	assert.Equal(t, 0, f.orders.count())
}

func TestPlaceOrder_GuestEarnsButIsNotCredited(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)

	req := validRequest(domain.PaymentMethodUPI, "")
	req.Customer.UserID = ""
	receipt, err := f.svc.PlaceOrder(ctx, "sess-1", req)
	require.NoError(t, err)

	assert.Equal(t, int64(100), receipt.PointsEarned)
	assert.False(t, receipt.PointsCredited)
	assert.NotContains(t, f.log.list(), "credit_points")
}

func TestPlaceOrder_CreditFailureIsNotFatal(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.profiles.AddErr = errors.New("db down")

	_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)

	receipt, err := f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, ""))
	require.NoError(t, err)
	assert.False(t, receipt.PointsCredited)
	assert.Empty(t, f.cache.items("sess-1"))
}

func TestPlaceOrder_CanceledContextAfterSave(t *testing.T) {
	f := setupCheckout(t)
	f.registry.put("NEWSCTX00001", 10, 1, 0, time.Hour)

	_, err := f.carts.AddItem(context.Background(), "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	f.orders.onSave = cancel

	receipt, err := f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, "NEWSCTX00001"))
	require.NoError(t, err)
	assert.True(t, receipt.DiscountRedeemed)
	assert.Empty(t, f.cache.items("sess-1"))
}

func TestPlaceOrder_OrderIsDetachedFromCart(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-1", "kurta-linen", "M", "white", 1)
	require.NoError(t, err)

	receipt, err := f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, ""))
	require.NoError(t, err)

	_, err = f.carts.AddItem(ctx, "sess-1", "kurta-linen", "M", "white", 5)
	require.NoError(t, err)

	stored, err := f.svc.GetOrder(ctx, receipt.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Items[0].Quantity)
}

func TestPlaceOrder_KeepsItemsAddedDuringCheckout(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-1", "kurta-linen", "M", "white", 2)
	require.NoError(t, err)

	// the shopper keeps browsing in another tab while the order is saved
	f.orders.onSave = func() {
		_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
		assert.NoError(t, err)
		_, err = f.carts.AddItem(ctx, "sess-1", "kurta-linen", "M", "white", 1)
		assert.NoError(t, err)
	}

	receipt, err := f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, ""))
	require.NoError(t, err)
	require.Len(t, receipt.Order.Items, 1)
	assert.Equal(t, 2, receipt.Order.Items[0].Quantity)

	left := f.cache.items("sess-1")
	require.Len(t, left, 2)
	assert.Equal(t, "kurta-linen", left[0].ProductID)
	assert.Equal(t, 1, left[0].Quantity)
	assert.Equal(t, "dupatta-cotton", left[1].ProductID)
	assert.Equal(t, 1, left[1].Quantity)
}

func TestPlaceOrder_ZeroPercentCodeIsRedeemed(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.registry.put("REFZERO00001", 0, 1, 0, time.Hour)

	_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)

	receipt, err := f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, "refzero00001"))
	require.NoError(t, err)

	assert.True(t, receipt.DiscountRedeemed)
	assert.Equal(t, 1, f.registry.usedCount("REFZERO00001"))
	assert.Equal(t, "REFZERO00001", receipt.Order.Pricing.DiscountCode)
	assert.True(t, receipt.Order.Pricing.DiscountAmount.IsZero())

	// single use: the next checkout with the same code is refused
	_, err = f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)
	_, err = f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, "REFZERO00001"))
	assert.ErrorIs(t, err, domain.ErrRedemptionFailed)
	assert.Equal(t, 1, f.registry.usedCount("REFZERO00001"))
}

func TestPlaceOrder_SavedOrderCarriesPoints(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-1", "kurta-linen", "M", "white", 2)
	require.NoError(t, err)

	req := validRequest(domain.PaymentMethodCOD, "")
	req.Customer.UserID = ""
	receipt, err := f.svc.PlaceOrder(ctx, "sess-1", req)
	require.NoError(t, err)
	assert.False(t, receipt.PointsCredited)

	stored, err := f.svc.GetOrder(ctx, receipt.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(173), stored.PointsEarned)
}

func TestPreview_DoesNotRedeem(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.registry.put("NEWSPREV0001", 15, 1, 0, time.Hour)

	_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		quote, err := f.svc.Preview(ctx, "sess-1", domain.PaymentMethodUPI, "newsprev0001")
		require.NoError(t, err)
		require.NotNil(t, quote.Discount)
		assert.True(t, quote.Discount.Valid)
		assert.True(t, decimal.NewFromInt(850).Equal(quote.Pricing.Total))
	}

	assert.Equal(t, 0, f.registry.usedCount("NEWSPREV0001"))
	assert.NotContains(t, f.log.list(), "redeem")
}

func TestPreview_InvalidCodeCarriesMessage(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-1", "kurta-linen", "M", "white", 2)
	require.NoError(t, err)

	quote, err := f.svc.Preview(ctx, "sess-1", domain.PaymentMethodCOD, "BOGUS")
	require.NoError(t, err)

	assert.False(t, quote.Discount.Valid)
	assert.Equal(t, domain.MessageCodeInvalid, quote.Discount.Message)
	assert.True(t, quote.Pricing.DiscountAmount.IsZero())
	assert.True(t, decimal.NewFromInt(1730).Equal(quote.Pricing.Total))
}

func TestPreview_UnknownPaymentMethod(t *testing.T) {
	f := setupCheckout(t)

	_, err := f.svc.Preview(context.Background(), "sess-1", "card", "")
	assert.ErrorIs(t, err, domain.ErrUnknownPaymentMethod)
}

func TestListOrders(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.carts.AddItem(ctx, "sess-1", "dupatta-cotton", "", "", 1)
		require.NoError(t, err)
		_, err = f.svc.PlaceOrder(ctx, "sess-1", validRequest(domain.PaymentMethodUPI, ""))
		require.NoError(t, err)
	}

	orders, err := f.svc.ListOrders(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	_, err = f.svc.GetOrder(ctx, "order-404")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

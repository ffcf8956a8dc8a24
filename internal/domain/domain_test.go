package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSelectionKey_IsDeterministic(t *testing.T) {
	assert.Equal(t, SelectionKey("p1", "M", "red"), SelectionKey(" p1", "M ", "red"))
	assert.NotEqual(t, SelectionKey("p1", "M", "red"), SelectionKey("p1", "L", "red"))
	assert.Equal(t, "p1|M|", SelectionKey("p1", "M", ""))
}

func TestSubtotal(t *testing.T) {
	items := []LineItem{
		{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(850), UnitOriginalPrice: decimal.NewFromInt(1000)},
		{ProductID: "p2", Quantity: 1, UnitPrice: decimal.NewFromInt(300)},
	}

	assert.True(t, decimal.NewFromInt(2000).Equal(Subtotal(items)))
	assert.True(t, decimal.NewFromInt(2300).Equal(OriginalSubtotal(items)))
	assert.True(t, decimal.Zero.Equal(Subtotal(nil)))
}

func TestCloneItems_Independent(t *testing.T) {
	items := []LineItem{{ProductID: "p1", Quantity: 1}}
	cp := CloneItems(items)
	cp[0].Quantity = 5

	assert.Equal(t, 1, items[0].Quantity)
	assert.NotNil(t, CloneItems(nil))
}

func TestDiscountCode_Check(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	code := DiscountCode{
		Code:       "NEWSABCD1234",
		Percentage: 10,
		MaxUses:    1,
		CreatedAt:  created,
		ExpiresAt:  created.Add(CodeValidity),
	}

	res := code.Check(created.Add(time.Hour))
	assert.True(t, res.Valid)
	assert.Equal(t, 10, res.Percentage)

	res = code.Check(code.ExpiresAt)
	assert.False(t, res.Valid)
	assert.Equal(t, MessageCodeExpired, res.Message)

	code.UsedCount = 1
	res = code.Check(created)
	assert.False(t, res.Valid)
	assert.Equal(t, MessageCodeExhausted, res.Message)
}

func TestParseCodeType(t *testing.T) {
	ct, err := ParseCodeType("Exit-Intent")
	assert.NoError(t, err)
	assert.Equal(t, CodeTypeExitIntent, ct)

	prefix, ok := ct.Prefix()
	assert.True(t, ok)
	assert.Equal(t, "EXIT", prefix)

	_, err = ParseCodeType("birthday")
	assert.ErrorIs(t, err, ErrUnknownCodeType)
}

func TestShippingAddress_MissingFields(t *testing.T) {
	addr := ShippingAddress{Name: "Asha", Line1: "12 MG Road", City: "Pune"}
	assert.Equal(t, []string{"state", "postal_code", "contact"}, addr.MissingFields())

	addr.State, addr.PostalCode, addr.Contact = "MH", "411001", "9999999999"
	assert.Empty(t, addr.MissingFields())
}

func TestIncompleteAddressError_Is(t *testing.T) {
	var err error = &IncompleteAddressError{Missing: []string{"city"}}
	assert.True(t, errors.Is(err, ErrIncompleteAddress))
	assert.Contains(t, err.Error(), "city")
}

func TestRedemptionError_Is(t *testing.T) {
	var err error = &RedemptionError{Code: "EXITABCD1234", Message: MessageCodeExhausted}
	assert.ErrorIs(t, err, ErrRedemptionFailed)

	var re *RedemptionError
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, MessageCodeExhausted, re.Message)
}

func TestOrderRecord_WithIDCopiesItems(t *testing.T) {
	rec := OrderRecord{Items: []LineItem{{ProductID: "p1", Quantity: 1}}}
	withID := rec.WithID("order-1")
	withID.Items[0].Quantity = 9

	assert.Equal(t, "", rec.ID)
	assert.Equal(t, "order-1", withID.ID)
	assert.Equal(t, 1, rec.Items[0].Quantity)
}

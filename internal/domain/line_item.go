package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const selectionKeySeparator = "|"

// LineItem is one product/size/color selection in a cart. Prices are snapshotted when the
// item is first added.
type LineItem struct {
	ProductID         string          `json:"product_id"`
	Name              string          `json:"name"`
	Size              string          `json:"size"`
	Color             string          `json:"color,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	UnitOriginalPrice decimal.Decimal `json:"unit_original_price"`
	AddedAt           time.Time       `json:"added_at"`
}

// SelectionKey derives the identity of a line item from its selection.
func SelectionKey(productID, size, color string) string {
	return strings.Join([]string{
		strings.TrimSpace(productID),
		strings.TrimSpace(size),
		strings.TrimSpace(color),
	}, selectionKeySeparator)
}

func (i LineItem) Key() string {
	return SelectionKey(i.ProductID, i.Size, i.Color)
}

func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i LineItem) LineOriginalTotal() decimal.Decimal {
	return i.UnitOriginalPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums unit price times quantity over items.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// OriginalSubtotal sums list prices; items without a list price count at their unit price.
func OriginalSubtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.UnitOriginalPrice.IsZero() {
			total = total.Add(item.LineTotal())
			continue
		}
		total = total.Add(item.LineOriginalTotal())
	}
	return total
}

// CloneItems returns an independent copy of items. A nil input yields an empty slice.
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

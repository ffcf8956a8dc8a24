package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type State int

const (
	StateEmpty State = iota
	StateNonEmpty
)

func (s State) String() string {
	if s == StateNonEmpty {
		return "non_empty"
	}
	return "empty"
}

// Cart is an ordered collection of line items, unique by selection key.
// It is not safe for concurrent use; callers own one Cart per shopper.
type Cart struct {
	catalog catalog.Lookup
	items   []domain.LineItem
	now     func() time.Time
}

func New(lookup catalog.Lookup) *Cart {
	return &Cart{
		catalog: lookup,
		now:     time.Now,
	}
}

// Restore replaces the cart contents with a copy of items.
func (c *Cart) Restore(items []domain.LineItem) {
	c.items = domain.CloneItems(items)
}

// AddItem adds quantity units of a selection, merging into an existing line with the same key.
// The catalog is consulted on every call so new lines carry the current price.
func (c *Cart) AddItem(ctx context.Context, productID, size, color string, quantity int) (domain.LineItem, error) {
	if quantity < 1 {
		return domain.LineItem{}, domain.ErrInvalidQuantity
	}

	productID = strings.TrimSpace(productID)
	size = strings.TrimSpace(size)
	color = strings.TrimSpace(color)

	product, err := c.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("lookup product %s: %w", productID, err)
	}
	if !product.OffersSize(size) || !product.OffersColor(color) {
		return domain.LineItem{}, fmt.Errorf("%w: %s size=%q color=%q", domain.ErrInvalidSelection, productID, size, color)
	}

	key := domain.SelectionKey(productID, size, color)
	if idx := c.indexOf(key); idx >= 0 {
		c.items[idx].Quantity += quantity
		return c.items[idx], nil
	}

	item := domain.LineItem{
		ProductID:         productID,
		Name:              product.Name,
		Size:              size,
		Color:             color,
		Quantity:          quantity,
		UnitPrice:         product.Price,
		UnitOriginalPrice: product.ListPrice(),
		AddedAt:           c.now(),
	}
	c.items = append(c.items, item)
	return item, nil
}

// RemoveItem deletes the line with key. Unknown keys are ignored.
func (c *Cart) RemoveItem(key string) {
	if idx := c.indexOf(key); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
}

// SetQuantity overwrites a line's quantity; zero or negative removes the line.
func (c *Cart) SetQuantity(key string, quantity int) error {
	idx := c.indexOf(key)
	if idx < 0 {
		return domain.ErrItemNotFound
	}
	if quantity <= 0 {
		c.RemoveItem(key)
		return nil
	}
	c.items[idx].Quantity = quantity
	return nil
}

// List returns a copy of the items in insertion order.
func (c *Cart) List() []domain.LineItem {
	return domain.CloneItems(c.items)
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) State() State {
	if len(c.items) == 0 {
		return StateEmpty
	}
	return StateNonEmpty
}

func (c *Cart) Subtotal() decimal.Decimal {
	return domain.Subtotal(c.items)
}

func (c *Cart) indexOf(key string) int {
	for i := range c.items {
		if c.items[i].Key() == key {
			return i
		}
	}
	return -1
}

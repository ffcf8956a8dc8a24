package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog view the cart needs at add time.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Sizes         []string        `json:"sizes,omitempty"`
	Colors        []string        `json:"colors,omitempty"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
}

// OffersSize reports whether size is selectable. Products without a size list accept any size.
func (p *Product) OffersSize(size string) bool {
	if len(p.Sizes) == 0 {
		return true
	}
	return slices.Contains(p.Sizes, size)
}

// OffersColor reports whether color is selectable. Color is optional, so "" is always accepted.
func (p *Product) OffersColor(color string) bool {
	if color == "" || len(p.Colors) == 0 {
		return true
	}
	return slices.Contains(p.Colors, color)
}

// ListPrice returns the pre-markdown price, falling back to Price when none is set.
func (p *Product) ListPrice() decimal.Decimal {
	if p.OriginalPrice.IsZero() {
		return p.Price
	}
	return p.OriginalPrice
}

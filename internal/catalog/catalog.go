package catalog

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Lookup resolves a product's current price and options. Implementations return
// domain.ErrProductNotFound for unknown ids.
type Lookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, id string) (*domain.Product, error)

func (f LookupFunc) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return f(ctx, id)
}

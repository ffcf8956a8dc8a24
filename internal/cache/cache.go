package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// CartCache keeps session carts. For storefront sessions it is the system of record.
type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.SessionCart, error)
	Set(ctx context.Context, sessionID string, cart *domain.SessionCart) error
	Delete(ctx context.Context, sessionID string) error
}

type ProductCache interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
}

var ErrCacheMiss = errors.New("cache miss")

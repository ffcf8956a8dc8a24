package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CachedLookup reads products through a cache in front of another Lookup.
type CachedLookup struct {
	next   Lookup
	cache  cache.ProductCache
	logger *slog.Logger
	sfg    singleflight.Group // collapses concurrent misses for the same product
}

func NewCachedLookup(next Lookup, c cache.ProductCache, logger *slog.Logger) *CachedLookup {
	return &CachedLookup{next: next, cache: c, logger: logger}
}

func (l *CachedLookup) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	v, err, _ := l.sfg.Do(id, func() (interface{}, error) {
		product, err := l.cache.GetProduct(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.logger.WarnContext(ctx, "product cache get error", "product_id", id, "error", err)
		}

		product, err = l.next.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		go func(p domain.Product) {
			if errSet := l.cache.SetProduct(context.Background(), &p); errSet != nil {
				l.logger.Warn("product cache set error", "product_id", p.ID, "error", errSet)
			}
		}(*product)

		return product, nil
	})
	if err != nil {
		return nil, err
	}

	p := *v.(*domain.Product)
	return &p, nil
}

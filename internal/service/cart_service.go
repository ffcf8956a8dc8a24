package service

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

const sessionStripes = 64

// CartService keeps one cart per shopper session. Each mutation loads the session cart,
// applies the change through cart.Cart and stores the result.
type CartService struct {
	cache   cache.CartCache
	catalog catalog.Lookup
	logger  *slog.Logger
	sfg     singleflight.Group // Prevents cache stampede
	locks   [sessionStripes]sync.Mutex
	now     func() time.Time
}

func NewCartService(c cache.CartCache, lookup catalog.Lookup, logger *slog.Logger) *CartService {
	return &CartService{
		cache:   c,
		catalog: lookup,
		logger:  logger,
		now:     time.Now,
	}
}

// GetCart returns the session cart, or a new empty one when the session has none.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.SessionCart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		return s.load(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}

	// shared between singleflight callers
	return v.(*domain.SessionCart).Clone(), nil
}

func (s *CartService) AddItem(ctx context.Context, sessionID, productID, size, color string, quantity int) (*domain.SessionCart, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		item, err := c.AddItem(ctx, productID, size, color, quantity)
		if err != nil {
			return err
		}
		s.logger.DebugContext(ctx, "cart item added", "session_id", sessionID, "key", item.Key(), "quantity", item.Quantity)
		return nil
	})
}

func (s *CartService) SetQuantity(ctx context.Context, sessionID, key string, quantity int) (*domain.SessionCart, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.SetQuantity(key, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, key string) (*domain.SessionCart, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		c.RemoveItem(key)
		return nil
	})
}

func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "cart delete failed", "session_id", sessionID, "error", err)
		return err
	}
	return nil
}

// RemoveOrdered takes the quantities of an order out of the session cart. Lines added or
// raised while the order was being placed stay in the cart. The cart is deleted once empty.
func (s *CartService) RemoveOrdered(ctx context.Context, sessionID string, ordered []domain.LineItem) error {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sc, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	taken := make(map[string]int, len(ordered))
	for _, item := range ordered {
		taken[item.Key()] += item.Quantity
	}

	remaining := make([]domain.LineItem, 0, len(sc.Items))
	for _, item := range sc.Items {
		item.Quantity -= taken[item.Key()]
		if item.Quantity > 0 {
			remaining = append(remaining, item)
		}
	}

	if len(remaining) == 0 {
		if err := s.cache.Delete(ctx, sessionID); err != nil {
			s.logger.ErrorContext(ctx, "cart delete failed", "session_id", sessionID, "error", err)
			return err
		}
		return nil
	}

	sc.Items = remaining
	sc.UpdatedAt = s.now().UTC()
	if err := s.cache.Set(ctx, sessionID, sc); err != nil {
		s.logger.ErrorContext(ctx, "cart save failed", "session_id", sessionID, "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "cart changed during checkout, kept newer lines", "session_id", sessionID, "items", len(remaining))
	return nil
}

func (s *CartService) mutate(ctx context.Context, sessionID string, apply func(c *cart.Cart) error) (*domain.SessionCart, error) {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	c := cart.New(s.catalog)
	c.Restore(sc.Items)
	if err := apply(c); err != nil {
		return nil, err
	}

	sc.Items = c.List()
	sc.UpdatedAt = s.now().UTC()
	if err := s.cache.Set(ctx, sessionID, sc); err != nil {
		s.logger.ErrorContext(ctx, "cart save failed", "session_id", sessionID, "error", err)
		return nil, err
	}
	return sc, nil
}

func (s *CartService) load(ctx context.Context, sessionID string) (*domain.SessionCart, error) {
	sc, err := s.cache.Get(ctx, sessionID)
	if err == nil {
		return sc, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.ErrorContext(ctx, "cart load failed", "session_id", sessionID, "error", err)
		return nil, err
	}

	now := s.now().UTC()
	return &domain.SessionCart{
		SessionID: sessionID,
		Items:     []domain.LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// lockFor serializes load-mutate-save for one session without a lock per session.
func (s *CartService) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%sessionStripes]
}

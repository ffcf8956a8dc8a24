package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
)

// ErrCatalogUnavailable is returned while the breaker is open.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// BreakerLookup stops calling a failing catalog until it recovers.
// Unknown products and calls abandoned by the caller do not trip the breaker.
type BreakerLookup struct {
	next Lookup
	cb   *gobreaker.CircuitBreaker[*domain.Product]
}

func NewBreakerLookup(next Lookup, cfg circuitbreaker.Config, logger *slog.Logger) *BreakerLookup {
	cfg.Logger = logger
	cfg.IsSuccessful = func(err error) bool {
		var abandoned callerGoneError
		return err == nil || errors.Is(err, domain.ErrProductNotFound) || errors.As(err, &abandoned)
	}
	return &BreakerLookup{
		next: next,
		cb:   circuitbreaker.New[*domain.Product](cfg),
	}
}

func (l *BreakerLookup) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := l.cb.Execute(func() (*domain.Product, error) {
		p, err := l.next.GetProduct(ctx, id)
		if err != nil && ctx.Err() != nil {
			return nil, callerGoneError{err: err}
		}
		return p, err
	})
	if errors.Is(err, circuitbreaker.ErrOpenState) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	var abandoned callerGoneError
	if errors.As(err, &abandoned) {
		return nil, abandoned.err
	}
	return product, err
}

// callerGoneError marks a failure caused by the caller's own context ending.
type callerGoneError struct {
	err error
}

func (e callerGoneError) Error() string { return e.err.Error() }
func (e callerGoneError) Unwrap() error { return e.err }

func (l *BreakerLookup) State() gobreaker.State {
	return l.cb.State()
}

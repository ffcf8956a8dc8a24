package discount

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Store persists discount codes. Codes are passed in normalized (upper-case) form.
type Store interface {
	// Insert fails with domain.ErrCodeCollision when the code already exists.
	Insert(ctx context.Context, code domain.DiscountCode) error
	// Find fails with domain.ErrCodeNotFound for unknown codes.
	Find(ctx context.Context, code string) (*domain.DiscountCode, error)
	// IncrementIfRedeemable atomically bumps the usage count when the code is
	// unexpired at now and under its cap. It reports whether a use was recorded.
	IncrementIfRedeemable(ctx context.Context, code string, now time.Time) (bool, error)
}

package service

import (
	"context"
	"log/slog"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// DiscountService issues codes on triggering events, falling back to a per-type percentage
// when the caller does not name one.
type DiscountService struct {
	registry DiscountRegistry
	defaults map[domain.CodeType]int
	logger   *slog.Logger
}

func NewDiscountService(registry DiscountRegistry, defaults map[domain.CodeType]int, logger *slog.Logger) *DiscountService {
	return &DiscountService{
		registry: registry,
		defaults: defaults,
		logger:   logger,
	}
}

// Issue generates a code. A nil percentage uses the configured default for codeType.
func (s *DiscountService) Issue(ctx context.Context, codeType domain.CodeType, percentage *int, maxUses int) (domain.DiscountCode, error) {
	pct, ok := s.defaults[codeType]
	if percentage != nil {
		pct = *percentage
	} else if !ok {
		s.logger.WarnContext(ctx, "no default percentage for code type", "type", codeType)
	}
	return s.registry.Generate(ctx, pct, codeType, maxUses)
}

func (s *DiscountService) Validate(ctx context.Context, code string) (domain.ValidationResult, error) {
	return s.registry.Validate(ctx, code)
}

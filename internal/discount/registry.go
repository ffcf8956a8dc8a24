package discount

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	codeAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeSuffixLength = 8
	maxGenerateTries = 5
)

type Registry struct {
	store  Store
	now    func() time.Time
	random io.Reader
	logger *slog.Logger
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithRandom(random io.Reader) Option {
	return func(r *Registry) { r.random = random }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func NewRegistry(store Store, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		now:    time.Now,
		random: rand.Reader,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate issues a new code for the trigger type. maxUses of zero means single use.
func (r *Registry) Generate(ctx context.Context, percentage int, codeType domain.CodeType, maxUses int) (domain.DiscountCode, error) {
	if percentage < 0 || percentage > 100 {
		return domain.DiscountCode{}, fmt.Errorf("%w: %d", domain.ErrInvalidPercentage, percentage)
	}
	if maxUses == 0 {
		maxUses = 1
	}
	if maxUses < 0 {
		return domain.DiscountCode{}, fmt.Errorf("%w: %d", domain.ErrInvalidMaxUses, maxUses)
	}
	prefix, ok := codeType.Prefix()
	if !ok {
		return domain.DiscountCode{}, fmt.Errorf("%w: %q", domain.ErrUnknownCodeType, codeType)
	}

	for attempt := 1; attempt <= maxGenerateTries; attempt++ {
		suffix, err := randomSuffix(r.random, codeSuffixLength)
		if err != nil {
			return domain.DiscountCode{}, fmt.Errorf("generate code: %w", err)
		}

		now := r.now().UTC()
		code := domain.DiscountCode{
			Code:       prefix + suffix,
			Percentage: percentage,
			Type:       codeType,
			MaxUses:    maxUses,
			UsedCount:  0,
			CreatedAt:  now,
			ExpiresAt:  now.Add(domain.CodeValidity),
		}

		err = r.store.Insert(ctx, code)
		if err == nil {
			r.logger.InfoContext(ctx, "discount code issued", "type", codeType, "percentage", percentage, "max_uses", maxUses)
			return code, nil
		}
		if !errors.Is(err, domain.ErrCodeCollision) {
			return domain.DiscountCode{}, fmt.Errorf("%w: %w", domain.ErrRegistryUnavailable, err)
		}
		r.logger.WarnContext(ctx, "discount code collision, retrying", "attempt", attempt)
	}

	return domain.DiscountCode{}, fmt.Errorf("%w: gave up after %d attempts", domain.ErrCodeCollision, maxGenerateTries)
}

// Validate checks a code without recording a use.
func (r *Registry) Validate(ctx context.Context, code string) (domain.ValidationResult, error) {
	normalized := domain.NormalizeCode(code)
	if normalized == "" {
		return domain.ValidationResult{Valid: false, Message: domain.MessageCodeInvalid}, nil
	}

	dc, err := r.store.Find(ctx, normalized)
	if errors.Is(err, domain.ErrCodeNotFound) {
		return domain.ValidationResult{Valid: false, Message: domain.MessageCodeInvalid}, nil
	}
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("%w: %w", domain.ErrRegistryUnavailable, err)
	}

	return dc.Check(r.now()), nil
}

// Redeem records one use of the code if it is still redeemable.
func (r *Registry) Redeem(ctx context.Context, code string) (bool, error) {
	normalized := domain.NormalizeCode(code)
	if normalized == "" {
		return false, nil
	}

	ok, err := r.store.IncrementIfRedeemable(ctx, normalized, r.now())
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrRegistryUnavailable, err)
	}
	if ok {
		r.logger.InfoContext(ctx, "discount code redeemed", "code", normalized)
	}
	return ok, nil
}

// randomSuffix draws n characters uniformly from codeAlphabet.
func randomSuffix(random io.Reader, n int) (string, error) {
	// largest multiple of len(codeAlphabet) that fits in a byte
	limit := byte(256 - 256%len(codeAlphabet))

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := io.ReadFull(random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

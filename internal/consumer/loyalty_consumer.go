package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/loyalty"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/segmentio/kafka-go"
)

const (
	loyaltyGroupID = "storefront-loyalty"

	minReadBackoff = 500 * time.Millisecond
	maxReadBackoff = 30 * time.Second
)

type LoyaltyCreditor interface {
	AddLoyaltyPoints(ctx context.Context, userID, orderID string, points int64) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// LoyaltyConsumer credits points for placed orders from the order event stream. Checkout
// credits synchronously; this catches up on orders whose credit failed there. The ledger
// makes a second credit for the same order a no-op.
type LoyaltyConsumer struct {
	repo    LoyaltyCreditor
	reader  messageReader
	accrual *loyalty.Accrual
	logger  *slog.Logger

	// backoff grows while the broker keeps failing and resets on the next good read
	backoff    time.Duration
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewLoyaltyConsumer(repo LoyaltyCreditor, accrual *loyalty.Accrual, logger *slog.Logger, topic string, brokers ...string) *LoyaltyConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  loyaltyGroupID,
		MaxBytes: 10e6, // 10MB
	})
	return &LoyaltyConsumer{
		repo:       repo,
		reader:     reader,
		accrual:    accrual,
		logger:     logger,
		minBackoff: minReadBackoff,
		maxBackoff: maxReadBackoff,
	}
}

func (c *LoyaltyConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *LoyaltyConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("error closing kafka reader", "error", err)
	}
}

func (c *LoyaltyConsumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.waitAfterReadError(ctx, err)
		return
	}
	c.backoff = 0

	if eventType(m) != domain.EventTypeOrderPlaced {
		return
	}

	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.logger.ErrorContext(ctx, "error parsing order event", "offset", m.Offset, "error", err)
		return
	}
	if event.UserID == "" {
		return // guest order
	}

	points := c.accrual.PointsEarned(event.Pricing.Total)
	err = c.repo.AddLoyaltyPoints(ctx, event.UserID, event.OrderID, points)
	switch {
	case errors.Is(err, repository.ErrAlreadyCredited):
		c.logger.DebugContext(ctx, "order already credited", "order_id", event.OrderID)
	case err != nil:
		c.logger.ErrorContext(ctx, "failed to credit loyalty points", "order_id", event.OrderID, "error", err)
	default:
		c.logger.InfoContext(ctx, "loyalty points credited from event", "order_id", event.OrderID, "user_id", event.UserID, "points", points)
	}
}

func (c *LoyaltyConsumer) waitAfterReadError(ctx context.Context, err error) {
	switch {
	case c.backoff == 0:
		c.backoff = c.minBackoff
	case c.backoff < c.maxBackoff:
		c.backoff = min(c.backoff*2, c.maxBackoff)
	}
	c.logger.ErrorContext(ctx, "error reading message", "error", err, "retry_in", c.backoff)

	t := time.NewTimer(c.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}

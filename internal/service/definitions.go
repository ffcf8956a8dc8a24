package service

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

// SessionCarts is the part of CartService checkout depends on.
type SessionCarts interface {
	GetCart(ctx context.Context, sessionID string) (*domain.SessionCart, error)
	// RemoveOrdered drops the ordered quantities from the cart, keeping anything added since.
	RemoveOrdered(ctx context.Context, sessionID string, ordered []domain.LineItem) error
}

// OrderStore persists placed orders. SaveOrder assigns the order id.
type OrderStore interface {
	SaveOrder(ctx context.Context, order domain.OrderRecord) (string, error)
	GetOrder(ctx context.Context, id string) (*domain.OrderRecord, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.OrderRecord, error)
}

// ProfileStore holds customer loyalty balances.
type ProfileStore interface {
	AddLoyaltyPoints(ctx context.Context, userID, orderID string, points int64) error
	GetLoyaltyBalance(ctx context.Context, userID string) (*repository.LoyaltyBalance, error)
}

type DiscountRegistry interface {
	Generate(ctx context.Context, percentage int, codeType domain.CodeType, maxUses int) (domain.DiscountCode, error)
	Validate(ctx context.Context, code string) (domain.ValidationResult, error)
	Redeem(ctx context.Context, code string) (bool, error)
}

type PlaceOrderRequest struct {
	Customer      domain.CustomerInfo    `json:"customer"`
	Address       domain.ShippingAddress `json:"address"`
	PaymentMethod domain.PaymentMethod   `json:"payment_method"`
	DiscountCode  string                 `json:"discount_code,omitempty"`
}

// Receipt is the result of a placed order. PointsCredited is false for guests and when
// crediting failed after the order was saved.
type Receipt struct {
	Order            domain.OrderRecord `json:"order"`
	PointsEarned     int64              `json:"points_earned"`
	PointsCredited   bool               `json:"points_credited"`
	DiscountRedeemed bool               `json:"discount_redeemed"`
}

// Quote is a checkout preview. Discount is set when a code was supplied.
type Quote struct {
	Pricing  domain.PricingSnapshot   `json:"pricing"`
	Discount *domain.ValidationResult `json:"discount,omitempty"`
}

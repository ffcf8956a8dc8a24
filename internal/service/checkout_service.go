package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/loyalty"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

type CheckoutService struct {
	carts     SessionCarts
	orders    OrderStore
	profiles  ProfileStore
	discounts DiscountRegistry
	calc      *pricing.Calculator
	accrual   *loyalty.Accrual
	logger    *slog.Logger
	now       func() time.Time
}

func NewCheckoutService(
	carts SessionCarts,
	orders OrderStore,
	profiles ProfileStore,
	discounts DiscountRegistry,
	calc *pricing.Calculator,
	accrual *loyalty.Accrual,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		profiles:  profiles,
		discounts: discounts,
		calc:      calc,
		accrual:   accrual,
		logger:    logger,
		now:       time.Now,
	}
}

// Preview prices the session cart without touching the discount registry's usage counts.
// An unusable code yields an undiscounted quote that carries the registry message.
func (s *CheckoutService) Preview(ctx context.Context, sessionID string, method domain.PaymentMethod, code string) (*Quote, error) {
	sc, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	quote := &Quote{}
	discount := pricing.Discount{}
	if strings.TrimSpace(code) != "" {
		res, err := s.discounts.Validate(ctx, code)
		if err != nil {
			return nil, err
		}
		quote.Discount = &res
		if res.Valid {
			discount = pricing.Discount{Code: code, Percentage: res.Percentage}
		}
	}

	quote.Pricing, err = s.calc.Calculate(sc.Items, method, discount)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// PlaceOrder turns the session cart into a persisted order. The discount code is
// redeemed and loyalty points are credited only after the order is saved. A failure
// before that point leaves the cart and the code untouched.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID string, req PlaceOrderRequest) (*Receipt, error) {
	sc, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(sc.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	discount := pricing.Discount{}
	if strings.TrimSpace(req.DiscountCode) != "" {
		// a preview may be stale, check again
		res, err := s.discounts.Validate(ctx, req.DiscountCode)
		if err != nil {
			return nil, err
		}
		if !res.Valid {
			return nil, &domain.RedemptionError{Code: domain.NormalizeCode(req.DiscountCode), Message: res.Message}
		}
		discount = pricing.Discount{Code: req.DiscountCode, Percentage: res.Percentage}
	}

	snapshot, err := s.calc.Calculate(sc.Items, req.PaymentMethod, discount)
	if err != nil {
		return nil, err
	}

	record, err := order.Assemble(sc.Items, req.Customer, req.Address, req.PaymentMethod, snapshot, s.now())
	if err != nil {
		return nil, err
	}
	points := s.accrual.PointsEarned(snapshot.Total)
	record = record.WithPoints(points)

	orderID, err := s.orders.SaveOrder(ctx, record)
	if err != nil {
		s.logger.ErrorContext(ctx, "order save failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("save order: %w", err)
	}
	record = record.WithID(orderID)
	s.logger.InfoContext(ctx, "order placed", "order_id", orderID, "total", snapshot.Total.StringFixed(2), "payment_method", req.PaymentMethod)

	// the order is committed; finish even if the caller goes away
	postCtx := context.WithoutCancel(ctx)
	receipt := &Receipt{}

	if discount.Code != "" {
		receipt.DiscountRedeemed = s.redeem(postCtx, orderID, domain.NormalizeCode(discount.Code))
	}

	receipt.PointsEarned = points
	if req.Customer.UserID != "" {
		receipt.PointsCredited = s.credit(postCtx, req.Customer.UserID, orderID, points)
	}

	if err := s.carts.RemoveOrdered(postCtx, sessionID, record.Items); err != nil {
		s.logger.ErrorContext(postCtx, "cart clear after checkout failed", "session_id", sessionID, "order_id", orderID, "error", err)
	}

	receipt.Order = record
	return receipt, nil
}

func (s *CheckoutService) redeem(ctx context.Context, orderID, code string) bool {
	ok, err := s.discounts.Redeem(ctx, code)
	if err != nil {
		s.logger.ErrorContext(ctx, "discount redeem failed", "order_id", orderID, "code", code, "error", err)
		return false
	}
	if !ok {
		// another checkout used the last redemption between validate and redeem
		s.logger.WarnContext(ctx, "discount code no longer redeemable", "order_id", orderID, "code", code)
	}
	return ok
}

func (s *CheckoutService) credit(ctx context.Context, userID, orderID string, points int64) bool {
	err := s.profiles.AddLoyaltyPoints(ctx, userID, orderID, points)
	if errors.Is(err, repository.ErrAlreadyCredited) {
		return true
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "loyalty credit failed", "user_id", userID, "order_id", orderID, "points", points, "error", err)
		return false
	}
	return true
}

func (s *CheckoutService) GetOrder(ctx context.Context, id string) (*domain.OrderRecord, error) {
	return s.orders.GetOrder(ctx, id)
}

func (s *CheckoutService) ListOrders(ctx context.Context, userID string) ([]*domain.OrderRecord, error) {
	return s.orders.ListOrdersByUser(ctx, userID)
}

func (s *CheckoutService) LoyaltyBalance(ctx context.Context, userID string) (*repository.LoyaltyBalance, error) {
	return s.profiles.GetLoyaltyBalance(ctx, userID)
}

func (s *CheckoutService) ShippingMethods() pricing.ShippingTable {
	return s.calc.ShippingTable()
}

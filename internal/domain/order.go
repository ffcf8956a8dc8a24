package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type CustomerInfo struct {
	UserID string `json:"user_id,omitempty"` // empty for guest checkout
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

type ShippingAddress struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Contact    string `json:"contact"`
}

// MissingFields lists the required address fields that are blank, in a stable order.
func (a ShippingAddress) MissingFields() []string {
	required := []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"line1", a.Line1},
		{"city", a.City},
		{"state", a.State},
		{"postal_code", a.PostalCode},
		{"contact", a.Contact},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// OrderRecord is an assembled order. It is never mutated after assembly; the With* helpers
// return modified copies.
type OrderRecord struct {
	ID            string          `json:"id"`
	Status        OrderStatus     `json:"status"`
	Items         []LineItem      `json:"items"`
	Customer      CustomerInfo    `json:"customer"`
	Address       ShippingAddress `json:"address"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Pricing       PricingSnapshot `json:"pricing"`
	PointsEarned  int64           `json:"points_earned"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (o OrderRecord) WithID(id string) OrderRecord {
	o.Items = CloneItems(o.Items)
	o.ID = id
	return o
}

func (o OrderRecord) WithPoints(points int64) OrderRecord {
	o.Items = CloneItems(o.Items)
	o.PointsEarned = points
	return o
}

const EventTypeOrderPlaced = "OrderPlaced"

// OrderPlacedEvent is the outbox payload published after an order is persisted.
type OrderPlacedEvent struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id,omitempty"`
	Items         []LineItem      `json:"items"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Pricing       PricingSnapshot `json:"pricing"`
	PlacedAt      time.Time       `json:"placed_at"`
}

func NewOrderPlacedEvent(o OrderRecord) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:       o.ID,
		UserID:        o.Customer.UserID,
		Items:         CloneItems(o.Items),
		PaymentMethod: o.PaymentMethod,
		Pricing:       o.Pricing,
		PlacedAt:      o.CreatedAt,
	}
}

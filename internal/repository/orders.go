package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
)

// points_earned is what the order earned, credited or not; the ledger records crediting
const orderColumns = `id, user_id, status, items, customer, shipping_address, payment_method, pricing, created_at, points_earned`

// SaveOrder persists the order and its OrderPlaced outbox event in one transaction and
// returns the assigned order id.
func (r *PostgresRepository) SaveOrder(ctx context.Context, order domain.OrderRecord) (string, error) {
	id := uuid.New()
	order = order.WithID(id.String())

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal order items: %w", err)
	}
	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return "", fmt.Errorf("failed to marshal customer: %w", err)
	}
	addressJSON, err := json.Marshal(order.Address)
	if err != nil {
		return "", fmt.Errorf("failed to marshal address: %w", err)
	}
	pricingJSON, err := json.Marshal(order.Pricing)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pricing: %w", err)
	}
	eventJSON, err := json.Marshal(domain.NewOrderPlacedEvent(order))
	if err != nil {
		return "", fmt.Errorf("failed to marshal order event: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO orders (id, user_id, status, items, customer, shipping_address, payment_method, pricing, total_amount, currency, points_earned, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = tx.ExecContext(ctx, query,
		id,
		nullString(order.Customer.UserID),
		order.Status,
		itemsJSON,
		customerJSON,
		addressJSON,
		order.PaymentMethod,
		pricingJSON,
		order.Pricing.Total.StringFixed(2),
		order.Pricing.Currency,
		order.PointsEarned,
		order.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	outbox := `INSERT INTO outbox_events (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, outbox, id.String(), domain.EventTypeOrderPlaced, eventJSON); err != nil {
		return "", fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit order: %w", err)
	}
	return id.String(), nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*domain.OrderRecord, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *PostgresRepository) ListOrdersByUser(ctx context.Context, userID string) ([]*domain.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.OrderRecord
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.OrderRecord, error) {
	var (
		order                             domain.OrderRecord
		userID                            sql.NullString
		items, customer, address, pricing []byte
	)
	if err := row.Scan(
		&order.ID,
		&userID,
		&order.Status,
		&items,
		&customer,
		&address,
		&order.PaymentMethod,
		&pricing,
		&order.CreatedAt,
		&order.PointsEarned,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(customer, &order.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(address, &order.Address); err != nil {
		return nil, fmt.Errorf("unmarshal address: %w", err)
	}
	if err := json.Unmarshal(pricing, &order.Pricing); err != nil {
		return nil, fmt.Errorf("unmarshal pricing: %w", err)
	}
	order.Customer.UserID = userID.String
	return &order, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

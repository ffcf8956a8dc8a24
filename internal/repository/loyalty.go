package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type LoyaltyBalance struct {
	UserID         string `json:"user_id"`
	Balance        int64  `json:"balance"`
	LifetimePoints int64  `json:"lifetime_points"`
}

// AddLoyaltyPoints credits points earned by an order. Each order is credited at most once;
// a repeat returns ErrAlreadyCredited.
func (r *PostgresRepository) AddLoyaltyPoints(ctx context.Context, userID, orderID string, points int64) error {
	if points < 0 {
		return fmt.Errorf("negative loyalty points: %d", points)
	}
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", orderID, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO loyalty_ledger (user_id, order_id, points) VALUES ($1, $2, $3)`,
		userID, oid, points)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyCredited
		}
		return fmt.Errorf("insert loyalty ledger: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO loyalty_accounts (user_id, balance, lifetime_points, updated_at)
		 VALUES ($1, $2, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE
		 SET balance = loyalty_accounts.balance + EXCLUDED.balance,
		     lifetime_points = loyalty_accounts.lifetime_points + EXCLUDED.lifetime_points,
		     updated_at = NOW()`,
		userID, points)
	if err != nil {
		return fmt.Errorf("upsert loyalty account: %w", err)
	}

	return tx.Commit()
}

// GetLoyaltyBalance returns a zero balance for users that never earned points.
func (r *PostgresRepository) GetLoyaltyBalance(ctx context.Context, userID string) (*LoyaltyBalance, error) {
	balance := &LoyaltyBalance{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`SELECT balance, lifetime_points FROM loyalty_accounts WHERE user_id = $1`, userID,
	).Scan(&balance.Balance, &balance.LifetimePoints)
	if errors.Is(err, sql.ErrNoRows) {
		return balance, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query loyalty balance: %w", err)
	}
	return balance, nil
}

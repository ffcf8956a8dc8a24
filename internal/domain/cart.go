package domain

import "time"

// SessionCart is the persisted form of a shopper's cart, keyed by session.
type SessionCart struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *SessionCart) Clone() *SessionCart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = CloneItems(c.Items)
	return &cp
}

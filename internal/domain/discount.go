package domain

import (
	"fmt"
	"strings"
	"time"
)

// CodeValidity is how long a generated discount code stays usable.
const CodeValidity = 30 * 24 * time.Hour

type CodeType string

const (
	CodeTypeNewsletter CodeType = "newsletter"
	CodeTypeExitIntent CodeType = "exit-intent"
	CodeTypeLoyalty    CodeType = "loyalty"
	CodeTypeReferral   CodeType = "referral"
)

var codePrefixes = map[CodeType]string{
	CodeTypeNewsletter: "NEWS",
	CodeTypeExitIntent: "EXIT",
	CodeTypeLoyalty:    "LOYAL",
	CodeTypeReferral:   "REF",
}

// Prefix returns the code prefix issued for the type.
func (t CodeType) Prefix() (string, bool) {
	p, ok := codePrefixes[t]
	return p, ok
}

func (t CodeType) String() string {
	return string(t)
}

func ParseCodeType(s string) (CodeType, error) {
	t := CodeType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := codePrefixes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCodeType, s)
	}
	return t, nil
}

// Messages returned verbatim to the UI by validation.
const (
	MessageCodeApplied   = "Discount code applied"
	MessageCodeInvalid   = "Invalid discount code"
	MessageCodeExpired   = "This discount code has expired"
	MessageCodeExhausted = "This discount code has already been used"
)

// DiscountCode is a percentage-off voucher with an expiry and a usage cap.
type DiscountCode struct {
	Code       string    `json:"code" bson:"code"`
	Percentage int       `json:"percentage" bson:"percentage"`
	Type       CodeType  `json:"type" bson:"type"`
	MaxUses    int       `json:"max_uses" bson:"max_uses"`
	UsedCount  int       `json:"used_count" bson:"used_count"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt  time.Time `json:"expires_at" bson:"expires_at"`
}

// NormalizeCode is the canonical stored form used for case-insensitive matching.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c *DiscountCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func (c *DiscountCode) IsExhausted() bool {
	return c.UsedCount >= c.MaxUses
}

func (c *DiscountCode) IsRedeemable(now time.Time) bool {
	return !c.IsExpired(now) && !c.IsExhausted()
}

// Check evaluates the code at now without changing it.
func (c *DiscountCode) Check(now time.Time) ValidationResult {
	switch {
	case c.IsExpired(now):
		return ValidationResult{Valid: false, Message: MessageCodeExpired}
	case c.IsExhausted():
		return ValidationResult{Valid: false, Message: MessageCodeExhausted}
	default:
		return ValidationResult{Valid: true, Percentage: c.Percentage, Message: MessageCodeApplied}
	}
}

type ValidationResult struct {
	Valid      bool   `json:"valid"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

package loyalty

import "github.com/shopspring/decimal"

// DefaultRate is the currency amount that earns one point.
const DefaultRate = 10

type Accrual struct {
	rate decimal.Decimal
}

// NewAccrual returns an accrual at rate currency units per point. Non-positive rates use DefaultRate.
func NewAccrual(rate int) *Accrual {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Accrual{rate: decimal.NewFromInt(int64(rate))}
}

func (a *Accrual) Rate() int64 {
	return a.rate.IntPart()
}

// PointsEarned is floor(total / rate). Only call it with a finalized order total.
func (a *Accrual) PointsEarned(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return total.Div(a.rate).Floor().IntPart()
}

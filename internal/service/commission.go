package service

import "settlement/internal/money"

// CommissionCalculator splits a received amount between company commission
// and captain earnings. All methods are pure.
type CommissionCalculator struct{}

// NewCommissionCalculator creates a new CommissionCalculator.
func NewCommissionCalculator() *CommissionCalculator {
	return &CommissionCalculator{}
}

// ProcessingFee computes the fee deducted before captain earnings:
// fixed fee + received × percentage fee, rounded to 2 decimals.
func (c *CommissionCalculator) ProcessingFee(received float64, settings Settings) float64 {
	return money.Round2(money.Add(settings.FixedFee, money.Mul2(received, settings.PercentageFee)))
}

// Compute returns the company commission and captain earnings for a
// received amount. Commission is received × rate rounded half-up to 2
// decimals. Earnings are the remainder after commission and fee, floored at
// zero: a shortfall is absorbed by the company, never turned into captain
// debt.
func (c *CommissionCalculator) Compute(received, commissionRate, processingFee float64) (commission, earnings float64) {
	commission = money.Mul2(received, commissionRate)
	earnings = money.Sub(received, commission, processingFee)
	if earnings < 0 {
		earnings = 0
	}
	return commission, earnings
}

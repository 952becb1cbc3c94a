// Package money performs monetary arithmetic on exact decimals so that
// repeated save/reload cycles never accumulate float drift. All amounts in
// the system are rounded here, once, at the boundary.
package money

import "github.com/shopspring/decimal"

// Round2 rounds an amount to 2 decimal places using round-half-up.
// Re-rounding an already-rounded amount is a no-op.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Mul2 multiplies two amounts and rounds the product to 2 decimal places.
func Mul2(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).Float64()
	return f
}

// Sub subtracts b and c from a exactly, without intermediate rounding.
func Sub(a, b, c float64) float64 {
	f, _ := decimal.NewFromFloat(a).
		Sub(decimal.NewFromFloat(b)).
		Sub(decimal.NewFromFloat(c)).
		Float64()
	return f
}

// Add sums two amounts exactly.
func Add(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Float64()
	return f
}

// Package currency converts Thai baht amounts to their Indian rupee
// equivalent for display. The rate is a fixed trip-wide constant; this is
// not a multi-currency system.
package currency

import "github.com/shopspring/decimal"

// DefaultRate is the display conversion rate (1 THB ≈ 2.4 INR).
const DefaultRate = 2.4

// Converter converts THB amounts using a fixed exchange rate.
type Converter struct {
	rate decimal.Decimal
}

// NewConverter creates a converter for the given THB→INR rate.
func NewConverter(rate float64) *Converter {
	return &Converter{rate: decimal.NewFromFloat(rate)}
}

// ToINR returns the rupee equivalent of a baht amount, rounded to the
// nearest whole rupee.
func (c *Converter) ToINR(amountThb float64) float64 {
	inr := decimal.NewFromFloat(amountThb).Mul(c.rate)
	f, _ := inr.Round(0).Float64()
	return f
}

// INRAt converts using an explicit per-topup rate rather than the fixed one.
func INRAt(amountThb, rate float64) float64 {
	inr := decimal.NewFromFloat(amountThb).Mul(decimal.NewFromFloat(rate))
	f, _ := inr.Round(0).Float64()
	return f
}

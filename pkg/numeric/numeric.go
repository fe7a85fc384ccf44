// Package numeric holds the exchange rounding rules for prices, share amounts and costs.
package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

// Exchange bounds and precision.
const (
	MinPrice       = 0.001
	MaxPrice       = 0.999
	PriceDecimals  = 2
	ShareDecimals  = 4
	CostDecimals   = 2
	AmountDecimals = 6 // raw USDC and conditional token units

	// Extremes of the 2-decimal tick grid inside (MinPrice, MaxPrice).
	MinTickPrice = 0.01
	MaxTickPrice = 0.99

	// DustThreshold is the amount below which a remaining size counts as zero.
	DustThreshold = 1e-4
)

// ClampPrice bounds p to [MinPrice, MaxPrice]. NaN maps to MinPrice.
func ClampPrice(p float64) float64 {
	if math.IsNaN(p) || p < MinPrice {
		return MinPrice
	}
	if p > MaxPrice {
		return MaxPrice
	}
	return p
}

// FormatPrice clamps p and rounds it to the 2-decimal tick grid, staying inside (MinPrice, MaxPrice).
func FormatPrice(p float64) float64 {
	rounded := decimal.NewFromFloat(ClampPrice(p)).Round(PriceDecimals).InexactFloat64()

	// 0.001 rounds to 0.00 and 0.999 to 1.00; pull both back onto the grid.
	if rounded < MinTickPrice {
		return MinTickPrice
	}
	if rounded > MaxTickPrice {
		return MaxTickPrice
	}
	return rounded
}

// FloorShares truncates s toward zero-or-below at 4 decimals. Negative and NaN inputs yield 0.
func FloorShares(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return 0
	}
	return decimal.NewFromFloat(s).RoundFloor(ShareDecimals).InexactFloat64()
}

// OrderCost is shares × price rounded up to the cent.
func OrderCost(shares float64, price float64) float64 {
	if shares <= 0 || price <= 0 {
		return 0
	}
	cost := decimal.NewFromFloat(shares).Mul(decimal.NewFromFloat(price))
	return cost.RoundCeil(CostDecimals).InexactFloat64()
}

// Notional is shares × price truncated to 4 decimals, the amount precision of signed orders.
func Notional(shares float64, price float64) float64 {
	if shares <= 0 || price <= 0 {
		return 0
	}
	n := decimal.NewFromFloat(shares).Mul(decimal.NewFromFloat(price))
	return n.RoundFloor(ShareDecimals).InexactFloat64()
}

// FeeMultiplier converts a basis-point fee rate into a cost multiplier.
func FeeMultiplier(feeBps float64) float64 {
	if feeBps <= 0 {
		return 1
	}
	return 1 + feeBps/10000
}

// IsDust reports whether x is too small to act on.
func IsDust(x float64) bool {
	return x < DustThreshold
}

// ExceedsTolerance reports whether price drifted from reference by more than tolerance.
// A drift equal to the tolerance is accepted; non-finite inputs always exceed it.
func ExceedsTolerance(price float64, reference float64, tolerance float64) bool {
	for _, v := range []float64{price, reference, tolerance} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}

	drift := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(reference)).Abs()
	return drift.GreaterThan(decimal.NewFromFloat(tolerance))
}

// ToRawAmount converts a decimal amount to the exchange's 6-decimal integer representation.
func ToRawAmount(x float64) string {
	if x <= 0 {
		return "0"
	}
	return decimal.NewFromFloat(x).Shift(AmountDecimals).Floor().String()
}

// ParsePositive parses s and reports whether it is a finite number greater than zero.
func ParsePositive(s string) (float64, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	v := d.InexactFloat64()
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// Package core holds the domain types shared by the insights engine, the
// record store and the delivery surfaces.
//
// This file contains amount coercion and display formatting. Amounts are
// float64 currency units end to end; the classifier guards comparisons with
// a small epsilon instead of converting to minor units.
package core

import (
	"fmt"
	"math"
)

// FiniteAmount coerces NaN and infinities to 0 so a single malformed record
// never aborts a batch.
func FiniteAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatGBP renders an amount as a pound string with two decimals, e.g.
// "£12.34" or "-£0.50". Rounding is half-up on the third decimal.
func FormatGBP(amount float64) string {
	amount = FiniteAmount(amount)
	neg := amount < 0
	if neg {
		amount = -amount
	}
	pence := int64(math.Round(amount * 100))
	s := fmt.Sprintf("£%d.%02d", pence/100, pence%100)
	if neg {
		return "-" + s
	}
	return s
}

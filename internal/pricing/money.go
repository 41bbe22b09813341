package pricing

import "github.com/shopspring/decimal"

// All internal arithmetic runs on integer minor units (cents) and basis
// points. Rounding is half-up, applied once per stage; decimal currency only
// appears at the API boundary.

// roundDiv divides with half-away-from-zero rounding. Negative amounts occur
// when a below-cost override is allowed through and the margin goes negative.
func roundDiv(amount, divisor int64) int64 {
	if divisor <= 0 {
		return 0
	}
	if amount < 0 {
		return -((-amount + divisor/2) / divisor)
	}
	return (amount + divisor/2) / divisor
}

// applyBps scales an amount by a basis-point fraction, half-up.
func applyBps(amount, bps int64) int64 {
	return roundDiv(amount*bps, 10000)
}

// FormatCents renders integer cents as a fixed two-decimal currency string.
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// FormatBps renders basis points as a percentage string, e.g. 1550 -> "15.50".
func FormatBps(bps int64) string {
	return decimal.NewFromInt(bps).Div(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

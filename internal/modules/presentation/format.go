// Package presentation turns projection results into display-ready values: rounded table
// rows, formatted KPI strings and chart series. It never feeds rounded values back into a
// computation.
package presentation

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// RoundHalfEven rounds v to the nearest integer, ties to even.
// NaN and infinities round to 0.
func RoundHalfEven(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).RoundBank(0).IntPart()
}

// Yen formats v as whole yen with thousands separators, e.g. ¥1,234,567.
func Yen(v float64) string {
	return "¥" + humanize.Comma(RoundHalfEven(v))
}

// Units formats a unit count as a grouped integer.
func Units(v float64) string {
	return humanize.Comma(RoundHalfEven(v))
}

// Count formats an exact integer count with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// Percent formats a fraction as a percentage with the given number of decimals.
func Percent(p float64, decimals int) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	return fmt.Sprintf("%.*f%%", decimals, p*100)
}

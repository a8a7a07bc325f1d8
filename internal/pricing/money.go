package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

var decimalTwo = decimal.NewFromInt(2)

// finite clamps NaN and infinities to zero so a single malformed value
// cannot poison a basket total.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func toDecimal(v float64) decimal.Decimal {
	return decimal.NewFromFloat(finite(v))
}

// roundWon rounds to whole won, half away from zero.
func roundWon(v float64) float64 {
	return toDecimal(v).Round(0).InexactFloat64()
}

// roundCents rounds to two decimals, half away from zero.
func roundCents(v float64) float64 {
	return toDecimal(v).Round(2).InexactFloat64()
}

// ceilUnits returns ceil(num/unit) computed in decimal, so that
// (0.8-0.5)/0.1 is exactly 3. num is normalised to six decimals first.
// A non-positive unit yields zero.
func ceilUnits(num, unit float64) float64 {
	if !(unit > 0) {
		return 0
	}
	return toDecimal(num).Round(6).Div(toDecimal(unit)).Ceil().InexactFloat64()
}

// sum adds values after clamping each one.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += finite(v)
	}
	return total
}

package pricing

// Ratios returns each value's share of their sum. When the sum is not
// positive every ratio is zero.
func Ratios(values []float64) []float64 {
	ratios := make([]float64, len(values))
	total := sum(values)
	if !(total > 0) {
		return ratios
	}
	for i, v := range values {
		ratios[i] = finite(v) / total
	}
	return ratios
}

// Distribute splits total by ratios, rounding each share to whole won on
// its own. The shares may drift from total by rounding, at most half a won
// per share.
func Distribute(total float64, ratios []float64) []float64 {
	shares := make([]float64, len(ratios))
	for i, r := range ratios {
		shares[i] = roundWon(total * r)
	}
	return shares
}

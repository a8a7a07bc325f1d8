package pricing

import (
	"sort"
)

// RateBracket is one published price point: rate charged up to CBM.
type RateBracket struct {
	CBM  float64 `json:"cbm" yaml:"cbm"`
	Rate float64 `json:"rate" yaml:"rate"`
}

// RateTable is the bracket list for one rate type in one currency.
type RateTable struct {
	Type     string        `json:"type"`
	Currency Currency      `json:"currency"`
	Brackets []RateBracket `json:"brackets"`
}

// MatchKind records how a quantity was resolved against a table.
type MatchKind string

const (
	MatchExact        MatchKind = "exact"
	MatchBracket      MatchKind = "bracket"
	MatchExtrapolated MatchKind = "extrapolated"
)

// ResolvedRate is the rate charged for a billable quantity, in the
// table's currency.
type ResolvedRate struct {
	Quantity        float64   `json:"quantity"`
	AppliedQuantity float64   `json:"appliedQuantity"`
	Rate            float64   `json:"rate"`
	Currency        Currency  `json:"currency,omitempty"`
	Match           MatchKind `json:"match"`
}

// RoundUpToHalf rounds q up to the next 0.5 step. q is normalised to nine
// decimals first so float noise like 0.5000000000000001 stays at 0.5 while
// a real excess such as 0.5000001 still moves to the next step.
func RoundUpToHalf(q float64) float64 {
	d := toDecimal(q).Round(9)
	return d.Mul(decimalTwo).Ceil().Div(decimalTwo).InexactFloat64()
}

// ResolveShippingRate resolves q against brackets. The second return value
// is false when there are no brackets; callers treat that as a zero cost.
//
// Resolution order: exact bracket, then the smallest bracket above the
// applied quantity, then linear extrapolation from the last bracket.
func ResolveShippingRate(brackets []RateBracket, q float64) (ResolvedRate, bool) {
	sorted := SortBrackets(brackets)
	if len(sorted) == 0 {
		return ResolvedRate{}, false
	}

	applied := RoundUpToHalf(q)
	resolved := ResolvedRate{Quantity: q, AppliedQuantity: applied}

	for _, b := range sorted {
		if b.CBM == applied {
			resolved.Rate = b.Rate
			resolved.Match = MatchExact
			return resolved, true
		}
		if b.CBM > applied {
			resolved.Rate = b.Rate
			resolved.Match = MatchBracket
			return resolved, true
		}
	}

	last := sorted[len(sorted)-1]
	resolved.Match = MatchExtrapolated
	if !(last.CBM > 0) {
		resolved.Rate = last.Rate
		return resolved, true
	}
	unitRate := last.Rate / last.CBM
	resolved.Rate = roundCents(unitRate * applied)
	return resolved, true
}

// Resolve resolves q against the table and tags the result with the
// table's currency.
func (t RateTable) Resolve(q float64) (ResolvedRate, bool) {
	resolved, ok := ResolveShippingRate(t.Brackets, q)
	if ok {
		resolved.Currency = t.Currency
	}
	return resolved, ok
}

// SortBrackets returns a copy of brackets sorted ascending by CBM with
// duplicate CBM values removed; the first occurrence wins.
func SortBrackets(brackets []RateBracket) []RateBracket {
	sorted := make([]RateBracket, 0, len(brackets))
	seen := make(map[float64]struct{}, len(brackets))
	for _, b := range brackets {
		if _, dup := seen[b.CBM]; dup {
			continue
		}
		seen[b.CBM] = struct{}{}
		sorted = append(sorted, b)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CBM < sorted[j].CBM })
	return sorted
}

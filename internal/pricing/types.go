// Package pricing computes the landed cost, in Korean won, of importing
// products from Chinese factories.
//
// Every function in this package is pure: inputs are passed in explicitly
// and a fresh result is built on every call.
package pricing

// Currency identifies the currency an amount or a rate table is quoted in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCNY Currency = "CNY"
	CurrencyKRW Currency = "KRW"
)

// WeightUnit is the unit a product's unit weight is expressed in.
type WeightUnit string

const (
	WeightKg   WeightUnit = "kg"
	WeightGram WeightUnit = "g"
)

// Dimensions are the physical outer dimensions of one unit, in centimetres.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Product is one line of the import basket.
type Product struct {
	ID              string
	Name            string
	Quantity        int
	UnitPrice       float64
	Currency        Currency
	Dimensions      Dimensions
	UnitWeight      float64
	WeightUnit      WeightUnit
	BasicTariffRate float64
	FTATariffRate   float64
	UseFTA          bool
}

// Valid reports whether the product can take part in a calculation.
// Invalid products are filtered out, never rejected.
func (p Product) Valid() bool {
	if p.Quantity <= 0 || !(p.UnitPrice > 0) {
		return false
	}
	if !(p.Dimensions.Width > 0) || !(p.Dimensions.Height > 0) || !(p.Dimensions.Depth > 0) {
		return false
	}
	return p.Currency == CurrencyUSD || p.Currency == CurrencyCNY
}

// ExchangeRates holds KRW per one unit of each foreign currency.
type ExchangeRates struct {
	USD float64 `json:"usd" yaml:"usd"`
	CNY float64 `json:"cny" yaml:"cny"`
}

// ToKRW converts amount into won without rounding. Unknown currencies
// convert to zero.
func (r ExchangeRates) ToKRW(amount float64, c Currency) float64 {
	switch c {
	case CurrencyUSD:
		return finite(amount * r.USD)
	case CurrencyCNY:
		return finite(amount * r.CNY)
	case CurrencyKRW:
		return finite(amount)
	default:
		return 0
	}
}

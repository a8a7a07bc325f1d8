package pricing

// InlandShippingUSD prices factory-to-port trucking for rTon, in USD
// rounded to cents.
func InlandShippingUSD(rTon float64, s InlandSettings) float64 {
	if !(rTon > 0) {
		return 0
	}
	return roundCents(rTon * s.RatePerRTon)
}

// DomesticShipping prices port-to-warehouse delivery: the base fee covers
// up to BaseCBM, every started ExtraUnit above it costs ExtraRate.
func DomesticShipping(cbm float64, s DomesticSettings) float64 {
	if cbm <= s.BaseCBM {
		return s.BaseFee
	}
	return s.BaseFee + ceilUnits(cbm-s.BaseCBM, s.ExtraUnit)*s.ExtraRate
}

// ThreePLCost prices 3PL handling per started unit.
func ThreePLCost(cbm float64, s ThreePLSettings) float64 {
	if !(cbm > 0) {
		return 0
	}
	return ceilUnits(cbm, s.Unit) * s.RatePerUnit
}

// ContainerTruckingCost prices trucking one container over distanceKm.
func ContainerTruckingCost(distanceKm float64, s ContainerInlandSettings) float64 {
	cost := roundWon(distanceKm * s.PerKmRate)
	if cost < s.MinCost {
		return s.MinCost
	}
	return cost
}

// PaymentMethod is the way the factory is paid.
type PaymentMethod string

const (
	PaymentWire PaymentMethod = "wire"
	PaymentCard PaymentMethod = "card"
)

// RemittanceFee is the payment fee for a payment basis.
type RemittanceFee struct {
	Basis  float64       `json:"basis"`
	Fee    float64       `json:"fee"`
	Method PaymentMethod `json:"method"`
}

// CalculateRemittance applies the fee tiers: at or above the threshold the
// payment is wired for a fixed fee; below it a card fee is charged.
func CalculateRemittance(basis float64, s RemittanceSettings) RemittanceFee {
	basis = finite(basis)
	if basis >= s.Threshold {
		return RemittanceFee{Basis: basis, Fee: s.FixedFee, Method: PaymentWire}
	}
	return RemittanceFee{
		Basis:  basis,
		Fee:    roundWon(basis * s.CardPercent / 100),
		Method: PaymentCard,
	}
}

package pricing

import "math"

// Volume is the billable size of one product line.
type Volume struct {
	UnitCBM        float64 `json:"unitCbm"`
	TotalCBM       float64 `json:"totalCbm"`
	UnitWeightKg   float64 `json:"unitWeightKg"`
	TotalWeightKg  float64 `json:"totalWeightKg"`
	WeightTon      float64 `json:"weightTon"`
	MeasurementTon float64 `json:"measurementTon"`
	RTon           float64 `json:"rTon"`
	// IsWeightBased is informational; RTon already holds the larger ton.
	IsWeightBased bool `json:"isWeightBased"`
}

// CalculateCBM returns the unit and total volume in cubic metres.
func CalculateCBM(d Dimensions, quantity int) (unit, total float64) {
	unit = d.Width * d.Height * d.Depth / 1_000_000
	return unit, unit * float64(quantity)
}

// ToKilograms converts a weight to kilograms. An empty unit means kilograms.
func ToKilograms(weight float64, unit WeightUnit) float64 {
	if unit == WeightGram {
		return weight / 1000
	}
	return weight
}

// CalculateRTon computes the revenue ton of a product line:
// max(weight ton, measurement ton). Nothing is rounded here. A weight that
// is not a finite number counts as unset.
func CalculateRTon(d Dimensions, quantity int, weight float64, unit WeightUnit) Volume {
	unitCBM, totalCBM := CalculateCBM(d, quantity)
	unitKg := finite(ToKilograms(weight, unit))
	totalKg := unitKg * float64(quantity)
	weightTon := totalKg / 1000

	return Volume{
		UnitCBM:        unitCBM,
		TotalCBM:       totalCBM,
		UnitWeightKg:   unitKg,
		TotalWeightKg:  totalKg,
		WeightTon:      weightTon,
		MeasurementTon: totalCBM,
		RTon:           math.Max(weightTon, totalCBM),
		IsWeightBased:  weightTon > totalCBM,
	}
}

// Volume returns the billable volume of p.
func (p Product) Volume() Volume {
	return CalculateRTon(p.Dimensions, p.Quantity, p.UnitWeight, p.WeightUnit)
}

package pricing

// VATRate is the Korean import VAT rate.
const VATRate = 0.10

// TariffAmount is the customs duty levied on a taxable base.
type TariffAmount struct {
	TaxableBase float64 `json:"taxableBase"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// VATAmount is the VAT levied on the tariff-inclusive base.
type VATAmount struct {
	Base   float64 `json:"base"`
	Amount float64 `json:"amount"`
}

// CalculateTariff applies ratePercent to the product price plus the other
// costs that belong in the customs value.
func CalculateTariff(productPriceKRW, allocatedOtherCosts, ratePercent float64) TariffAmount {
	base := finite(productPriceKRW) + finite(allocatedOtherCosts)
	return TariffAmount{
		TaxableBase: base,
		Rate:        ratePercent,
		Amount:      roundWon(base * ratePercent / 100),
	}
}

// CalculateVAT levies VAT on taxableBase + tariff.
func CalculateVAT(taxableBase, tariff float64) VATAmount {
	base := finite(taxableBase) + finite(tariff)
	return VATAmount{Base: base, Amount: roundWon(base * VATRate)}
}

// TaxLine is the full duty cascade for one tariff rate.
type TaxLine struct {
	Tariff TariffAmount `json:"tariff"`
	VAT    VATAmount    `json:"vat"`
	Total  float64      `json:"total"`
}

func newTaxLine(priceKRW, otherCosts, ratePercent float64) TaxLine {
	tariff := CalculateTariff(priceKRW, otherCosts, ratePercent)
	vat := CalculateVAT(tariff.TaxableBase, tariff.Amount)
	return TaxLine{Tariff: tariff, VAT: vat, Total: tariff.Amount + vat.Amount}
}

// TaxComparison carries the basic and FTA cascades side by side so callers
// can show what the FTA rate saves, whichever one is applied.
type TaxComparison struct {
	Basic   TaxLine `json:"basic"`
	FTA     TaxLine `json:"fta"`
	UseFTA  bool    `json:"useFta"`
	Applied TaxLine `json:"applied"`
	Savings float64 `json:"savings"`
}

// CompareTariffs computes both cascades and selects the applied one.
func CompareTariffs(priceKRW, otherCosts, basicRate, ftaRate float64, useFTA bool) TaxComparison {
	cmp := TaxComparison{
		Basic:  newTaxLine(priceKRW, otherCosts, basicRate),
		FTA:    newTaxLine(priceKRW, otherCosts, ftaRate),
		UseFTA: useFTA,
	}
	cmp.Applied = cmp.Basic
	if useFTA {
		cmp.Applied = cmp.FTA
	}
	cmp.Savings = cmp.Basic.Total - cmp.FTA.Total
	return cmp
}

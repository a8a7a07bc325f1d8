package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// Freight selects the freight mode and, for FCL, the delivery after port
// arrival and the trucking distance.
type Freight struct {
	Mode       FreightMode
	Delivery   DeliveryMethod
	DistanceKm float64
}

// Input is everything one calculation needs. Settings may be nil.
type Input struct {
	Products      []Product
	FactorySlots  []FactorySlot
	RateTable     RateTable
	Settings      *CostSettings
	ExchangeRates ExchangeRates
	Freight       Freight
	Containers    []ContainerType
}

// SharedCosts are the basket-level shipping and payment costs, in won.
type SharedCosts struct {
	Inland        float64 `json:"inland"`
	InlandUSD     float64 `json:"inlandUsd"`
	International float64 `json:"international"`
	Domestic      float64 `json:"domestic"`
	ThreePL       float64 `json:"threePL"`
	Remittance    float64 `json:"remittance"`
}

// Total returns the sum of every shared cost in won.
func (s SharedCosts) Total() float64 {
	return s.Inland + s.International + s.Domestic + s.ThreePL + s.Remittance
}

// ProductBreakdown is the landed cost of one product line, in won.
type ProductBreakdown struct {
	ProductID    string        `json:"productId"`
	Name         string        `json:"name"`
	Quantity     int           `json:"quantity"`
	Volume       Volume        `json:"volume"`
	PriceForeign float64       `json:"priceForeign"`
	Currency     Currency      `json:"currency"`
	Price        float64       `json:"price"`
	FactoryCost  float64       `json:"factoryCost"`
	Tax          TaxComparison `json:"tax"`
	Tariff       float64       `json:"tariff"`
	VAT          float64       `json:"vat"`
	CBMRatio     float64       `json:"cbmRatio"`
	Shared       SharedCosts   `json:"shared"`
	PaymentBasis float64       `json:"paymentBasis"`
	Total        float64       `json:"total"`
	UnitCost     float64       `json:"unitCost"`
}

// Totals are the basket-level sums. Shared holds the basket amounts before
// distribution; Total is the sum of the product totals.
type Totals struct {
	Products      int           `json:"products"`
	Excluded      int           `json:"excluded"`
	Quantity      int           `json:"quantity"`
	TotalCBM      float64       `json:"totalCbm"`
	TotalWeightKg float64       `json:"totalWeightKg"`
	TotalRTon     float64       `json:"totalRTon"`
	Price         float64       `json:"price"`
	FactoryCost   float64       `json:"factoryCost"`
	Tariff        float64       `json:"tariff"`
	VAT           float64       `json:"vat"`
	FTASavings    float64       `json:"ftaSavings"`
	Shared        SharedCosts   `json:"shared"`
	Remittance    RemittanceFee `json:"remittance"`
	Factories     []SlotTotal   `json:"factories"`
	Rate          *ResolvedRate `json:"rate,omitempty"`
	Total         float64       `json:"total"`
}

// Result is the full breakdown of one calculation.
type Result struct {
	Mode      FreightMode        `json:"mode"`
	Delivery  DeliveryMethod     `json:"delivery,omitempty"`
	Products  []ProductBreakdown `json:"products"`
	Totals    Totals             `json:"totals"`
	Factory   FactoryAllocation  `json:"factory"`
	Container *ContainerPlan     `json:"container,omitempty"`
	Settings  Settings           `json:"settings"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// Calculate computes the landed cost of the basket. It returns nil when
// in holds no valid product; every other input produces a result, with
// degraded conditions listed in Result.Warnings.
func Calculate(in Input) *Result {
	products, excluded := validProducts(in.Products)
	if len(products) == 0 {
		return nil
	}

	res := &Result{Mode: FreightLCL}
	settings, err := ResolveSettings(in.Settings)
	if err != nil {
		res.Warnings = append(res.Warnings, errorMessages(err)...)
	}
	res.Settings = settings
	rates := in.ExchangeRates

	volumes := make([]Volume, len(products))
	rTons := make([]float64, len(products))
	totals := Totals{Products: len(products), Excluded: excluded}
	for i, p := range products {
		volumes[i] = p.Volume()
		rTons[i] = finite(volumes[i].RTon)
		totals.Quantity += p.Quantity
		totals.TotalCBM += finite(volumes[i].TotalCBM)
		totals.TotalWeightKg += finite(volumes[i].TotalWeightKg)
		totals.TotalRTon += rTons[i]
	}

	shared := SharedCosts{}
	shared.InlandUSD = InlandShippingUSD(totals.TotalRTon, settings.Inland)
	shared.Inland = roundWon(rates.ToKRW(shared.InlandUSD, CurrencyUSD))

	lclInternational := func(rTon float64) (float64, *ResolvedRate) {
		resolved, ok := in.RateTable.Resolve(rTon)
		if !ok {
			return 0, nil
		}
		return roundWon(rates.ToKRW(resolved.Rate, resolved.Currency)), &resolved
	}

	var plan ContainerPlan
	fcl := in.Freight.Mode == FreightFCL
	if fcl && len(in.Containers) == 0 {
		res.Warnings = append(res.Warnings, "no container types available, falling back to LCL")
		fcl = false
	}
	if fcl {
		var ok bool
		plan, ok = OptimizeContainers(ContainerRequest{
			RTon:       totals.TotalRTon,
			WeightKg:   totals.TotalWeightKg,
			DistanceKm: in.Freight.DistanceKm,
			Types:      in.Containers,
			Inland:     settings.ContainerInland,
			Rates:      rates,
			Overflow: func(overflow float64) OverflowCost {
				intl, _ := lclInternational(overflow)
				return OverflowCost{
					International: intl,
					Domestic:      DomesticShipping(overflow, settings.Domestic),
				}
			},
		})
		if !ok {
			res.Warnings = append(res.Warnings, "no usable container types, falling back to LCL")
			fcl = false
		}
	}

	if fcl {
		res.Mode = FreightFCL
		res.Delivery = in.Freight.Delivery
		if res.Delivery == "" {
			res.Delivery = DeliveryDirect
		}
		if len(plan.Dropped) > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("container catalogue has more than %d types, ignored %s", MaxContainerTypes, strings.Join(plan.Dropped, ", ")))
		}
		for _, code := range plan.InlandFallback {
			res.Warnings = append(res.Warnings, fmt.Sprintf("no inland trucking settings for container %s, using the highest configured rate", code))
		}
		res.Container = &plan
		if plan.Selected.HasOverflow && len(in.RateTable.Brackets) == 0 {
			res.Warnings = append(res.Warnings, "no shipping rate table, container overflow international cost treated as 0")
		}
		shared.International = plan.Selected.EquipmentCost + plan.Selected.Overflow.International
		shared.Domestic = plan.Selected.TruckingCost + plan.Selected.Overflow.Domestic
		if res.Delivery == DeliveryVia3PL {
			shared.ThreePL = ThreePLCost(totals.TotalRTon, settings.ThreePL)
		}
	} else {
		intl, resolved := lclInternational(totals.TotalRTon)
		if resolved == nil {
			res.Warnings = append(res.Warnings, "no shipping rate table, international shipping treated as 0")
		}
		totals.Rate = resolved
		shared.International = intl
		shared.Domestic = DomesticShipping(totals.TotalRTon, settings.Domestic)
		shared.ThreePL = ThreePLCost(totals.TotalRTon, settings.ThreePL)
	}

	factory := AllocateFactoryCosts(in.FactorySlots, products, rates)
	for _, item := range factory.Items {
		if item.Unallocated {
			res.Warnings = append(res.Warnings, fmt.Sprintf("factory cost %q of slot %q has no linked product", item.ItemName, item.SlotID))
		}
	}
	res.Factory = factory
	totals.FactoryCost = factory.Total
	totals.Factories = factory.Slots

	ratios := Ratios(rTons)
	inlandShares := Distribute(shared.Inland, ratios)
	intlShares := Distribute(shared.International, ratios)
	domesticShares := Distribute(shared.Domestic, ratios)
	threePLShares := Distribute(shared.ThreePL, ratios)

	prices := make([]float64, len(products))
	bases := make([]float64, len(products))
	for i, p := range products {
		prices[i] = roundWon(rates.ToKRW(p.UnitPrice*float64(p.Quantity), p.Currency))
		bases[i] = prices[i] + factory.PerProduct[i] + inlandShares[i]
	}
	totals.Remittance = CalculateRemittance(sum(bases), settings.Remittance)
	shared.Remittance = totals.Remittance.Fee
	remittanceShares := Distribute(shared.Remittance, Ratios(bases))

	res.Products = make([]ProductBreakdown, len(products))
	for i, p := range products {
		tax := CompareTariffs(prices[i], factory.PerProduct[i], p.BasicTariffRate, p.FTATariffRate, p.UseFTA)
		pb := ProductBreakdown{
			ProductID:    p.ID,
			Name:         p.Name,
			Quantity:     p.Quantity,
			Volume:       volumes[i],
			PriceForeign: p.UnitPrice * float64(p.Quantity),
			Currency:     p.Currency,
			Price:        prices[i],
			FactoryCost:  factory.PerProduct[i],
			Tax:          tax,
			Tariff:       tax.Applied.Tariff.Amount,
			VAT:          tax.Applied.VAT.Amount,
			CBMRatio:     ratios[i],
			Shared: SharedCosts{
				Inland:        inlandShares[i],
				International: intlShares[i],
				Domestic:      domesticShares[i],
				ThreePL:       threePLShares[i],
				Remittance:    remittanceShares[i],
			},
			PaymentBasis: bases[i],
		}
		pb.Total = sum([]float64{pb.Price, pb.FactoryCost, pb.Tariff, pb.VAT, pb.Shared.Total()})
		pb.UnitCost = roundWon(pb.Total / float64(p.Quantity))
		res.Products[i] = pb

		totals.Price += pb.Price
		totals.Tariff += pb.Tariff
		totals.VAT += pb.VAT
		totals.FTASavings += tax.Savings
		totals.Total += pb.Total
	}

	totals.Shared = shared
	res.Totals = totals
	return res
}

func validProducts(products []Product) ([]Product, int) {
	valid := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Valid() {
			valid = append(valid, p)
		}
	}
	return valid, len(products) - len(valid)
}

// errorMessages flattens a joined error into one message per error.
func errorMessages(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}

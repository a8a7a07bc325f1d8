package pricing

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func twoProductInput() Input {
	return Input{
		Products: []Product{
			{
				ID: "p1", Name: "Lamp", Quantity: 100, UnitPrice: 10, Currency: CurrencyUSD,
				Dimensions:      Dimensions{Width: 20, Height: 20, Depth: 10},
				BasicTariffRate: 8, FTATariffRate: 0,
			},
			{
				ID: "p2", Name: "Shade", Quantity: 100, UnitPrice: 5, Currency: CurrencyUSD,
				Dimensions:      Dimensions{Width: 20, Height: 30, Depth: 10},
				BasicTariffRate: 8, FTATariffRate: 0, UseFTA: true,
			},
		},
		FactorySlots: []FactorySlot{{
			ID:    "f1",
			Name:  "Ningbo Lighting",
			Items: []FactoryCostItem{{Name: "mould", Amount: 1000, Currency: CurrencyCNY, ChargeType: ChargeOnce}},
		}},
		RateTable:     RateTable{Type: "lcl", Currency: CurrencyUSD, Brackets: halfAndOneTable()},
		ExchangeRates: testRates(),
	}
}

func TestCalculate_NoValidProductsReturnsNil(t *testing.T) {
	if got := Calculate(Input{}); got != nil {
		t.Fatalf("expected nil for an empty basket, got %+v", got)
	}

	in := twoProductInput()
	in.Products[0].Quantity = 0
	in.Products[1].Dimensions.Depth = 0
	if got := Calculate(in); got != nil {
		t.Fatalf("expected nil for an all-invalid basket, got %+v", got)
	}
}

func TestCalculate_TwoProductBasket(t *testing.T) {
	result := Calculate(twoProductInput())
	if result == nil {
		t.Fatalf("expected a result")
	}

	totals := result.Totals
	nearlyEqual(t, "totalRTon", totals.TotalRTon, 1)
	nearlyEqual(t, "inland", totals.Shared.Inland, 15_000)
	nearlyEqual(t, "international", totals.Shared.International, 110_000)
	nearlyEqual(t, "domestic", totals.Shared.Domestic, 100_000)
	nearlyEqual(t, "threePL", totals.Shared.ThreePL, 30_000)
	nearlyEqual(t, "remittance", totals.Shared.Remittance, 27_000)
	if totals.Remittance.Method != PaymentWire {
		t.Fatalf("payment method = %q, want wire", totals.Remittance.Method)
	}
	if totals.Rate == nil || totals.Rate.Match != MatchExact {
		t.Fatalf("expected an exact rate match, got %+v", totals.Rate)
	}

	lamp, shade := result.Products[0], result.Products[1]
	nearlyEqual(t, "lamp price", lamp.Price, 1_000_000)
	nearlyEqual(t, "lamp factory", lamp.FactoryCost, 100_000)
	nearlyEqual(t, "lamp tariff", lamp.Tariff, 88_000)
	nearlyEqual(t, "lamp vat", lamp.VAT, 118_800)
	nearlyEqual(t, "lamp ratio", lamp.CBMRatio, 0.4)
	nearlyEqual(t, "lamp international", lamp.Shared.International, 44_000)
	nearlyEqual(t, "lamp remittance", lamp.Shared.Remittance, 17_412)
	nearlyEqual(t, "lamp total", lamp.Total, 1_426_212)
	nearlyEqual(t, "lamp unit cost", lamp.UnitCost, 14_262)

	nearlyEqual(t, "shade tariff", shade.Tariff, 0)
	nearlyEqual(t, "shade vat", shade.VAT, 60_000)
	nearlyEqual(t, "shade savings", shade.Tax.Savings, 52_800)
	nearlyEqual(t, "shade remittance", shade.Shared.Remittance, 9_588)
	nearlyEqual(t, "shade total", shade.Total, 822_588)
	nearlyEqual(t, "shade unit cost", shade.UnitCost, 8_226)

	nearlyEqual(t, "basket total", totals.Total, 2_248_800)
	nearlyEqual(t, "factory total", totals.FactoryCost, 200_000)
	if len(result.Warnings) == 0 {
		t.Fatalf("expected a settings fallback warning")
	}
}

func TestCalculate_SharesStayWithinRoundingOfBasket(t *testing.T) {
	in := twoProductInput()
	in.Products = append(in.Products, Product{
		ID: "p3", Quantity: 7, UnitPrice: 3.3, Currency: CurrencyCNY,
		Dimensions: Dimensions{Width: 17, Height: 13, Depth: 11},
	})

	result := Calculate(in)
	var intl, domestic float64
	for _, p := range result.Products {
		intl += p.Shared.International
		domestic += p.Shared.Domestic
	}
	n := float64(len(result.Products))
	if math.Abs(intl-result.Totals.Shared.International) > n {
		t.Fatalf("international drift too large: %v vs %v", intl, result.Totals.Shared.International)
	}
	if math.Abs(domestic-result.Totals.Shared.Domestic) > n {
		t.Fatalf("domestic drift too large: %v vs %v", domestic, result.Totals.Shared.Domestic)
	}
}

func TestCalculate_InvalidProductsAreFiltered(t *testing.T) {
	in := twoProductInput()
	in.Products = append(in.Products, Product{ID: "broken", Quantity: 5})

	result := Calculate(in)
	if result.Totals.Products != 2 || result.Totals.Excluded != 1 {
		t.Fatalf("products=%d excluded=%d, want 2 and 1", result.Totals.Products, result.Totals.Excluded)
	}
	nearlyEqual(t, "basket total", result.Totals.Total, 2_248_800)
}

func TestCalculate_EmptyRateTableMeansZeroInternational(t *testing.T) {
	in := twoProductInput()
	in.RateTable = RateTable{}

	result := Calculate(in)
	nearlyEqual(t, "international", result.Totals.Shared.International, 0)
	if result.Totals.Rate != nil {
		t.Fatalf("expected no resolved rate")
	}
}

func TestCalculate_MalformedWeightIsClamped(t *testing.T) {
	in := twoProductInput()
	in.Products[0].UnitWeight = math.NaN()

	result := Calculate(in)
	if math.IsNaN(result.Totals.Total) || math.IsNaN(result.Products[0].Total) {
		t.Fatalf("NaN leaked into totals: %+v", result.Totals)
	}
	nearlyEqual(t, "totalWeightKg", result.Totals.TotalWeightKg, 0)
}

func fclInput(delivery DeliveryMethod) Input {
	in := twoProductInput()
	in.Products = []Product{{
		ID: "crate", Quantity: 20, UnitPrice: 100, Currency: CurrencyUSD,
		Dimensions:      Dimensions{Width: 100, Height: 100, Depth: 100},
		UnitWeight:      200,
		BasicTariffRate: 8,
	}}
	in.FactorySlots = nil
	in.Freight = Freight{Mode: FreightFCL, Delivery: delivery, DistanceKm: 100}
	in.Containers = DefaultContainerTypes()
	return in
}

func TestCalculate_FCLDirect(t *testing.T) {
	result := Calculate(fclInput(DeliveryDirect))

	if result.Mode != FreightFCL || result.Container == nil {
		t.Fatalf("expected an FCL result with a container plan")
	}
	if result.Container.Selected.Label != "1x20DC" {
		t.Fatalf("selected %q, want 1x20DC", result.Container.Selected.Label)
	}
	shared := result.Totals.Shared
	nearlyEqual(t, "international", shared.International, 1_500_000)
	nearlyEqual(t, "domestic", shared.Domestic, 350_000)
	nearlyEqual(t, "threePL", shared.ThreePL, 0)
	nearlyEqual(t, "inland", shared.Inland, 300_000)
}

func TestCalculate_FCLVia3PL(t *testing.T) {
	result := Calculate(fclInput(DeliveryVia3PL))

	nearlyEqual(t, "threePL", result.Totals.Shared.ThreePL, 600_000)
	if result.Delivery != DeliveryVia3PL {
		t.Fatalf("delivery = %q, want via_3pl", result.Delivery)
	}
}

func TestCalculate_FCLWithoutCatalogueFallsBackToLCL(t *testing.T) {
	in := fclInput(DeliveryDirect)
	in.Containers = nil

	result := Calculate(in)
	if result.Mode != FreightLCL || result.Container != nil {
		t.Fatalf("expected LCL fallback, got mode %q", result.Mode)
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestCalculate_FCLWithoutUsableTypesFallsBackToLCL(t *testing.T) {
	in := fclInput(DeliveryDirect)
	in.Containers = []ContainerType{{CapacityCBM: 28, MaxPayloadKg: 21_770, EquipmentCost: 1_500, Currency: CurrencyUSD}}

	result := Calculate(in)
	if result.Mode != FreightLCL || result.Container != nil {
		t.Fatalf("expected LCL fallback, got mode %q", result.Mode)
	}
	if !hasWarning(result.Warnings, "no usable container types") {
		t.Fatalf("expected a fallback warning, got %v", result.Warnings)
	}
	if result.Totals.Rate == nil {
		t.Fatalf("expected the LCL rate to be resolved")
	}
}

func TestCalculate_FCLWarnsOnUnconfiguredTrucking(t *testing.T) {
	in := fclInput(DeliveryDirect)
	in.Containers = append(in.Containers, ContainerType{Code: "20GP", CapacityCBM: 28, MaxPayloadKg: 21_770, EquipmentCost: 1_500, Currency: CurrencyUSD})

	result := Calculate(in)
	if result.Mode != FreightFCL {
		t.Fatalf("mode = %q, want fcl", result.Mode)
	}
	if !hasWarning(result.Warnings, "container 20GP") {
		t.Fatalf("expected a trucking warning for 20GP, got %v", result.Warnings)
	}
	if hasWarning(result.Warnings, "container 20DC") {
		t.Fatalf("20DC has settings, got %v", result.Warnings)
	}
}

func TestCalculate_FCLWarnsOnOversizedCatalogue(t *testing.T) {
	in := fclInput(DeliveryDirect)
	for i := 1; i <= 3; i++ {
		in.Containers = append(in.Containers, ContainerType{Code: fmt.Sprintf("X%d", i), CapacityCBM: 10, MaxPayloadKg: 10_000, EquipmentCost: 5_000, Currency: CurrencyUSD})
	}

	result := Calculate(in)
	if result.Container == nil || len(result.Container.Dropped) != 1 || result.Container.Dropped[0] != "X3" {
		t.Fatalf("expected X3 to be dropped, got %+v", result.Container)
	}
	if !hasWarning(result.Warnings, "ignored X3") {
		t.Fatalf("expected a catalogue warning, got %v", result.Warnings)
	}
}

package pricing

import "testing"

func TestCalculateTariff_IncludesOtherCostsInBase(t *testing.T) {
	got := CalculateTariff(1_000_000, 100_000, 8)

	nearlyEqual(t, "taxableBase", got.TaxableBase, 1_100_000)
	nearlyEqual(t, "tariffAmount", got.Amount, 88_000)
}

func TestCalculateVAT_LeviedOnTariffInclusiveBase(t *testing.T) {
	got := CalculateVAT(1_100_000, 88_000)

	nearlyEqual(t, "vatBase", got.Base, 1_188_000)
	nearlyEqual(t, "vatAmount", got.Amount, 118_800)
}

func TestCalculateVAT_CascadeNeverLowersVAT(t *testing.T) {
	for _, rate := range []float64{0.5, 3, 8, 13, 30} {
		tariff := CalculateTariff(777_777, 12_345, rate)
		cascaded := CalculateVAT(tariff.TaxableBase, tariff.Amount)
		plain := CalculateVAT(tariff.TaxableBase, 0)
		if cascaded.Amount < plain.Amount {
			t.Fatalf("rate %v: cascaded VAT %v below plain VAT %v", rate, cascaded.Amount, plain.Amount)
		}
	}
}

func TestCompareTariffs_ComputesBothRates(t *testing.T) {
	got := CompareTariffs(1_000_000, 100_000, 8, 0, true)

	nearlyEqual(t, "basic tariff", got.Basic.Tariff.Amount, 88_000)
	nearlyEqual(t, "basic vat", got.Basic.VAT.Amount, 118_800)
	nearlyEqual(t, "fta tariff", got.FTA.Tariff.Amount, 0)
	nearlyEqual(t, "fta vat", got.FTA.VAT.Amount, 110_000)
	nearlyEqual(t, "applied tariff", got.Applied.Tariff.Amount, 0)
	nearlyEqual(t, "savings", got.Savings, 96_800)
}

func TestCompareTariffs_BasicApplied(t *testing.T) {
	got := CompareTariffs(500_000, 0, 8, 5.2, false)

	nearlyEqual(t, "applied tariff", got.Applied.Tariff.Amount, 40_000)
	nearlyEqual(t, "fta tariff", got.FTA.Tariff.Amount, 26_000)
	if got.UseFTA {
		t.Fatalf("expected basic rate to be applied")
	}
}

package pricing

import (
	"errors"
	"testing"
)

func TestResolveSettings_NilFallsBackToDefaults(t *testing.T) {
	got, err := ResolveSettings(nil)
	if !errors.Is(err, ErrMissingSettings) {
		t.Fatalf("expected ErrMissingSettings, got %v", err)
	}

	want := DefaultSettings()
	if got.Domestic != want.Domestic || got.Inland != want.Inland || got.ThreePL != want.ThreePL || got.Remittance != want.Remittance {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if len(got.ContainerInland) != 3 {
		t.Fatalf("expected 3 default container inland entries, got %d", len(got.ContainerInland))
	}
}

func TestResolveSettings_FallsBackPerCategory(t *testing.T) {
	s := &CostSettings{
		Inland:   &InlandSettings{RatePerRTon: 22},
		Domestic: &DomesticSettings{BaseFee: 1, BaseCBM: 1, ExtraUnit: 0, ExtraRate: 1},
		ThreePL:  &ThreePLSettings{RatePerUnit: 10_000, Unit: 0.5},
		Remittance: &RemittanceSettings{
			Threshold: 2_000_000, FixedFee: 30_000, CardPercent: 2.5,
		},
		ContainerInland: map[string]ContainerInlandSettings{
			Container20DC: {MinCost: 400_000, PerKmRate: 4_000},
			"45HC":        {MinCost: 600_000, PerKmRate: 6_000},
			Container40HC: {MinCost: -1, PerKmRate: 1},
		},
	}

	got, err := ResolveSettings(s)
	if !errors.Is(err, ErrMissingSettings) {
		t.Fatalf("expected ErrMissingSettings for malformed categories, got %v", err)
	}

	nearlyEqual(t, "inland", got.Inland.RatePerRTon, 22)
	nearlyEqual(t, "domestic falls back", got.Domestic.ExtraUnit, DefaultDomesticExtraUnit)
	nearlyEqual(t, "threePL unit", got.ThreePL.Unit, 0.5)
	nearlyEqual(t, "remittance threshold", got.Remittance.Threshold, 2_000_000)
	nearlyEqual(t, "20DC override", got.ContainerInland[Container20DC].MinCost, 400_000)
	nearlyEqual(t, "45HC added", got.ContainerInland["45HC"].MinCost, 600_000)
	nearlyEqual(t, "40HC falls back", got.ContainerInland[Container40HC].MinCost, 480_000)

	msgs := errorMessages(err)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 fallback messages, got %v", msgs)
	}
}

func TestResolveSettings_CompleteSettingsHaveNoError(t *testing.T) {
	d := DefaultSettings()
	_, err := ResolveSettings(&CostSettings{
		Inland:     &d.Inland,
		Domestic:   &d.Domestic,
		ThreePL:    &d.ThreePL,
		Remittance: &d.Remittance,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCostSettings_MergeOverlaysSetCategories(t *testing.T) {
	base := DefaultSettings().CostSettings()
	update := &CostSettings{
		Domestic:        &DomesticSettings{BaseFee: 60_000, BaseCBM: 1, ExtraUnit: 0.5, ExtraRate: 20_000},
		ContainerInland: map[string]ContainerInlandSettings{Container20DC: {MinCost: 1, PerKmRate: 2}},
	}

	merged := base.Merge(update)
	got, err := ResolveSettings(merged)
	if err != nil {
		t.Fatalf("expected a complete merge, got %v", err)
	}
	if got.Domestic.BaseFee != 60_000 || got.Inland.RatePerRTon != DefaultInlandRatePerRTon {
		t.Fatalf("unexpected merge %+v", got)
	}
	if got.ContainerInland[Container20DC].MinCost != 1 || got.ContainerInland[Container40HC].MinCost != 480_000 {
		t.Fatalf("unexpected container inland merge %+v", got.ContainerInland)
	}
	if base.Domestic.BaseFee != DefaultDomesticBaseFee || base.ContainerInland[Container20DC].MinCost != 350_000 {
		t.Fatalf("merge modified its receiver")
	}
}

package pricing

import (
	"math"
	"testing"
)

func TestDistribute_ProportionalToRTon(t *testing.T) {
	shares := Distribute(100_000, Ratios([]float64{0.4, 0.6}))

	nearlyEqual(t, "first", shares[0], 40_000)
	nearlyEqual(t, "second", shares[1], 60_000)
}

func TestDistribute_RoundingDriftIsBounded(t *testing.T) {
	cases := [][]float64{
		{1, 1, 1},
		{0.013, 0.4, 2.7, 0.9},
		{5, 0.0001},
	}
	for _, rTons := range cases {
		for _, total := range []float64{1, 99_999, 123_457, 1_000_001} {
			shares := Distribute(total, Ratios(rTons))
			drift := math.Abs(sum(shares) - total)
			if drift > float64(len(rTons)) {
				t.Fatalf("rTons %v total %v: drift %v exceeds %d", rTons, total, drift, len(rTons))
			}
		}
	}
}

func TestRatios_ZeroSum(t *testing.T) {
	ratios := Ratios([]float64{0, 0, math.NaN()})
	for i, r := range ratios {
		if r != 0 {
			t.Fatalf("ratio %d = %v, want 0", i, r)
		}
	}
}

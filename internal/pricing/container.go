package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Container type codes of the default catalogue.
const (
	Container20DC = "20DC"
	Container40DC = "40DC"
	Container40HC = "40HC"
)

// MaxContainersPerType bounds the candidate set: every combination of
// 0..MaxContainersPerType containers of each type is evaluated.
const MaxContainersPerType = 3

// MaxContainerTypes caps how many catalogue types are enumerated. The
// candidate set grows as (MaxContainersPerType+1)^types, so types beyond the
// cap are dropped in catalogue order.
const MaxContainerTypes = 5

// ContainerType is one FCL equipment option.
type ContainerType struct {
	Code          string   `json:"code" yaml:"code"`
	CapacityCBM   float64  `json:"capacityCbm" yaml:"capacityCbm"`
	MaxPayloadKg  float64  `json:"maxPayloadKg" yaml:"maxPayloadKg"`
	EquipmentCost float64  `json:"equipmentCost" yaml:"equipmentCost"`
	Currency      Currency `json:"currency" yaml:"currency"`
}

// DefaultContainerTypes returns the standard dry-container catalogue.
func DefaultContainerTypes() []ContainerType {
	return []ContainerType{
		{Code: Container20DC, CapacityCBM: 28, MaxPayloadKg: 21_770, EquipmentCost: 1_500, Currency: CurrencyUSD},
		{Code: Container40DC, CapacityCBM: 58, MaxPayloadKg: 26_680, EquipmentCost: 2_600, Currency: CurrencyUSD},
		{Code: Container40HC, CapacityCBM: 68, MaxPayloadKg: 26_500, EquipmentCost: 2_800, Currency: CurrencyUSD},
	}
}

// FreightMode selects consolidated or full-container shipping.
type FreightMode string

const (
	FreightLCL FreightMode = "lcl"
	FreightFCL FreightMode = "fcl"
)

// DeliveryMethod selects what happens after port arrival.
type DeliveryMethod string

const (
	DeliveryDirect DeliveryMethod = "direct"
	DeliveryVia3PL DeliveryMethod = "via_3pl"
)

// ContainerCount is the number of containers of one type in an option.
type ContainerCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// OverflowCost is the LCL cost of cargo that does not fit an option.
type OverflowCost struct {
	International float64 `json:"international"`
	Domestic      float64 `json:"domestic"`
}

// Total returns the overflow cost in won.
func (c OverflowCost) Total() float64 {
	return c.International + c.Domestic
}

// ContainerOption is one evaluated container combination, costs in won.
type ContainerOption struct {
	Label             string           `json:"label"`
	Counts            []ContainerCount `json:"counts"`
	Containers        int              `json:"containers"`
	CapacityCBM       float64          `json:"capacityCbm"`
	CapacityPayloadKg float64          `json:"capacityPayloadKg"`
	RequiredRTon      float64          `json:"requiredRTon"`
	RequiredWeightKg  float64          `json:"requiredWeightKg"`
	EquipmentCost     float64          `json:"equipmentCost"`
	TruckingCost      float64          `json:"truckingCost"`
	OverflowRTon      float64          `json:"overflowRTon"`
	Overflow          OverflowCost     `json:"overflow"`
	TotalCost         float64          `json:"totalCost"`
	HasOverflow       bool             `json:"hasOverflow"`
}

// ContainerRequest is the input of OptimizeContainers.
type ContainerRequest struct {
	RTon       float64
	WeightKg   float64
	DistanceKm float64
	Types      []ContainerType
	Inland     map[string]ContainerInlandSettings
	Rates      ExchangeRates
	// Overflow prices the R.TON that does not fit through the LCL path.
	// A nil Overflow prices overflow at zero.
	Overflow func(overflowRTon float64) OverflowCost
}

// ContainerPlan is the selected option and every evaluated candidate,
// cheapest first.
type ContainerPlan struct {
	Selected ContainerOption   `json:"selected"`
	Options  []ContainerOption `json:"options"`
	// Dropped lists catalogue codes beyond MaxContainerTypes.
	Dropped []string `json:"dropped,omitempty"`
	// InlandFallback lists codes with no inland trucking settings. They are
	// trucked at the highest configured minimum and per-km rate.
	InlandFallback []string `json:"inlandFallback,omitempty"`
}

// OptimizeContainers evaluates every combination of 0..MaxContainersPerType
// containers of each catalogue type and selects the cheapest. Cargo beyond
// a combination's capacity or payload is costed as LCL overflow. Ties go to
// fewer containers, then less overflow, then less capacity. Only the first
// MaxContainerTypes distinct codes are evaluated. It returns false when the
// catalogue is empty.
func OptimizeContainers(req ContainerRequest) (ContainerPlan, bool) {
	types := uniqueTypes(req.Types)
	if len(types) == 0 {
		return ContainerPlan{}, false
	}
	var plan ContainerPlan
	if len(types) > MaxContainerTypes {
		for _, t := range types[MaxContainerTypes:] {
			plan.Dropped = append(plan.Dropped, t.Code)
		}
		types = types[:MaxContainerTypes]
	}

	trucking := make([]ContainerInlandSettings, len(types))
	fallback := inlandFallback(req.Inland)
	for i, t := range types {
		s, ok := req.Inland[t.Code]
		if !ok {
			s = fallback
			plan.InlandFallback = append(plan.InlandFallback, t.Code)
		}
		trucking[i] = s
	}

	counts := make([]int, len(types))
	var options []ContainerOption
	var walk func(i int)
	walk = func(i int) {
		if i == len(types) {
			if opt, ok := evaluateOption(req, types, trucking, counts); ok {
				options = append(options, opt)
			}
			return
		}
		for n := 0; n <= MaxContainersPerType; n++ {
			counts[i] = n
			walk(i + 1)
		}
	}
	walk(0)

	sort.SliceStable(options, func(i, j int) bool {
		a, b := options[i], options[j]
		if a.TotalCost != b.TotalCost {
			return a.TotalCost < b.TotalCost
		}
		if a.Containers != b.Containers {
			return a.Containers < b.Containers
		}
		if a.OverflowRTon != b.OverflowRTon {
			return a.OverflowRTon < b.OverflowRTon
		}
		return a.CapacityCBM < b.CapacityCBM
	})

	plan.Selected, plan.Options = options[0], options
	return plan, true
}

func evaluateOption(req ContainerRequest, types []ContainerType, trucking []ContainerInlandSettings, counts []int) (ContainerOption, bool) {
	opt := ContainerOption{
		RequiredRTon:     finite(req.RTon),
		RequiredWeightKg: finite(req.WeightKg),
	}
	labels := make([]string, 0, len(types))

	for i, t := range types {
		n := counts[i]
		if n == 0 {
			continue
		}
		opt.Counts = append(opt.Counts, ContainerCount{Code: t.Code, Count: n})
		opt.Containers += n
		opt.CapacityCBM += t.CapacityCBM * float64(n)
		opt.CapacityPayloadKg += t.MaxPayloadKg * float64(n)
		opt.EquipmentCost += roundWon(req.Rates.ToKRW(t.EquipmentCost, t.Currency)) * float64(n)
		opt.TruckingCost += ContainerTruckingCost(req.DistanceKm, trucking[i]) * float64(n)
		labels = append(labels, fmt.Sprintf("%dx%s", n, t.Code))
	}
	if opt.Containers == 0 {
		return ContainerOption{}, false
	}
	opt.Label = strings.Join(labels, " + ")

	byVolume := opt.RequiredRTon - opt.CapacityCBM
	byWeight := (opt.RequiredWeightKg - opt.CapacityPayloadKg) / 1000
	opt.OverflowRTon = math.Max(0, math.Max(byVolume, byWeight))
	if opt.OverflowRTon > 0 {
		opt.HasOverflow = true
		if req.Overflow != nil {
			opt.Overflow = req.Overflow(opt.OverflowRTon)
		}
	}

	opt.TotalCost = opt.EquipmentCost + opt.TruckingCost + opt.Overflow.Total()
	return opt, true
}

func uniqueTypes(types []ContainerType) []ContainerType {
	seen := make(map[string]struct{}, len(types))
	unique := make([]ContainerType, 0, len(types))
	for _, t := range types {
		if t.Code == "" {
			continue
		}
		if _, dup := seen[t.Code]; dup {
			continue
		}
		seen[t.Code] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}

// inlandFallback is the highest minimum and per-km rate across the given
// settings and the defaults, so an unconfigured type is never trucked free.
func inlandFallback(inland map[string]ContainerInlandSettings) ContainerInlandSettings {
	var out ContainerInlandSettings
	pick := func(s ContainerInlandSettings) {
		out.MinCost = math.Max(out.MinCost, finite(s.MinCost))
		out.PerKmRate = math.Max(out.PerKmRate, finite(s.PerKmRate))
	}
	for _, s := range DefaultContainerInland() {
		pick(s)
	}
	for _, s := range inland {
		pick(s)
	}
	return out
}

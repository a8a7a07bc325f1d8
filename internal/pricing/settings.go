package pricing

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingSettings marks a cost category that was absent or malformed and
// has been replaced by its default.
var ErrMissingSettings = errors.New("missing cost settings")

// InlandSettings prices factory-to-port trucking in USD per R.TON.
type InlandSettings struct {
	RatePerRTon float64 `json:"ratePerRTon" yaml:"ratePerRTon"`
}

// DomesticSettings prices port-to-warehouse delivery in KRW.
type DomesticSettings struct {
	BaseFee   float64 `json:"baseFee" yaml:"baseFee"`
	BaseCBM   float64 `json:"baseCbm" yaml:"baseCbm"`
	ExtraUnit float64 `json:"extraUnit" yaml:"extraUnit"`
	ExtraRate float64 `json:"extraRate" yaml:"extraRate"`
}

// ThreePLSettings prices third-party logistics handling in KRW.
type ThreePLSettings struct {
	RatePerUnit float64 `json:"ratePerUnit" yaml:"ratePerUnit"`
	Unit        float64 `json:"unit" yaml:"unit"`
}

// ContainerInlandSettings prices trucking one container in KRW.
type ContainerInlandSettings struct {
	MinCost   float64 `json:"minCost" yaml:"minCost"`
	PerKmRate float64 `json:"perKmRate" yaml:"perKmRate"`
}

// RemittanceSettings holds the payment fee tiers.
type RemittanceSettings struct {
	Threshold   float64 `json:"threshold" yaml:"threshold"`
	FixedFee    float64 `json:"fixedFee" yaml:"fixedFee"`
	CardPercent float64 `json:"cardPercent" yaml:"cardPercent"`
}

// CostSettings is externally supplied configuration. Nil categories fall
// back to defaults.
type CostSettings struct {
	Inland          *InlandSettings                    `json:"inland,omitempty" yaml:"inland,omitempty"`
	Domestic        *DomesticSettings                  `json:"domestic,omitempty" yaml:"domestic,omitempty"`
	ThreePL         *ThreePLSettings                   `json:"threePL,omitempty" yaml:"threePL,omitempty"`
	Remittance      *RemittanceSettings                `json:"remittance,omitempty" yaml:"remittance,omitempty"`
	ContainerInland map[string]ContainerInlandSettings `json:"containerInland,omitempty" yaml:"containerInland,omitempty"`
}

// Settings is a fully resolved CostSettings.
type Settings struct {
	Inland          InlandSettings                     `json:"inland"`
	Domestic        DomesticSettings                   `json:"domestic"`
	ThreePL         ThreePLSettings                    `json:"threePL"`
	Remittance      RemittanceSettings                 `json:"remittance"`
	ContainerInland map[string]ContainerInlandSettings `json:"containerInland"`
}

// Default cost constants.
const (
	DefaultInlandRatePerRTon = 15

	DefaultDomesticBaseFee   = 50_000
	DefaultDomesticBaseCBM   = 0.5
	DefaultDomesticExtraUnit = 0.1
	DefaultDomesticExtraRate = 10_000

	DefaultThreePLRatePerUnit = 30_000
	DefaultThreePLUnit        = 1

	DefaultRemittanceThreshold   = 1_000_000
	DefaultRemittanceFixedFee    = 27_000
	DefaultRemittanceCardPercent = 3
)

// DefaultContainerInland returns the default trucking prices per container type.
func DefaultContainerInland() map[string]ContainerInlandSettings {
	return map[string]ContainerInlandSettings{
		Container20DC: {MinCost: 350_000, PerKmRate: 3_500},
		Container40DC: {MinCost: 450_000, PerKmRate: 4_500},
		Container40HC: {MinCost: 480_000, PerKmRate: 4_800},
	}
}

// DefaultSettings returns the documented default for every category.
func DefaultSettings() Settings {
	return Settings{
		Inland: InlandSettings{RatePerRTon: DefaultInlandRatePerRTon},
		Domestic: DomesticSettings{
			BaseFee:   DefaultDomesticBaseFee,
			BaseCBM:   DefaultDomesticBaseCBM,
			ExtraUnit: DefaultDomesticExtraUnit,
			ExtraRate: DefaultDomesticExtraRate,
		},
		ThreePL: ThreePLSettings{RatePerUnit: DefaultThreePLRatePerUnit, Unit: DefaultThreePLUnit},
		Remittance: RemittanceSettings{
			Threshold:   DefaultRemittanceThreshold,
			FixedFee:    DefaultRemittanceFixedFee,
			CardPercent: DefaultRemittanceCardPercent,
		},
		ContainerInland: DefaultContainerInland(),
	}
}

// ResolveSettings fills every absent or malformed category of s with its
// default. The returned error joins one ErrMissingSettings per replaced
// category; the Settings are usable either way.
func ResolveSettings(s *CostSettings) (Settings, error) {
	resolved := DefaultSettings()
	if s == nil {
		return resolved, fmt.Errorf("%w: no cost settings provided, using defaults", ErrMissingSettings)
	}

	var errs []error
	missing := func(category string) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingSettings, category))
	}

	if s.Inland != nil && validInland(*s.Inland) {
		resolved.Inland = *s.Inland
	} else {
		missing("inland")
	}
	if s.Domestic != nil && validDomestic(*s.Domestic) {
		resolved.Domestic = *s.Domestic
	} else {
		missing("domestic")
	}
	if s.ThreePL != nil && validThreePL(*s.ThreePL) {
		resolved.ThreePL = *s.ThreePL
	} else {
		missing("threePL")
	}
	if s.Remittance != nil && validRemittance(*s.Remittance) {
		resolved.Remittance = *s.Remittance
	} else {
		missing("remittance")
	}

	codes := make([]string, 0, len(s.ContainerInland))
	for code := range s.ContainerInland {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		c := s.ContainerInland[code]
		if !validContainerInland(c) {
			missing("containerInland." + code)
			continue
		}
		resolved.ContainerInland[code] = c
	}

	return resolved, errors.Join(errs...)
}

func nonNegative(values ...float64) bool {
	for _, v := range values {
		if !(v >= 0) {
			return false
		}
	}
	return true
}

func validInland(s InlandSettings) bool {
	return nonNegative(s.RatePerRTon)
}

func validDomestic(s DomesticSettings) bool {
	return s.ExtraUnit > 0 && nonNegative(s.BaseFee, s.BaseCBM, s.ExtraRate)
}

func validThreePL(s ThreePLSettings) bool {
	return s.Unit > 0 && nonNegative(s.RatePerUnit)
}

func validRemittance(s RemittanceSettings) bool {
	return nonNegative(s.Threshold, s.FixedFee, s.CardPercent)
}

func validContainerInland(s ContainerInlandSettings) bool {
	return nonNegative(s.MinCost, s.PerKmRate)
}

// CostSettings returns s with every category set, suitable for storing or
// for merging a partial update over.
func (s Settings) CostSettings() *CostSettings {
	inland, domestic, threePL, remittance := s.Inland, s.Domestic, s.ThreePL, s.Remittance
	containerInland := make(map[string]ContainerInlandSettings, len(s.ContainerInland))
	for code, c := range s.ContainerInland {
		containerInland[code] = c
	}
	return &CostSettings{
		Inland:          &inland,
		Domestic:        &domestic,
		ThreePL:         &threePL,
		Remittance:      &remittance,
		ContainerInland: containerInland,
	}
}

// Merge overlays every category set in update onto c and returns the
// result. c is not modified.
func (c *CostSettings) Merge(update *CostSettings) *CostSettings {
	merged := &CostSettings{ContainerInland: make(map[string]ContainerInlandSettings)}
	if c != nil {
		merged.Inland, merged.Domestic, merged.ThreePL, merged.Remittance = c.Inland, c.Domestic, c.ThreePL, c.Remittance
		for code, v := range c.ContainerInland {
			merged.ContainerInland[code] = v
		}
	}
	if update == nil {
		return merged
	}
	if update.Inland != nil {
		merged.Inland = update.Inland
	}
	if update.Domestic != nil {
		merged.Domestic = update.Domestic
	}
	if update.ThreePL != nil {
		merged.ThreePL = update.ThreePL
	}
	if update.Remittance != nil {
		merged.Remittance = update.Remittance
	}
	for code, v := range update.ContainerInland {
		merged.ContainerInland[code] = v
	}
	return merged
}

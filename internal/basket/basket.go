// Package basket defines the import basket document accepted by the HTTP API
// and the command line, and turns it into a pricing.Input.
package basket

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/landedcost/internal/pricing"
)

// DefaultRateType is the rate table used when a document names none.
const DefaultRateType = "lcl"

// ErrInvalidDocument is returned for documents that cannot be priced as
// written. Individually incomplete products are not errors; the engine
// excludes them.
var ErrInvalidDocument = errors.New("invalid basket document")

// Document is one basket as written by a user.
type Document struct {
	Products      []Product              `json:"products" yaml:"products"`
	FactorySlots  []FactorySlot          `json:"factorySlots,omitempty" yaml:"factorySlots,omitempty"`
	RateType      string                 `json:"rateType,omitempty" yaml:"rateType,omitempty"`
	RateTable     *RateTable             `json:"rateTable,omitempty" yaml:"rateTable,omitempty"`
	Settings      *pricing.CostSettings  `json:"settings,omitempty" yaml:"settings,omitempty"`
	ExchangeRates *pricing.ExchangeRates `json:"exchangeRates,omitempty" yaml:"exchangeRates,omitempty"`
	Freight       Freight                `json:"freight" yaml:"freight"`
	Containers    []Container            `json:"containers,omitempty" yaml:"containers,omitempty"`
}

// Product is one basket line. Dimensions are in centimetres.
type Product struct {
	ID              string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string  `json:"name" yaml:"name"`
	Quantity        int     `json:"quantity" yaml:"quantity"`
	UnitPrice       float64 `json:"unitPrice" yaml:"unitPrice"`
	Currency        string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	Width           float64 `json:"width" yaml:"width"`
	Height          float64 `json:"height" yaml:"height"`
	Depth           float64 `json:"depth" yaml:"depth"`
	UnitWeight      float64 `json:"unitWeight,omitempty" yaml:"unitWeight,omitempty"`
	WeightUnit      string  `json:"weightUnit,omitempty" yaml:"weightUnit,omitempty"`
	BasicTariffRate float64 `json:"basicTariffRate" yaml:"basicTariffRate"`
	FTATariffRate   float64 `json:"ftaTariffRate" yaml:"ftaTariffRate"`
	UseFTA          bool    `json:"useFta" yaml:"useFta"`
}

// FactorySlot is one factory's extra charges.
type FactorySlot struct {
	ID       string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string     `json:"name" yaml:"name"`
	Items    []CostItem `json:"items" yaml:"items"`
	Products []string   `json:"products,omitempty" yaml:"products,omitempty"`
}

// CostItem is one factory charge. Currency defaults to CNY and ChargeType
// to once.
type CostItem struct {
	Name       string  `json:"name" yaml:"name"`
	Amount     float64 `json:"amount" yaml:"amount"`
	Currency   string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	ChargeType string  `json:"chargeType,omitempty" yaml:"chargeType,omitempty"`
}

// RateTable is an inline bracket table overriding the stored one.
type RateTable struct {
	Currency string                `json:"currency" yaml:"currency"`
	Brackets []pricing.RateBracket `json:"brackets" yaml:"brackets"`
}

// Freight selects LCL or FCL shipping.
type Freight struct {
	Mode       string  `json:"mode,omitempty" yaml:"mode,omitempty"`
	Delivery   string  `json:"delivery,omitempty" yaml:"delivery,omitempty"`
	DistanceKm float64 `json:"distanceKm,omitempty" yaml:"distanceKm,omitempty"`
}

// Container is an inline catalogue entry overriding the stored catalogue.
type Container struct {
	Code          string  `json:"code" yaml:"code"`
	CapacityCBM   float64 `json:"capacityCbm" yaml:"capacityCbm"`
	MaxPayloadKg  float64 `json:"maxPayloadKg" yaml:"maxPayloadKg"`
	EquipmentCost float64 `json:"equipmentCost" yaml:"equipmentCost"`
	Currency      string  `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// Defaults fill in what a document leaves out, typically from the store.
type Defaults struct {
	RateTable     pricing.RateTable
	Settings      *pricing.CostSettings
	ExchangeRates pricing.ExchangeRates
	Containers    []pricing.ContainerType
}

// RateTypeOrDefault returns the rate table the document asks for.
func (d *Document) RateTypeOrDefault() string {
	if t := strings.TrimSpace(d.RateType); t != "" {
		return t
	}
	return DefaultRateType
}

// Validate reports structural problems: unknown enum values, negative or
// non-finite distances, duplicate ids and malformed inline tables.
func (d *Document) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidDocument, fmt.Sprintf(format, args...)))
	}

	switch pricing.FreightMode(strings.ToLower(d.Freight.Mode)) {
	case "", pricing.FreightLCL, pricing.FreightFCL:
	default:
		invalid("freight mode %q must be lcl or fcl", d.Freight.Mode)
	}
	switch pricing.DeliveryMethod(strings.ToLower(d.Freight.Delivery)) {
	case "", pricing.DeliveryDirect, pricing.DeliveryVia3PL:
	default:
		invalid("delivery %q must be direct or via_3pl", d.Freight.Delivery)
	}
	if math.IsNaN(d.Freight.DistanceKm) || math.IsInf(d.Freight.DistanceKm, 0) || d.Freight.DistanceKm < 0 {
		invalid("distanceKm must be 0 or more")
	}

	ids := make(map[string]struct{}, len(d.Products))
	for i, p := range d.Products {
		id := productID(p, i)
		if _, dup := ids[id]; dup {
			invalid("duplicate product id %q", id)
		}
		ids[id] = struct{}{}
		switch pricing.WeightUnit(strings.ToLower(p.WeightUnit)) {
		case "", pricing.WeightKg, pricing.WeightGram:
		default:
			invalid("product %q weight unit %q must be kg or g", id, p.WeightUnit)
		}
	}

	for i, slot := range d.FactorySlots {
		id := slotID(slot, i)
		for _, item := range slot.Items {
			switch pricing.ChargeType(strings.ToLower(item.ChargeType)) {
			case "", pricing.ChargeOnce, pricing.ChargePerQuantity:
			default:
				invalid("slot %q item %q charge type %q must be once or per_quantity", id, item.Name, item.ChargeType)
			}
		}
	}

	if d.RateTable != nil {
		if !knownCurrency(d.RateTable.Currency) {
			invalid("rate table currency %q must be USD, CNY or KRW", d.RateTable.Currency)
		}
		seen := make(map[float64]struct{}, len(d.RateTable.Brackets))
		for _, b := range d.RateTable.Brackets {
			if _, dup := seen[b.CBM]; dup {
				invalid("duplicate rate bracket for cbm %v", b.CBM)
			}
			seen[b.CBM] = struct{}{}
		}
	}

	codes := make(map[string]struct{}, len(d.Containers))
	for _, c := range d.Containers {
		if strings.TrimSpace(c.Code) == "" {
			invalid("container code is required")
		} else {
			codes[c.Code] = struct{}{}
		}
		if c.Currency != "" && !knownCurrency(c.Currency) {
			invalid("container %q currency %q must be USD, CNY or KRW", c.Code, c.Currency)
		}
	}
	if len(codes) > pricing.MaxContainerTypes {
		invalid("at most %d container types, got %d", pricing.MaxContainerTypes, len(codes))
	}

	if r := d.ExchangeRates; r != nil {
		if !positiveRate(r.USD) {
			invalid("exchange rate usd must be a positive number")
		}
		if !positiveRate(r.CNY) {
			invalid("exchange rate cny must be a positive number")
		}
	}

	return errors.Join(errs...)
}

func positiveRate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Input converts the document into engine input, using def for every
// collaborator value the document does not carry.
func (d *Document) Input(def Defaults) pricing.Input {
	in := pricing.Input{
		Products:      make([]pricing.Product, 0, len(d.Products)),
		FactorySlots:  make([]pricing.FactorySlot, 0, len(d.FactorySlots)),
		RateTable:     def.RateTable,
		Settings:      def.Settings,
		ExchangeRates: def.ExchangeRates,
		Containers:    def.Containers,
		Freight: pricing.Freight{
			Mode:       pricing.FreightMode(strings.ToLower(d.Freight.Mode)),
			Delivery:   pricing.DeliveryMethod(strings.ToLower(d.Freight.Delivery)),
			DistanceKm: d.Freight.DistanceKm,
		},
	}
	if in.Freight.Mode == "" {
		in.Freight.Mode = pricing.FreightLCL
	}
	if in.Freight.Delivery == "" {
		in.Freight.Delivery = pricing.DeliveryDirect
	}

	for i, p := range d.Products {
		in.Products = append(in.Products, pricing.Product{
			ID:              productID(p, i),
			Name:            p.Name,
			Quantity:        p.Quantity,
			UnitPrice:       p.UnitPrice,
			Currency:        currencyOr(p.Currency, pricing.CurrencyUSD),
			Dimensions:      pricing.Dimensions{Width: p.Width, Height: p.Height, Depth: p.Depth},
			UnitWeight:      p.UnitWeight,
			WeightUnit:      weightUnit(p.WeightUnit),
			BasicTariffRate: p.BasicTariffRate,
			FTATariffRate:   p.FTATariffRate,
			UseFTA:          p.UseFTA,
		})
	}

	for i, slot := range d.FactorySlots {
		s := pricing.FactorySlot{
			ID:               slotID(slot, i),
			Name:             slot.Name,
			Items:            make([]pricing.FactoryCostItem, 0, len(slot.Items)),
			LinkedProductIDs: slot.Products,
		}
		for _, item := range slot.Items {
			charge := pricing.ChargeType(strings.ToLower(item.ChargeType))
			if charge == "" {
				charge = pricing.ChargeOnce
			}
			s.Items = append(s.Items, pricing.FactoryCostItem{
				Name:       item.Name,
				Amount:     item.Amount,
				Currency:   currencyOr(item.Currency, pricing.CurrencyCNY),
				ChargeType: charge,
			})
		}
		in.FactorySlots = append(in.FactorySlots, s)
	}

	if d.RateTable != nil {
		in.RateTable = pricing.RateTable{
			Type:     d.RateTypeOrDefault(),
			Currency: currencyOr(d.RateTable.Currency, pricing.CurrencyUSD),
			Brackets: d.RateTable.Brackets,
		}
	}
	if d.Settings != nil {
		in.Settings = d.Settings
	}
	if d.ExchangeRates != nil {
		in.ExchangeRates = *d.ExchangeRates
	}
	if len(d.Containers) > 0 {
		in.Containers = make([]pricing.ContainerType, 0, len(d.Containers))
		for _, c := range d.Containers {
			in.Containers = append(in.Containers, pricing.ContainerType{
				Code:          c.Code,
				CapacityCBM:   c.CapacityCBM,
				MaxPayloadKg:  c.MaxPayloadKg,
				EquipmentCost: c.EquipmentCost,
				Currency:      currencyOr(c.Currency, pricing.CurrencyUSD),
			})
		}
	}

	return in
}

func productID(p Product, i int) string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	return fmt.Sprintf("product-%d", i+1)
}

func slotID(s FactorySlot, i int) string {
	if id := strings.TrimSpace(s.ID); id != "" {
		return id
	}
	return fmt.Sprintf("slot-%d", i+1)
}

func currencyOr(raw string, fallback pricing.Currency) pricing.Currency {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return fallback
	}
	return pricing.Currency(raw)
}

func knownCurrency(raw string) bool {
	switch pricing.Currency(strings.ToUpper(strings.TrimSpace(raw))) {
	case pricing.CurrencyUSD, pricing.CurrencyCNY, pricing.CurrencyKRW:
		return true
	default:
		return false
	}
}

func weightUnit(raw string) pricing.WeightUnit {
	if pricing.WeightUnit(strings.ToLower(raw)) == pricing.WeightGram {
		return pricing.WeightGram
	}
	return pricing.WeightKg
}

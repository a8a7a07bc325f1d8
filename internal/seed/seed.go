// Package seed fills an empty database with the default cost settings,
// container catalogue, LCL rate table and exchange rates.
package seed

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Simplici0/landedcost/internal/pricing"
)

const (
	// DefaultRateType names the LCL table seeded on first start.
	DefaultRateType = "lcl"

	seedSource = "seed"
)

// DefaultRateTable is the USD per-CBM bracket table used until an operator
// uploads their forwarder's quote.
var DefaultRateTable = pricing.RateTable{
	Type:     DefaultRateType,
	Currency: pricing.CurrencyUSD,
	Brackets: []pricing.RateBracket{
		{CBM: 0.5, Rate: 85},
		{CBM: 1, Rate: 110},
		{CBM: 1.5, Rate: 150},
		{CBM: 2, Rate: 185},
		{CBM: 3, Rate: 255},
		{CBM: 4, Rate: 320},
		{CBM: 5, Rate: 385},
	},
}

// DefaultExchangeRates are cached until the first successful refresh.
var DefaultExchangeRates = pricing.ExchangeRates{USD: 1350, CNY: 185}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	steps := []func(*sql.Tx, *Stats) error{
		ensureCostSettings,
		ensureContainerTypes,
		ensureRateTable,
		ensureExchangeRates,
	}
	for _, step := range steps {
		if err := step(tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureCostSettings(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM cost_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check cost settings existence: %w", err)
	}
	if exists {
		return nil
	}

	s := pricing.DefaultSettings()
	if _, err := tx.Exec(`
		INSERT INTO cost_settings (
			id,
			inland_rate_per_rton,
			domestic_base_fee, domestic_base_cbm, domestic_extra_unit, domestic_extra_rate,
			threepl_rate_per_unit, threepl_unit,
			remittance_threshold, remittance_fixed_fee, remittance_card_percent
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.Inland.RatePerRTon,
		s.Domestic.BaseFee, s.Domestic.BaseCBM, s.Domestic.ExtraUnit, s.Domestic.ExtraRate,
		s.ThreePL.RatePerUnit, s.ThreePL.Unit,
		s.Remittance.Threshold, s.Remittance.FixedFee, s.Remittance.CardPercent,
	); err != nil {
		return fmt.Errorf("insert cost settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureContainerTypes(tx *sql.Tx, stats *Stats) error {
	inland := pricing.DefaultContainerInland()
	for i, c := range pricing.DefaultContainerTypes() {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM container_types WHERE code = ? LIMIT 1)`, c.Code).Scan(&exists); err != nil {
			return fmt.Errorf("check container type %s existence: %w", c.Code, err)
		}
		if exists {
			continue
		}

		truck := inland[c.Code]
		if _, err := tx.Exec(`
			INSERT INTO container_types (
				code, capacity_cbm, max_payload_kg, equipment_cost, currency,
				inland_min_cost, inland_per_km_rate, sort_order, active
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.Code, c.CapacityCBM, c.MaxPayloadKg, c.EquipmentCost, string(c.Currency),
			truck.MinCost, truck.PerKmRate, i, true); err != nil {
			return fmt.Errorf("insert container type %s: %w", c.Code, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureRateTable(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM shipping_rates WHERE rate_type = ? LIMIT 1)`, DefaultRateType).Scan(&exists); err != nil {
		return fmt.Errorf("check rate table existence: %w", err)
	}
	if exists {
		return nil
	}

	for _, b := range DefaultRateTable.Brackets {
		if _, err := tx.Exec(`
			INSERT INTO shipping_rates (rate_type, currency, cbm, rate)
			VALUES (?, ?, ?, ?)
		`, DefaultRateTable.Type, string(DefaultRateTable.Currency), b.CBM, b.Rate); err != nil {
			return fmt.Errorf("insert default rate bracket %v: %w", b.CBM, err)
		}
	}
	stats.Inserts++
	return nil
}

func ensureExchangeRates(tx *sql.Tx, stats *Stats) error {
	at := time.Now().UTC().Format(time.RFC3339)
	rates := []struct {
		currency pricing.Currency
		rate     float64
	}{
		{pricing.CurrencyUSD, DefaultExchangeRates.USD},
		{pricing.CurrencyCNY, DefaultExchangeRates.CNY},
	}

	for _, r := range rates {
		result, err := tx.Exec(`
			INSERT INTO exchange_rates (currency, krw_per_unit, source, fetched_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(currency) DO NOTHING
		`, string(r.currency), r.rate, seedSource, at)
		if err != nil {
			return fmt.Errorf("insert exchange rate %s: %w", r.currency, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert exchange rate %s: %w", r.currency, err)
		}
		stats.Inserts += int(affected)
	}
	return nil
}

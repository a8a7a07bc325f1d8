package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/landedcost/internal/pricing"
)

// CostSettings returns the stored settings singleton together with the
// inland trucking prices of every container type. ErrNotFound means no
// settings have been saved yet.
func (s *Store) CostSettings(ctx context.Context) (*pricing.CostSettings, error) {
	var (
		inland     pricing.InlandSettings
		domestic   pricing.DomesticSettings
		threePL    pricing.ThreePLSettings
		remittance pricing.RemittanceSettings
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			inland_rate_per_rton,
			domestic_base_fee, domestic_base_cbm, domestic_extra_unit, domestic_extra_rate,
			threepl_rate_per_unit, threepl_unit,
			remittance_threshold, remittance_fixed_fee, remittance_card_percent
		FROM cost_settings
		WHERE id = 1
	`).Scan(
		&inland.RatePerRTon,
		&domestic.BaseFee, &domestic.BaseCBM, &domestic.ExtraUnit, &domestic.ExtraRate,
		&threePL.RatePerUnit, &threePL.Unit,
		&remittance.Threshold, &remittance.FixedFee, &remittance.CardPercent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cost settings: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("query cost settings: %w", err)
	}

	containerInland, err := s.containerInland(ctx)
	if err != nil {
		return nil, err
	}

	return &pricing.CostSettings{
		Inland:          &inland,
		Domestic:        &domestic,
		ThreePL:         &threePL,
		Remittance:      &remittance,
		ContainerInland: containerInland,
	}, nil
}

// SaveCostSettings upserts the settings singleton and updates the inland
// trucking prices of container types that already exist.
func (s *Store) SaveCostSettings(ctx context.Context, settings pricing.Settings) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cost_settings (
				id,
				inland_rate_per_rton,
				domestic_base_fee, domestic_base_cbm, domestic_extra_unit, domestic_extra_rate,
				threepl_rate_per_unit, threepl_unit,
				remittance_threshold, remittance_fixed_fee, remittance_card_percent
			) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				inland_rate_per_rton = excluded.inland_rate_per_rton,
				domestic_base_fee = excluded.domestic_base_fee,
				domestic_base_cbm = excluded.domestic_base_cbm,
				domestic_extra_unit = excluded.domestic_extra_unit,
				domestic_extra_rate = excluded.domestic_extra_rate,
				threepl_rate_per_unit = excluded.threepl_rate_per_unit,
				threepl_unit = excluded.threepl_unit,
				remittance_threshold = excluded.remittance_threshold,
				remittance_fixed_fee = excluded.remittance_fixed_fee,
				remittance_card_percent = excluded.remittance_card_percent,
				updated_at = CURRENT_TIMESTAMP
		`,
			settings.Inland.RatePerRTon,
			settings.Domestic.BaseFee, settings.Domestic.BaseCBM, settings.Domestic.ExtraUnit, settings.Domestic.ExtraRate,
			settings.ThreePL.RatePerUnit, settings.ThreePL.Unit,
			settings.Remittance.Threshold, settings.Remittance.FixedFee, settings.Remittance.CardPercent,
		)
		if err != nil {
			return fmt.Errorf("upsert cost settings: %w", err)
		}

		for code, inland := range settings.ContainerInland {
			if _, err := tx.ExecContext(ctx, `
				UPDATE container_types
				SET inland_min_cost = ?, inland_per_km_rate = ?, updated_at = CURRENT_TIMESTAMP
				WHERE code = ?
			`, inland.MinCost, inland.PerKmRate, code); err != nil {
				return fmt.Errorf("update container inland %s: %w", code, err)
			}
		}
		return nil
	})
}

func (s *Store) containerInland(ctx context.Context) (map[string]pricing.ContainerInlandSettings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, inland_min_cost, inland_per_km_rate
		FROM container_types
		WHERE active = TRUE
	`)
	if err != nil {
		return nil, fmt.Errorf("query container inland: %w", err)
	}
	defer rows.Close()

	inland := make(map[string]pricing.ContainerInlandSettings)
	for rows.Next() {
		var (
			code string
			c    pricing.ContainerInlandSettings
		)
		if err := rows.Scan(&code, &c.MinCost, &c.PerKmRate); err != nil {
			return nil, fmt.Errorf("scan container inland: %w", err)
		}
		inland[code] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate container inland: %w", err)
	}
	return inland, nil
}

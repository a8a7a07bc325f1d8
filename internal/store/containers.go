package store

import (
	"context"
	"fmt"

	"github.com/Simplici0/landedcost/internal/pricing"
)

// ContainerTypes returns the active container catalogue in display order.
func (s *Store) ContainerTypes(ctx context.Context) ([]pricing.ContainerType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, capacity_cbm, max_payload_kg, equipment_cost, currency
		FROM container_types
		WHERE active = TRUE
		ORDER BY sort_order ASC, code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query container types: %w", err)
	}
	defer rows.Close()

	types := make([]pricing.ContainerType, 0)
	for rows.Next() {
		var (
			c        pricing.ContainerType
			currency string
		)
		if err := rows.Scan(&c.Code, &c.CapacityCBM, &c.MaxPayloadKg, &c.EquipmentCost, &currency); err != nil {
			return nil, fmt.Errorf("scan container type: %w", err)
		}
		c.Currency = pricing.Currency(currency)
		types = append(types, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate container types: %w", err)
	}
	return types, nil
}

// SetContainerActive enables or disables one container type.
func (s *Store) SetContainerActive(ctx context.Context, code string, active bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE container_types
		SET active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE code = ?
	`, active, code)
	if err != nil {
		return fmt.Errorf("update container type: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update container type: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("container type %q: %w", code, ErrNotFound)
	}
	return nil
}

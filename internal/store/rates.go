package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Simplici0/landedcost/internal/pricing"
)

// RateTable returns the brackets of rateType sorted by CBM.
func (s *Store) RateTable(ctx context.Context, rateType string) (pricing.RateTable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT currency, cbm, rate
		FROM shipping_rates
		WHERE rate_type = ?
		ORDER BY cbm ASC
	`, rateType)
	if err != nil {
		return pricing.RateTable{}, fmt.Errorf("query shipping rates: %w", err)
	}
	defer rows.Close()

	table := pricing.RateTable{Type: rateType, Brackets: []pricing.RateBracket{}}
	for rows.Next() {
		var (
			currency string
			b        pricing.RateBracket
		)
		if err := rows.Scan(&currency, &b.CBM, &b.Rate); err != nil {
			return pricing.RateTable{}, fmt.Errorf("scan shipping rate: %w", err)
		}
		table.Currency = pricing.Currency(currency)
		table.Brackets = append(table.Brackets, b)
	}
	if err := rows.Err(); err != nil {
		return pricing.RateTable{}, fmt.Errorf("iterate shipping rates: %w", err)
	}

	if len(table.Brackets) == 0 {
		return pricing.RateTable{}, fmt.Errorf("rate table %q: %w", rateType, ErrNotFound)
	}
	return table, nil
}

// RateTypes lists the rate types that have at least one bracket.
func (s *Store) RateTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT rate_type FROM shipping_rates ORDER BY rate_type`)
	if err != nil {
		return nil, fmt.Errorf("query rate types: %w", err)
	}
	defer rows.Close()

	types := make([]string, 0)
	for rows.Next() {
		var rateType string
		if err := rows.Scan(&rateType); err != nil {
			return nil, fmt.Errorf("scan rate type: %w", err)
		}
		types = append(types, rateType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate types: %w", err)
	}
	return types, nil
}

// ReplaceRateTable swaps every bracket of table.Type for table.Brackets in
// one transaction.
func (s *Store) ReplaceRateTable(ctx context.Context, table pricing.RateTable) error {
	if err := ValidateRateTable(table); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shipping_rates WHERE rate_type = ?`, table.Type); err != nil {
			return fmt.Errorf("delete shipping rates: %w", err)
		}
		for _, b := range table.Brackets {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO shipping_rates (rate_type, currency, cbm, rate)
				VALUES (?, ?, ?, ?)
			`, table.Type, string(table.Currency), b.CBM, b.Rate); err != nil {
				return fmt.Errorf("insert shipping rate %v: %w", b.CBM, err)
			}
		}
		return nil
	})
}

// ValidateRateTable checks the invariants of a bracket table: a type, a
// known currency, positive unique CBM values and non-negative rates.
func ValidateRateTable(table pricing.RateTable) error {
	if strings.TrimSpace(table.Type) == "" {
		return fmt.Errorf("%w: rate type is required", ErrInvalid)
	}
	switch table.Currency {
	case pricing.CurrencyUSD, pricing.CurrencyCNY, pricing.CurrencyKRW:
	default:
		return fmt.Errorf("%w: currency must be USD, CNY or KRW", ErrInvalid)
	}
	if len(table.Brackets) == 0 {
		return fmt.Errorf("%w: at least one bracket is required", ErrInvalid)
	}

	seen := make(map[float64]struct{}, len(table.Brackets))
	for _, b := range table.Brackets {
		if !(b.CBM > 0) {
			return fmt.Errorf("%w: bracket cbm must be greater than 0", ErrInvalid)
		}
		if !(b.Rate >= 0) {
			return fmt.Errorf("%w: bracket rate must be 0 or more", ErrInvalid)
		}
		if _, dup := seen[b.CBM]; dup {
			return fmt.Errorf("%w: duplicate bracket for cbm %v", ErrInvalid, b.CBM)
		}
		seen[b.CBM] = struct{}{}
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Simplici0/landedcost/internal/pricing"
)

// CachedRates are the last exchange rates fetched from a rate source.
type CachedRates struct {
	Rates     pricing.ExchangeRates `json:"rates"`
	Source    string                `json:"source"`
	FetchedAt time.Time             `json:"fetchedAt"`
}

// ExchangeRates returns the cached rates. ErrNotFound means USD or CNY has
// never been cached.
func (s *Store) ExchangeRates(ctx context.Context) (CachedRates, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT currency, krw_per_unit, source, fetched_at
		FROM exchange_rates
		WHERE currency IN ('USD', 'CNY')
	`)
	if err != nil {
		return CachedRates{}, fmt.Errorf("query exchange rates: %w", err)
	}
	defer rows.Close()

	var (
		cached CachedRates
		hasUSD bool
		hasCNY bool
	)
	for rows.Next() {
		var (
			currency, source, fetchedAt string
			rate                        float64
		)
		if err := rows.Scan(&currency, &rate, &source, &fetchedAt); err != nil {
			return CachedRates{}, fmt.Errorf("scan exchange rate: %w", err)
		}
		at, err := time.Parse(time.RFC3339, fetchedAt)
		if err != nil {
			return CachedRates{}, fmt.Errorf("parse exchange rate time: %w", err)
		}
		switch pricing.Currency(currency) {
		case pricing.CurrencyUSD:
			cached.Rates.USD, hasUSD = rate, true
		case pricing.CurrencyCNY:
			cached.Rates.CNY, hasCNY = rate, true
		}
		if at.After(cached.FetchedAt) {
			cached.FetchedAt = at
			cached.Source = source
		}
	}
	if err := rows.Err(); err != nil {
		return CachedRates{}, fmt.Errorf("iterate exchange rates: %w", err)
	}

	if !hasUSD || !hasCNY {
		return CachedRates{}, fmt.Errorf("exchange rates: %w", ErrNotFound)
	}
	return cached, nil
}

// SaveExchangeRates replaces the cached USD and CNY rates.
func (s *Store) SaveExchangeRates(ctx context.Context, cached CachedRates) error {
	if !(cached.Rates.USD > 0) || !(cached.Rates.CNY > 0) {
		return fmt.Errorf("%w: exchange rates must be greater than 0", ErrInvalid)
	}

	at := cached.FetchedAt.UTC().Format(time.RFC3339)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for currency, rate := range map[pricing.Currency]float64{
			pricing.CurrencyUSD: cached.Rates.USD,
			pricing.CurrencyCNY: cached.Rates.CNY,
		} {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO exchange_rates (currency, krw_per_unit, source, fetched_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(currency) DO UPDATE SET
					krw_per_unit = excluded.krw_per_unit,
					source = excluded.source,
					fetched_at = excluded.fetched_at
			`, string(currency), rate, cached.Source, at); err != nil {
				return fmt.Errorf("upsert exchange rate %s: %w", currency, err)
			}
		}
		return nil
	})
}

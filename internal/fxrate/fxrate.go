// Package fxrate fetches KRW exchange rates for USD and CNY from a primary
// source, falling back to a secondary source when the primary fails.
package fxrate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/landedcost/internal/pricing"
)

// ErrUnavailable is returned when no configured source produced usable rates.
var ErrUnavailable = errors.New("fxrate: exchange rates unavailable")

// Quote is one successful fetch.
type Quote struct {
	Rates     pricing.ExchangeRates `json:"rates"`
	Source    string                `json:"source"`
	FetchedAt time.Time             `json:"fetchedAt"`
}

// Source produces KRW per unit rates.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (pricing.ExchangeRates, error)
}

// Client tries each source in order and returns the first usable quote.
type Client struct {
	sources []Source
	logger  *zap.Logger
	now     func() time.Time
}

// NewClient builds a client over sources in priority order. A nil logger
// disables logging.
func NewClient(logger *zap.Logger, sources ...Source) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{sources: sources, logger: logger, now: time.Now}
}

// NewFromURLs builds a client with a "primary" and a "fallback" HTTP source,
// leaving out either one whose URL is empty.
func NewFromURLs(logger *zap.Logger, primaryURL, fallbackURL string, timeout time.Duration) *Client {
	var sources []Source
	if strings.TrimSpace(primaryURL) != "" {
		sources = append(sources, NewHTTPSource("primary", primaryURL, timeout))
	}
	if strings.TrimSpace(fallbackURL) != "" {
		sources = append(sources, NewHTTPSource("fallback", fallbackURL, timeout))
	}
	return NewClient(logger, sources...)
}

// Configured reports whether at least one source is available.
func (c *Client) Configured() bool {
	return c != nil && len(c.sources) > 0
}

// Fetch returns rates from the first source that answers with positive
// finite values for both currencies.
func (c *Client) Fetch(ctx context.Context) (Quote, error) {
	if !c.Configured() {
		return Quote{}, fmt.Errorf("%w: no sources configured", ErrUnavailable)
	}

	var errs []error
	for _, source := range c.sources {
		rates, err := source.Fetch(ctx)
		if err == nil {
			err = validate(rates)
		}
		if err != nil {
			c.logger.Warn("exchange rate source failed",
				zap.String("source", source.Name()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", source.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		c.logger.Info("exchange rates fetched",
			zap.String("source", source.Name()),
			zap.Float64("usd", rates.USD),
			zap.Float64("cny", rates.CNY),
		)
		return Quote{Rates: rates, Source: source.Name(), FetchedAt: c.now().UTC()}, nil
	}

	return Quote{}, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

func validate(r pricing.ExchangeRates) error {
	for name, v := range map[string]float64{"usd": r.USD, "cny": r.CNY} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("invalid %s rate %v", name, v)
		}
	}
	return nil
}

package fxrate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Simplici0/landedcost/internal/pricing"
)

const defaultTimeout = 5 * time.Second

// HTTPSource reads a USD-based rates document of the form
// {"rates": {"KRW": 1350.2, "CNY": 7.29}}.
type HTTPSource struct {
	name string
	url  string
	http *http.Client
}

// NewHTTPSource builds a source reading url with the given timeout.
func NewHTTPSource(name, url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPSource{
		name: name,
		url:  strings.TrimSpace(url),
		http: &http.Client{Timeout: timeout},
	}
}

// Name identifies the source in logs and cached records.
func (s *HTTPSource) Name() string {
	return s.name
}

type usdRates struct {
	Rates map[string]float64 `json:"rates"`
}

// Fetch downloads the document and derives KRW per USD and per CNY.
func (s *HTTPSource) Fetch(ctx context.Context) (pricing.ExchangeRates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return pricing.ExchangeRates{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return pricing.ExchangeRates{}, fmt.Errorf("request rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return pricing.ExchangeRates{}, fmt.Errorf("remote status %d", resp.StatusCode)
	}

	var payload usdRates
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return pricing.ExchangeRates{}, fmt.Errorf("decode rates: %w", err)
	}

	krw, cny := payload.Rates["KRW"], payload.Rates["CNY"]
	if krw <= 0 || cny <= 0 {
		return pricing.ExchangeRates{}, fmt.Errorf("rates document is missing KRW or CNY")
	}
	return pricing.ExchangeRates{USD: krw, CNY: krw / cny}, nil
}

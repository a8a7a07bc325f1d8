package fxrate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/landedcost/internal/pricing"
)

type stubSource struct {
	name  string
	rates pricing.ExchangeRates
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context) (pricing.ExchangeRates, error) {
	s.calls++
	return s.rates, s.err
}

func TestClientUsesPrimary(t *testing.T) {
	primary := &stubSource{name: "primary", rates: pricing.ExchangeRates{USD: 1400, CNY: 192}}
	fallback := &stubSource{name: "fallback", rates: pricing.ExchangeRates{USD: 1, CNY: 1}}

	client := NewClient(nil, primary, fallback)
	fixed := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	quote, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "primary", quote.Source)
	require.Equal(t, pricing.ExchangeRates{USD: 1400, CNY: 192}, quote.Rates)
	require.Equal(t, fixed, quote.FetchedAt)
	require.Equal(t, 0, fallback.calls)
}

func TestClientFallsBack(t *testing.T) {
	cases := map[string]*stubSource{
		"error":        {name: "primary", err: errors.New("boom")},
		"invalid rate": {name: "primary", rates: pricing.ExchangeRates{USD: 1400, CNY: 0}},
	}
	for name, primary := range cases {
		t.Run(name, func(t *testing.T) {
			fallback := &stubSource{name: "fallback", rates: pricing.ExchangeRates{USD: 1390, CNY: 191}}

			quote, err := NewClient(nil, primary, fallback).Fetch(context.Background())
			require.NoError(t, err)
			require.Equal(t, "fallback", quote.Source)
			require.Equal(t, 1390.0, quote.Rates.USD)
		})
	}
}

func TestClientUnavailable(t *testing.T) {
	_, err := NewClient(nil).Fetch(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	require.False(t, NewFromURLs(nil, "", " ", time.Second).Configured())

	_, err = NewClient(nil,
		&stubSource{name: "primary", err: errors.New("down")},
		&stubSource{name: "fallback", err: errors.New("also down")},
	).Fetch(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorContains(t, err, "also down")
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"KRW":1400,"CNY":7,"EUR":0.9}}`))
	}))
	defer srv.Close()

	rates, err := NewHTTPSource("primary", srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1400.0, rates.USD)
	require.InDelta(t, 200.0, rates.CNY, 1e-9)
}

func TestNewFromURLsFallsBackOverHTTP(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"KRW":1350,"CNY":7.5}}`))
	}))
	defer up.Close()

	quote, err := NewFromURLs(nil, down.URL, up.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fallback", quote.Source)
	require.InDelta(t, 180.0, quote.Rates.CNY, 1e-9)
}

func TestHTTPSourceErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusServiceUnavailable)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":`))
		},
		"missing currency": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":{"KRW":1400}}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := NewHTTPSource("primary", srv.URL, time.Second).Fetch(context.Background())
			require.Error(t, err)
		})
	}
}

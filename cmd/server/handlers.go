package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/landedcost/internal/basket"
	"github.com/Simplici0/landedcost/internal/pricing"
	"github.com/Simplici0/landedcost/internal/store"
)

type calculateResponse struct {
	CalculationID string          `json:"calculationId"`
	Result        *pricing.Result `json:"result"`
}

type rateTableBody struct {
	Currency pricing.Currency      `json:"currency"`
	Brackets []pricing.RateBracket `json:"brackets"`
}

type containerActiveBody struct {
	Active *bool `json:"active"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	doc, err := basket.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, r, "decode basket", err)
		return
	}
	if err := doc.Validate(); err != nil {
		s.fail(w, r, "validate basket", err)
		return
	}

	def, err := s.defaults(r.Context(), doc)
	if err != nil {
		s.fail(w, r, "load calculation defaults", err)
		return
	}

	id := s.newID()
	result := pricing.Calculate(doc.Input(def))

	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("calculation_id", id),
		zap.Int("products", len(doc.Products)),
	}
	if result != nil {
		fields = append(fields,
			zap.Int("valid_products", result.Totals.Products),
			zap.String("mode", string(result.Mode)),
			zap.Float64("total", result.Totals.Total),
			zap.Int("warnings", len(result.Warnings)),
		)
	}
	s.logger.Info("calculation complete", fields...)

	writeJSON(w, http.StatusOK, calculateResponse{CalculationID: id, Result: result})
}

// defaults loads every collaborator value the document does not carry.
// Missing stored settings, tables and catalogues are left empty so that the
// engine applies its own fallbacks and reports them as warnings.
func (s *server) defaults(ctx context.Context, doc *basket.Document) (basket.Defaults, error) {
	var def basket.Defaults

	if doc.Settings == nil {
		settings, err := s.store.CostSettings(ctx)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return def, err
		}
		def.Settings = settings
	}

	if doc.RateTable == nil {
		table, err := s.store.RateTable(ctx, doc.RateTypeOrDefault())
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return def, err
		}
		def.RateTable = table
	}

	if len(doc.Containers) == 0 {
		containers, err := s.store.ContainerTypes(ctx)
		if err != nil {
			return def, err
		}
		def.Containers = containers
	}

	if doc.ExchangeRates == nil {
		cached, err := s.store.ExchangeRates(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return def, fmt.Errorf("%w: exchange rates are not cached, supply exchangeRates", basket.ErrInvalidDocument)
			}
			return def, err
		}
		def.ExchangeRates = cached.Rates
	}

	return def, nil
}

func (s *server) currentSettings(ctx context.Context) (pricing.Settings, error) {
	stored, err := s.store.CostSettings(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return pricing.DefaultSettings(), nil
		}
		return pricing.Settings{}, err
	}
	settings, _ := pricing.ResolveSettings(stored)
	return settings, nil
}

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.currentSettings(r.Context())
	if err != nil {
		s.fail(w, r, "load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var update pricing.CostSettings
	if err := decodeBody(w, r, &update); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid settings body: "+err.Error())
		return
	}

	current, err := s.currentSettings(r.Context())
	if err != nil {
		s.fail(w, r, "load settings", err)
		return
	}

	settings, err := pricing.ResolveSettings(current.CostSettings().Merge(&update))
	if err != nil {
		s.fail(w, r, "validate settings", err)
		return
	}
	if err := s.store.SaveCostSettings(r.Context(), settings); err != nil {
		s.fail(w, r, "save settings", err)
		return
	}

	saved, err := s.currentSettings(r.Context())
	if err != nil {
		s.fail(w, r, "load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleListRates(w http.ResponseWriter, r *http.Request) {
	types, err := s.store.RateTypes(r.Context())
	if err != nil {
		s.fail(w, r, "list rate tables", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"rateTypes": types})
}

func (s *server) handleGetRates(w http.ResponseWriter, r *http.Request) {
	table, err := s.store.RateTable(r.Context(), chi.URLParam(r, "rateType"))
	if err != nil {
		s.fail(w, r, "load rate table", err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *server) handlePutRates(w http.ResponseWriter, r *http.Request) {
	var body rateTableBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid rate table body: "+err.Error())
		return
	}

	table := pricing.RateTable{
		Type:     chi.URLParam(r, "rateType"),
		Currency: body.Currency,
		Brackets: body.Brackets,
	}
	if err := s.store.ReplaceRateTable(r.Context(), table); err != nil {
		s.fail(w, r, "replace rate table", err)
		return
	}

	saved, err := s.store.RateTable(r.Context(), table.Type)
	if err != nil {
		s.fail(w, r, "load rate table", err)
		return
	}
	s.logger.Info("rate table replaced",
		zap.String("rate_type", saved.Type),
		zap.String("currency", string(saved.Currency)),
		zap.Int("brackets", len(saved.Brackets)),
	)
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	containers, err := s.store.ContainerTypes(r.Context())
	if err != nil {
		s.fail(w, r, "list containers", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]pricing.ContainerType{"containers": containers})
}

func (s *server) handleSetContainerActive(w http.ResponseWriter, r *http.Request) {
	var body containerActiveBody
	if err := decodeBody(w, r, &body); err != nil || body.Active == nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", `body must be {"active": true|false}`)
		return
	}

	code := chi.URLParam(r, "code")
	if err := s.store.SetContainerActive(r.Context(), code, *body.Active); err != nil {
		s.fail(w, r, "update container", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": code, "active": *body.Active})
}

func (s *server) handleGetExchangeRates(w http.ResponseWriter, r *http.Request) {
	cached, err := s.store.ExchangeRates(r.Context())
	if err != nil {
		s.fail(w, r, "load exchange rates", err)
		return
	}
	writeJSON(w, http.StatusOK, cached)
}

func (s *server) handleRefreshExchangeRates(w http.ResponseWriter, r *http.Request) {
	quote, err := s.fx.Fetch(r.Context())
	if err != nil {
		s.fail(w, r, "refresh exchange rates", err)
		return
	}

	cached := store.CachedRates{Rates: quote.Rates, Source: quote.Source, FetchedAt: quote.FetchedAt}
	if err := s.store.SaveExchangeRates(r.Context(), cached); err != nil {
		s.fail(w, r, "save exchange rates", err)
		return
	}
	writeJSON(w, http.StatusOK, cached)
}

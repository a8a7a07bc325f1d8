package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Simplici0/landedcost/internal/basket"
	"github.com/Simplici0/landedcost/internal/fxrate"
	"github.com/Simplici0/landedcost/internal/pricing"
	"github.com/Simplici0/landedcost/internal/store"
)

const maxBodyBytes = 1 << 20

type server struct {
	store  *store.Store
	fx     *fxrate.Client
	logger *zap.Logger
	newID  func() string
}

func newServer(st *store.Store, fx *fxrate.Client, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{store: st, fx: fx, logger: logger, newID: uuid.NewString}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", s.handleCalculate)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Get("/rates", s.handleListRates)
		r.Get("/rates/{rateType}", s.handleGetRates)
		r.Put("/rates/{rateType}", s.handlePutRates)
		r.Get("/containers", s.handleListContainers)
		r.Put("/containers/{code}/active", s.handleSetContainerActive)
		r.Get("/exchange-rates", s.handleGetExchangeRates)
		r.Post("/exchange-rates/refresh", s.handleRefreshExchangeRates)
	})
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			s.logger.Info("request completed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// writeJSON writes the payload with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorBody{
		Error:     code,
		Message:   sanitize(message),
		Status:    status,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// fail maps err onto a status and logs anything that is not the caller's
// fault.
func (s *server) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case errors.Is(err, basket.ErrInvalidDocument), errors.Is(err, store.ErrInvalid), errors.Is(err, pricing.ErrMissingSettings):
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, fxrate.ErrUnavailable):
		s.logger.Warn(action+" failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		s.writeError(w, r, http.StatusBadGateway, "exchange_rates_unavailable", "no exchange rate source answered")
	default:
		s.logger.Error(action+" failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, "internal", "failed to "+action)
	}
}

// decodeBody reads a JSON body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func sanitize(value string) string {
	value = strings.ReplaceAll(value, "\n", "; ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > 512 {
		value = value[:512]
	}
	return value
}

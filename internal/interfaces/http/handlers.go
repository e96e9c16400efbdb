package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/stratlab/stratrun/internal/app"
	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/strategy"
)

type handlers struct {
	svc *app.Service
}

type backtestRequest struct {
	Symbol         string  `json:"symbol"`
	Strategy       string  `json:"strategy"`
	Period         string  `json:"period"`
	InitialCapital float64 `json:"initial_capital"`
}

func (h *handlers) backtest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	if req.Period == "" {
		req.Period = "1y"
	}
	if req.InitialCapital == 0 {
		req.InitialCapital = 10_000
	}

	result, err := h.svc.Backtest(r.Context(), req.Symbol, req.Strategy, req.Period, req.InitialCapital)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type optimizeRequest struct {
	Symbol    string             `json:"symbol"`
	Strategy  string             `json:"strategy"`
	Period    string             `json:"period"`
	ParamGrid strategy.ParamGrid `json:"param_grid"`
}

func (h *handlers) optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	if req.Period == "" {
		req.Period = "1y"
	}

	result, err := h.svc.Optimize(r.Context(), req.Symbol, req.Strategy, req.Period, req.ParamGrid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) recommend(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	risk := r.URL.Query().Get("risk_level")
	if risk == "" {
		risk = string(domain.RiskMedium)
	}

	rec, err := h.svc.Recommend(r.Context(), symbol, risk)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handlers) screen(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	strategyID := q.Get("strategy")
	market := q.Get("market")

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, &domain.ValidationError{Field: "limit", Reason: "must be an integer"})
			return
		}
		limit = parsed
	}

	result, err := h.svc.Screen(r.Context(), strategyID, market, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) weights(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1y"
	}

	result, err := h.svc.StrategyWeights(r.Context(), symbol, period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) strategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"strategies": h.svc.StrategyIDs()})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var validation *domain.ValidationError
	var unknown *domain.UnknownStrategyError
	var noCandidates *domain.NoCandidatesError
	var unavailable *domain.DataUnavailableError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &unknown):
		status = http.StatusNotFound
	case errors.As(err, &noCandidates):
		status = http.StatusNotFound
	case errors.As(err, &unavailable):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]any{
		"error":  err.Error(),
		"status": "error",
		"code":   status,
	})
}

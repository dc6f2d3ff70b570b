package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/api/request"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/validation"
)

// SimulationHandler handles portfolio replay HTTP requests
type SimulationHandler struct {
	simulationService *service.SimulationService
	sessionService    *service.SessionService
}

// NewSimulationHandler creates a new SimulationHandler
func NewSimulationHandler(simulationService *service.SimulationService, sessionService *service.SessionService) *SimulationHandler {
	return &SimulationHandler{
		simulationService: simulationService,
		sessionService:    sessionService,
	}
}

// TimelineEntryResponse is one enriched quarter of a replay timeline.
type TimelineEntryResponse struct {
	Year                int      `json:"year"`
	Quarter             int      `json:"quarter"`
	Value               float64  `json:"value"`
	Dividends           float64  `json:"dividends"`
	Return              *float64 `json:"return"`
	CumulativeDividends float64  `json:"cumulative_dividends"`
	TotalValue          float64  `json:"total_value"`
	Drawdown            *float64 `json:"drawdown"`
}

// DetailRowResponse is one per-ticker quarter breakdown.
type DetailRowResponse struct {
	Year      int      `json:"year"`
	Quarter   int      `json:"quarter"`
	Ticker    string   `json:"ticker"`
	Value     *float64 `json:"value"`
	Dividends float64  `json:"dividends"`
}

// KPIResponse is the scalar summary of a replay. Undefined ratios are null.
type KPIResponse struct {
	InitialValue         float64  `json:"initial_value"`
	FinalValue           float64  `json:"final_value"`
	AccruedDividends     float64  `json:"accrued_dividends"`
	TotalReturn          *float64 `json:"total_return"`
	CAGR                 *float64 `json:"cagr"`
	AnnualizedVolatility *float64 `json:"annualized_volatility"`
	HitRatio             *float64 `json:"hit_ratio"`
	MaxDrawdown          *float64 `json:"max_drawdown"`
}

// SimulationResponse is the full replay result.
type SimulationResponse struct {
	BaseYear        int                     `json:"base_year"`
	BaseQuarter     int                     `json:"base_quarter"`
	Timeline        []TimelineEntryResponse `json:"timeline"`
	KPIs            KPIResponse             `json:"kpis"`
	ExcludedTickers []string                `json:"excluded_tickers"`
	Details         []DetailRowResponse     `json:"details"`
}

// Run handles POST requests that replay a portfolio through the quarterly panel.
//
// The portfolio comes either inline in the request body or, when the body has
// no positions, from the session identified by the X-Session-ID header. In
// session mode the base period is the session's selected period, which must be
// complete.
//
// Endpoint: POST /api/simulation/run
// Response: 200 OK with SimulationResponse
// Error: 400 Bad Request on invalid portfolio or period, 404 on unknown session
func (h *SimulationHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req request.RunSimulationRequest
	// An empty or absent body is allowed in session mode.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = request.RunSimulationRequest{}
	}

	var portfolio model.Portfolio
	var baseYear, baseQuarter int

	if len(req.Portfolio) > 0 {
		portfolio = model.Portfolio{}
		for _, payload := range req.Portfolio {
			position := model.Position{
				Ticker:    validation.NormalizeTicker(payload.Ticker),
				Quantity:  payload.Quantity,
				UnitPrice: payload.UnitPrice,
			}
			if err := validation.ValidatePosition(position); err != nil {
				respondJSON(w, http.StatusBadRequest, map[string]string{
					"error":  "invalid portfolio position",
					"detail": err.Error(),
				})
				return
			}
			portfolio[position.Ticker] = position
		}

		base := model.Period{Year: req.BaseYear, Quarter: req.BaseQuarter}
		if err := validation.ValidateReplayBase(base); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error":  "invalid base period",
				"detail": err.Error(),
			})
			return
		}
		baseYear, baseQuarter = base.Year, base.Quarter
	} else {
		sessionID := r.Header.Get("X-Session-ID")
		if sessionID == "" {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": "request must carry a portfolio or an X-Session-ID header",
			})
			return
		}

		base, sessionPortfolio, err := h.sessionService.ReplayBase(sessionID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, apperrors.ErrSessionNotFound) {
				status = http.StatusNotFound
			}
			respondJSON(w, status, map[string]string{
				"error":  "failed to resolve session",
				"detail": err.Error(),
			})
			return
		}
		portfolio = sessionPortfolio
		baseYear, baseQuarter = base.Year, base.Quarter
	}

	outcome, err := h.simulationService.RunSimulation(r.Context(), portfolio, baseYear, baseQuarter)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "failed to run simulation",
			"detail": err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, buildSimulationResponse(baseYear, baseQuarter, outcome))
}

// buildSimulationResponse maps a simulation outcome to its JSON form.
func buildSimulationResponse(baseYear, baseQuarter int, outcome service.SimulationOutcome) SimulationResponse {
	timeline := make([]TimelineEntryResponse, len(outcome.Enriched))
	for i, entry := range outcome.Enriched {
		timeline[i] = TimelineEntryResponse{
			Year:                entry.Year,
			Quarter:             entry.Quarter,
			Value:               entry.Value,
			Dividends:           entry.Dividends,
			Return:              floatPtr(entry.Return),
			CumulativeDividends: entry.CumulativeDividends,
			TotalValue:          entry.TotalValue,
			Drawdown:            floatPtr(entry.Drawdown),
		}
	}

	details := make([]DetailRowResponse, len(outcome.Result.Details))
	for i, detail := range outcome.Result.Details {
		details[i] = DetailRowResponse{
			Year:      detail.Year,
			Quarter:   detail.Quarter,
			Ticker:    detail.Ticker,
			Value:     floatPtr(detail.Value),
			Dividends: detail.Dividends,
		}
	}

	kpis := KPIResponse{
		InitialValue:         outcome.Result.KPIs.InitialValue,
		FinalValue:           outcome.Result.KPIs.FinalValue,
		AccruedDividends:     outcome.Result.KPIs.AccruedDividends,
		TotalReturn:          floatPtr(outcome.Result.KPIs.TotalReturn),
		CAGR:                 floatPtr(outcome.Result.KPIs.CAGR),
		AnnualizedVolatility: floatPtr(outcome.AnnualizedVolatility),
		HitRatio:             floatPtr(outcome.HitRatio),
		MaxDrawdown:          floatPtr(outcome.MaxDrawdown),
	}

	return SimulationResponse{
		BaseYear:        baseYear,
		BaseQuarter:     baseQuarter,
		Timeline:        timeline,
		KPIs:            kpis,
		ExcludedTickers: outcome.Result.ExcludedTickers,
		Details:         details,
	}
}

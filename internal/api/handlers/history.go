package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
)

// HistoryHandler handles simulation run history HTTP requests
type HistoryHandler struct {
	historyService *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// RunResponse is one recorded simulation run. Undefined metrics are null.
type RunResponse struct {
	ID                   string   `json:"id"`
	SimID                string   `json:"sim_id"`
	CreatedAt            string   `json:"created_at"`
	BaseYear             int      `json:"base_year"`
	BaseQuarter          int      `json:"base_quarter"`
	EndYear              int      `json:"end_year"`
	EndQuarter           int      `json:"end_quarter"`
	Tickers              string   `json:"tickers"`
	NumTickers           int      `json:"n_tickers"`
	InitialValue         float64  `json:"initial_value"`
	FinalValue           float64  `json:"final_value"`
	AccruedDividends     float64  `json:"accrued_dividends"`
	TotalReturn          *float64 `json:"total_return"`
	ReturnExDividends    *float64 `json:"return_ex_dividends"`
	CAGR                 *float64 `json:"cagr"`
	AnnualizedVolatility *float64 `json:"annualized_volatility"`
	HitRatio             *float64 `json:"hit_ratio"`
	MaxDrawdown          *float64 `json:"max_drawdown"`
}

// List handles GET requests for all recorded runs, newest first.
//
// Endpoint: GET /api/history
// Response: 200 OK with []RunResponse
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := h.historyService.ListRuns()
	if err != nil {
		errorResponse := map[string]string{
			"error":  "failed to retrieve run history",
			"detail": err.Error(),
		}
		respondJSON(w, http.StatusInternalServerError, errorResponse)
		return
	}

	response := make([]RunResponse, len(runs))
	for i, run := range runs {
		response[i] = RunResponse{
			ID:                   run.ID,
			SimID:                run.SimID,
			CreatedAt:            run.CreatedAt.UTC().Format(time.RFC3339),
			BaseYear:             run.BaseYear,
			BaseQuarter:          run.BaseQuarter,
			EndYear:              run.EndYear,
			EndQuarter:           run.EndQuarter,
			Tickers:              run.Tickers,
			NumTickers:           run.NumTickers,
			InitialValue:         run.InitialValue,
			FinalValue:           run.FinalValue,
			AccruedDividends:     run.AccruedDividends,
			TotalReturn:          floatPtr(run.TotalReturn),
			ReturnExDividends:    floatPtr(run.ReturnExDividends),
			CAGR:                 floatPtr(run.CAGR),
			AnnualizedVolatility: floatPtr(run.AnnualizedVolatility),
			HitRatio:             floatPtr(run.HitRatio),
			MaxDrawdown:          floatPtr(run.MaxDrawdown),
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// Delete handles DELETE requests that remove a recorded run.
//
// Endpoint: DELETE /api/history/{uuid}
// Response: 204 No Content
// Error: 404 Not Found when the run does not exist
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	if err := h.historyService.DeleteRun(id); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperrors.ErrRunNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperrors.ErrInvalidUUID):
			status = http.StatusBadRequest
		}
		errorResponse := map[string]string{
			"error":  "failed to delete run",
			"detail": err.Error(),
		}
		respondJSON(w, status, errorResponse)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

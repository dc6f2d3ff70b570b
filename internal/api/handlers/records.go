package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
)

// RecordsHandler handles statement record ingestion and screening requests
type RecordsHandler struct {
	importService   *service.ImportService
	snapshotService *service.SnapshotService
}

// NewRecordsHandler creates a new RecordsHandler
func NewRecordsHandler(importService *service.ImportService, snapshotService *service.SnapshotService) *RecordsHandler {
	return &RecordsHandler{
		importService:   importService,
		snapshotService: snapshotService,
	}
}

// ImportResponse reports how much an import ingested.
type ImportResponse struct {
	RecordsImported int `json:"records_imported"`
	PanelRows       int `json:"panel_rows"`
}

// Import handles POST requests that upload a statement CSV. The request body
// is the raw CSV.
//
// Endpoint: POST /api/records/import
// Response: 200 OK with ImportResponse
// Error: 400 Bad Request on schema errors, 500 Internal Server Error otherwise
func (h *RecordsHandler) Import(w http.ResponseWriter, r *http.Request) {
	records, panelRows, err := h.importService.ImportCSV(r.Context(), r.Body)
	if err != nil {
		status := http.StatusInternalServerError
		if isSchemaError(err) {
			status = http.StatusBadRequest
		}
		errorResponse := map[string]string{
			"error":  "failed to import records",
			"detail": err.Error(),
		}
		respondJSON(w, status, errorResponse)
		return
	}

	respondJSON(w, http.StatusOK, ImportResponse{
		RecordsImported: records,
		PanelRows:       panelRows,
	})
}

// Refresh handles POST requests that replace the record store from the
// configured statement feed.
//
// Endpoint: POST /api/records/refresh
// Response: 200 OK with ImportResponse
// Error: 503 Service Unavailable when no feed is configured
func (h *RecordsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	records, panelRows, err := h.importService.RefreshFromFeed(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrFeedNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		errorResponse := map[string]string{
			"error":  "failed to refresh records",
			"detail": err.Error(),
		}
		respondJSON(w, status, errorResponse)
		return
	}

	respondJSON(w, http.StatusOK, ImportResponse{
		RecordsImported: records,
		PanelRows:       panelRows,
	})
}

// SnapshotRowResponse is one ticker's latest observation in the screening view.
type SnapshotRowResponse struct {
	Ticker        string   `json:"ticker"`
	ReferenceDate string   `json:"reference_date"`
	Sector        string   `json:"sector,omitempty"`
	Price         *float64 `json:"price"`
	DividendYield *float64 `json:"dividend_yield"`
	PriceEarnings *float64 `json:"price_earnings"`
	ROE           *float64 `json:"roe"`
}

// Snapshot handles GET requests for the latest-row-per-ticker screening view.
// Optional query parameters: year, quarter, sector, search.
//
// Endpoint: GET /api/records/snapshot
// Response: 200 OK with []SnapshotRowResponse
// Error: 400 Bad Request on invalid filters
func (h *RecordsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	filter := model.SnapshotFilter{
		Sector: r.URL.Query().Get("sector"),
		Search: r.URL.Query().Get("search"),
	}
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "year must be a number"})
			return
		}
		filter.Year = year
	}
	if quarterParam := r.URL.Query().Get("quarter"); quarterParam != "" {
		quarter, err := strconv.Atoi(quarterParam)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "quarter must be a number"})
			return
		}
		filter.Quarter = quarter
	}

	records, err := h.snapshotService.LatestSnapshot(filter)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrInvalidQuarter) || errors.Is(err, apperrors.ErrInvalidYear) {
			status = http.StatusBadRequest
		}
		errorResponse := map[string]string{
			"error":  "failed to retrieve snapshot",
			"detail": err.Error(),
		}
		respondJSON(w, status, errorResponse)
		return
	}

	response := make([]SnapshotRowResponse, len(records))
	for i, record := range records {
		response[i] = SnapshotRowResponse{
			Ticker:        record.Ticker,
			ReferenceDate: record.ReferenceDate.Format("2006-01-02"),
			Sector:        record.Sector.String,
			Price:         nullFloatPtr(record.Price),
			DividendYield: nullFloatPtr(record.DividendYield),
			PriceEarnings: nullFloatPtr(record.PriceEarnings),
			ROE:           nullFloatPtr(record.ROE),
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// isSchemaError reports whether err is one of the raw-table schema errors.
func isSchemaError(err error) bool {
	return errors.Is(err, apperrors.ErrMissingDateColumn) ||
		errors.Is(err, apperrors.ErrMissingTickerColumn) ||
		errors.Is(err, apperrors.ErrMissingPriceColumn) ||
		errors.Is(err, apperrors.ErrInvalidCSVHeaders)
}

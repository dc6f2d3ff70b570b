package handlers

import (
	"net/http"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
)

// PanelHandler handles quarterly panel HTTP requests
type PanelHandler struct {
	panelService *service.PanelService
}

// NewPanelHandler creates a new PanelHandler
func NewPanelHandler(panelService *service.PanelService) *PanelHandler {
	return &PanelHandler{
		panelService: panelService,
	}
}

// PanelRowResponse represents one quarterly panel row. Missing aggregates are null.
type PanelRowResponse struct {
	Ticker    string   `json:"ticker"`
	Year      int      `json:"year"`
	Quarter   int      `json:"quarter"`
	Price     *float64 `json:"price"`
	Shares    *float64 `json:"shares"`
	Dividends *float64 `json:"dividends"`
	JCP       *float64 `json:"jcp"`
	DPS       *float64 `json:"dps"`
	DY        *float64 `json:"dy"`
}

// Panel handles GET requests for stored panel rows, optionally filtered by
// the ticker query parameter.
//
// Endpoint: GET /api/panel?ticker=ABCB4
// Response: 200 OK with []PanelRowResponse
func (h *PanelHandler) Panel(w http.ResponseWriter, r *http.Request) {
	rows, err := h.panelService.GetPanel(r.URL.Query().Get("ticker"))
	if err != nil {
		errorResponse := map[string]string{
			"error":  "failed to retrieve panel",
			"detail": err.Error(),
		}
		respondJSON(w, http.StatusInternalServerError, errorResponse)
		return
	}

	response := make([]PanelRowResponse, len(rows))
	for i, row := range rows {
		response[i] = PanelRowResponse{
			Ticker:    row.Ticker,
			Year:      row.Year,
			Quarter:   row.Quarter,
			Price:     floatPtr(row.Price),
			Shares:    floatPtr(row.Shares),
			Dividends: floatPtr(row.Dividends),
			JCP:       floatPtr(row.JCP),
			DPS:       floatPtr(row.DPS),
			DY:        floatPtr(row.DY),
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// RebuildResponse reports how many panel rows a rebuild produced.
type RebuildResponse struct {
	PanelRows int `json:"panel_rows"`
}

// Rebuild handles POST requests that re-materialize the panel from all stored
// statement records.
//
// Endpoint: POST /api/panel/rebuild
// Response: 200 OK with RebuildResponse
func (h *PanelHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	rows, err := h.panelService.RebuildPanel(r.Context())
	if err != nil {
		errorResponse := map[string]string{
			"error":  "failed to rebuild panel",
			"detail": err.Error(),
		}
		respondJSON(w, http.StatusInternalServerError, errorResponse)
		return
	}

	respondJSON(w, http.StatusOK, RebuildResponse{PanelRows: rows})
}

// QuarterResponse is one available fiscal quarter.
type QuarterResponse struct {
	Year    int    `json:"year"`
	Quarter int    `json:"quarter"`
	Label   string `json:"label"`
}

// Quarters handles GET requests listing every fiscal quarter present in the panel.
//
// Endpoint: GET /api/panel/quarters
// Response: 200 OK with []QuarterResponse
func (h *PanelHandler) Quarters(w http.ResponseWriter, r *http.Request) {
	quarters, err := h.panelService.ListQuarters()
	if err != nil {
		errorResponse := map[string]string{
			"error":  "failed to list quarters",
			"detail": err.Error(),
		}
		respondJSON(w, http.StatusInternalServerError, errorResponse)
		return
	}

	response := make([]QuarterResponse, len(quarters))
	for i, q := range quarters {
		response[i] = QuarterResponse{
			Year:    q.Year,
			Quarter: q.Quarter,
			Label:   q.String(),
		}
	}

	respondJSON(w, http.StatusOK, response)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/api/request"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
)

// SessionHandler handles interactive portfolio-building session requests
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// CreateSessionResponse carries the ID of a newly created session.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// PositionResponse is one held position in a session snapshot.
type PositionResponse struct {
	Ticker    string  `json:"ticker"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// SessionResponse is a point-in-time view of a session.
type SessionResponse struct {
	SessionID      string             `json:"session_id"`
	Positions      []PositionResponse `json:"positions"`
	Year           int                `json:"year"`
	Quarter        int                `json:"quarter"`
	Locked         bool               `json:"locked"`
	PortfolioReset bool               `json:"portfolio_reset,omitempty"`
}

// Create handles POST requests that open a new session.
//
// Endpoint: POST /api/session
// Response: 201 Created with CreateSessionResponse
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := h.sessionService.CreateSession()
	respondJSON(w, http.StatusCreated, CreateSessionResponse{SessionID: id})
}

// Get handles GET requests for a session's current state.
//
// Endpoint: GET /api/session/{sessionId}
// Response: 200 OK with SessionResponse
// Error: 404 Not Found on unknown session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.sessionService.Snapshot(chi.URLParam(r, "sessionId"))
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildSessionResponse(snapshot, false))
}

// SetPeriod handles PUT requests that select the session's base period.
// Changing the period while positions exist clears the portfolio; the
// response's portfolio_reset flag reports when that happened.
//
// Endpoint: PUT /api/session/{sessionId}/period
// Response: 200 OK with SessionResponse
// Error: 400 Bad Request on invalid period, 404 on unknown session
func (h *SessionHandler) SetPeriod(w http.ResponseWriter, r *http.Request) {
	var req request.SetPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sessionID := chi.URLParam(r, "sessionId")
	cleared, err := h.sessionService.SetPeriod(sessionID, model.Period{Year: req.Year, Quarter: req.Quarter})
	if err != nil {
		respondSessionError(w, err)
		return
	}

	snapshot, err := h.sessionService.Snapshot(sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildSessionResponse(snapshot, cleared))
}

// AddPosition handles POST requests that add a position to the session's
// working portfolio. Re-adding a held ticker replaces the position.
//
// Endpoint: POST /api/session/{sessionId}/positions
// Response: 200 OK with SessionResponse
// Error: 400 Bad Request on invalid position, 404 on unknown session
func (h *SessionHandler) AddPosition(w http.ResponseWriter, r *http.Request) {
	var req request.PositionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sessionID := chi.URLParam(r, "sessionId")
	position := model.Position{
		Ticker:    req.Ticker,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}
	cleared, err := h.sessionService.AddPosition(sessionID, position)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	snapshot, err := h.sessionService.Snapshot(sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildSessionResponse(snapshot, cleared))
}

// RemovePosition handles DELETE requests that drop a held position.
//
// Endpoint: DELETE /api/session/{sessionId}/positions/{ticker}
// Response: 200 OK with SessionResponse
// Error: 404 Not Found on unknown session or ticker
func (h *SessionHandler) RemovePosition(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if err := h.sessionService.RemovePosition(sessionID, chi.URLParam(r, "ticker")); err != nil {
		respondSessionError(w, err)
		return
	}

	snapshot, err := h.sessionService.Snapshot(sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildSessionResponse(snapshot, false))
}

// ClearPortfolio handles DELETE requests that empty the working portfolio.
//
// Endpoint: DELETE /api/session/{sessionId}/positions
// Response: 200 OK with SessionResponse
// Error: 404 Not Found on unknown session
func (h *SessionHandler) ClearPortfolio(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if err := h.sessionService.ClearPortfolio(sessionID); err != nil {
		respondSessionError(w, err)
		return
	}

	snapshot, err := h.sessionService.Snapshot(sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildSessionResponse(snapshot, false))
}

// buildSessionResponse maps a session snapshot to its JSON form, with
// positions sorted by ticker for stable output.
func buildSessionResponse(snapshot service.SessionSnapshot, reset bool) SessionResponse {
	positions := make([]PositionResponse, 0, len(snapshot.Portfolio))
	for _, position := range snapshot.Portfolio {
		positions = append(positions, PositionResponse{
			Ticker:    position.Ticker,
			Quantity:  position.Quantity,
			UnitPrice: position.UnitPrice,
		})
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Ticker < positions[j].Ticker })

	return SessionResponse{
		SessionID:      snapshot.ID,
		Positions:      positions,
		Year:           snapshot.Selected.Year,
		Quarter:        snapshot.Selected.Quarter,
		Locked:         snapshot.Locked,
		PortfolioReset: reset,
	}
}

// respondSessionError maps session-layer errors to HTTP statuses.
func respondSessionError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, apperrors.ErrSessionNotFound) || errors.Is(err, apperrors.ErrPositionNotFound) {
		status = http.StatusNotFound
	}
	respondJSON(w, status, map[string]string{
		"error":  "session request failed",
		"detail": err.Error(),
	})
}

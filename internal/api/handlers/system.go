package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/api/request"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService   *service.SystemService
	settingsService *service.SettingsService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService, settingsService *service.SettingsService) *SystemHandler {
	return &SystemHandler{
		systemService:   systemService,
		settingsService: settingsService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.systemService.CheckHealth(); err != nil {
		response := HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		}
		respondJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	response := HealthResponse{
		Status:   "healthy",
		Database: "connected",
	}
	respondJSON(w, http.StatusOK, response)
}

// VersionInfoResponse represents the version check response.
type VersionInfoResponse struct {
	AppVersion string `json:"app_version"`
	DbVersion  string `json:"db_version"`
}

// Version handles GET requests to retrieve version information.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfoResponse
// Error: 500 Internal Server Error if version check fails
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	version, err := h.systemService.CheckVersion()
	if err != nil {
		errorResponse := map[string]string{
			"error":  "failed to get version information",
			"detail": err.Error(),
		}
		respondJSON(w, http.StatusInternalServerError, errorResponse)
		return
	}

	response := VersionInfoResponse{
		AppVersion: version.AppVersion,
		DbVersion:  version.DBVersion,
	}

	respondJSON(w, http.StatusOK, response)
}

// SetFeedToken handles PUT requests to store the statement feed token.
//
// Endpoint: PUT /api/system/feed-token
// Response: 204 No Content
// Error: 400 Bad Request on invalid body, 503 when no encryption key is configured
func (h *SystemHandler) SetFeedToken(w http.ResponseWriter, r *http.Request) {
	var req request.SetFeedTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		errorResponse := map[string]string{
			"error": "request body must contain a non-empty token",
		}
		respondJSON(w, http.StatusBadRequest, errorResponse)
		return
	}

	if err := h.settingsService.SetFeedToken(req.Token); err != nil {
		errorResponse := map[string]string{
			"error":  "failed to store feed token",
			"detail": err.Error(),
		}
		respondJSON(w, http.StatusServiceUnavailable, errorResponse)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/testutil"
)

func TestSystemHandler_Health(t *testing.T) {
	setupHandler := func(t *testing.T) (*SystemHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		systemService := testutil.NewTestSystemService(t, db)
		settingsService := testutil.NewTestSettingsService(t, db)
		return NewSystemHandler(systemService, settingsService), db
	}

	t.Run("returns healthy status when database is connected", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response HealthResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Status != "healthy" {
			t.Errorf("Expected status 'healthy', got '%s'", response.Status)
		}

		if response.Database != "connected" {
			t.Errorf("Expected database 'connected', got '%s'", response.Database)
		}
	})

	t.Run("returns 503 when database is disconnected", func(t *testing.T) {
		handler, db := setupHandler(t)

		// Close the database connection to simulate failure
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestSystemHandler_Version(t *testing.T) {
	t.Run("returns version information successfully", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(
			testutil.NewTestSystemService(t, db),
			testutil.NewTestSettingsService(t, db),
		)

		req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
		w := httptest.NewRecorder()

		handler.Version(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response VersionInfoResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.AppVersion == "" {
			t.Error("Expected app_version to be populated")
		}

		// Test databases are built without migrations, so the schema version is 0.
		if response.DbVersion != "0" {
			t.Errorf("Expected db_version '0', got '%s'", response.DbVersion)
		}
	})
}

func TestSystemHandler_SetFeedToken(t *testing.T) {
	setupHandler := func(t *testing.T) (*SystemHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		systemService := testutil.NewTestSystemService(t, db)
		settingsService := testutil.NewTestSettingsService(t, db)
		return NewSystemHandler(systemService, settingsService), db
	}

	t.Run("stores the token and returns 204", func(t *testing.T) {
		handler, db := setupHandler(t)

		body := strings.NewReader(`{"token": "secret-feed-token"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/system/feed-token", body)
		w := httptest.NewRecorder()

		handler.SetFeedToken(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}

		testutil.AssertRowCount(t, db, "system_setting", 1)
	})

	t.Run("rejects an empty token", func(t *testing.T) {
		handler, _ := setupHandler(t)

		body := strings.NewReader(`{"token": ""}`)
		req := httptest.NewRequest(http.MethodPut, "/api/system/feed-token", body)
		w := httptest.NewRecorder()

		handler.SetFeedToken(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		handler, _ := setupHandler(t)

		body := strings.NewReader(`not json`)
		req := httptest.NewRequest(http.MethodPut, "/api/system/feed-token", body)
		w := httptest.NewRecorder()

		handler.SetFeedToken(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

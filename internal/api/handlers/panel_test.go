package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/testutil"
)

func setupPanelHandler(t *testing.T) (*PanelHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	panelService := testutil.NewTestPanelService(t, db)
	return NewPanelHandler(panelService), db
}

func TestPanelHandler_Panel(t *testing.T) {
	t.Run("returns stored panel rows", func(t *testing.T) {
		handler, db := setupPanelHandler(t)

		testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).WithDPS(0.5).Insert(t, db)
		testutil.NewPanelRow("ITSA4").At(2023, 1).WithPrice(9).Insert(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/panel", nil)
		w := httptest.NewRecorder()

		handler.Panel(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []PanelRowResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Fatalf("Expected 2 rows, got %d", len(response))
		}
	})

	t.Run("filters by ticker", func(t *testing.T) {
		handler, db := setupPanelHandler(t)

		testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Insert(t, db)
		testutil.NewPanelRow("ITSA4").At(2023, 1).WithPrice(9).Insert(t, db)

		req := testutil.NewRequestWithQueryParams(
			http.MethodGet,
			"/api/panel",
			map[string]string{"ticker": "ABCB4"},
		)
		w := httptest.NewRecorder()

		handler.Panel(w, req)

		var response []PanelRowResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 || response[0].Ticker != "ABCB4" {
			t.Errorf("Expected only ABCB4 rows, got %+v", response)
		}
	})

	t.Run("missing aggregates serialize as null", func(t *testing.T) {
		handler, db := setupPanelHandler(t)

		testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Insert(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/panel", nil)
		w := httptest.NewRecorder()

		handler.Panel(w, req)

		var response []PanelRowResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response[0].Price == nil || *response[0].Price != 10 {
			t.Errorf("Expected price 10, got %v", response[0].Price)
		}
		if response[0].DPS != nil || response[0].Shares != nil {
			t.Error("Expected absent aggregates to be null")
		}
	})
}

func TestPanelHandler_Rebuild(t *testing.T) {
	t.Run("rebuilds the panel from stored records", func(t *testing.T) {
		handler, db := setupPanelHandler(t)

		testutil.NewStatementRecord().
			WithTicker("ABCB4").
			WithDate(2023, 2, 15).
			WithPrice(10).
			Build(t, db)

		req := httptest.NewRequest(http.MethodPost, "/api/panel/rebuild", nil)
		w := httptest.NewRecorder()

		handler.Rebuild(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response RebuildResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.PanelRows != 1 {
			t.Errorf("Expected 1 panel row, got %d", response.PanelRows)
		}
		testutil.AssertRowCount(t, db, "quarterly_panel", 1)
	})
}

func TestPanelHandler_Quarters(t *testing.T) {
	t.Run("lists available quarters with labels", func(t *testing.T) {
		handler, db := setupPanelHandler(t)

		testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Insert(t, db)
		testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(11).Insert(t, db)
		testutil.NewPanelRow("ITSA4").At(2023, 1).WithPrice(9).Insert(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/panel/quarters", nil)
		w := httptest.NewRecorder()

		handler.Quarters(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []QuarterResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Fatalf("Expected 2 distinct quarters, got %d", len(response))
		}
		if response[0].Label != "2023T1" {
			t.Errorf("Expected label 2023T1, got %s", response[0].Label)
		}
	})
}

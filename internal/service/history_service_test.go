package service_test

import (
	"math"
	"strings"
	"testing"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/testutil"
)

func sampleResult() model.ReplayResult {
	return model.ReplayResult{
		Timeline: []model.QuarterSnapshot{
			{Year: 2023, Quarter: 2, Value: 1200, Dividends: 50},
			{Year: 2023, Quarter: 3, Value: 1300, Dividends: 0},
		},
		KPIs: model.SimulationKPIs{
			InitialValue:     1000,
			FinalValue:       1300,
			AccruedDividends: 50,
			TotalReturn:      0.35,
			CAGR:             0.35,
		},
		ExcludedTickers: []string{},
		Details:         []model.DetailRow{},
	}
}

// TestPortfolioSignature tests the canonical portfolio form.
//
// WHY: The signature feeds the run key, which deduplicates history. If it
// depended on map iteration order, re-running the same portfolio would create
// spurious history entries.
func TestPortfolioSignature(t *testing.T) {
	t.Run("is independent of insertion order", func(t *testing.T) {
		a := model.Portfolio{
			"ITSA4": {Ticker: "ITSA4", Quantity: 20, UnitPrice: 9.5},
			"ABCB4": {Ticker: "ABCB4", Quantity: 10, UnitPrice: 21.3},
		}
		b := model.Portfolio{
			"ABCB4": {Ticker: "ABCB4", Quantity: 10, UnitPrice: 21.3},
			"ITSA4": {Ticker: "ITSA4", Quantity: 20, UnitPrice: 9.5},
		}

		if service.PortfolioSignature(a) != service.PortfolioSignature(b) {
			t.Error("Expected identical signatures regardless of insertion order")
		}
	})

	t.Run("encodes ticker quantity and unit price", func(t *testing.T) {
		portfolio := model.Portfolio{
			"ABCB4": {Ticker: "ABCB4", Quantity: 10, UnitPrice: 21.3},
		}

		signature := service.PortfolioSignature(portfolio)

		if signature != "ABCB4:10@21.3000" {
			t.Errorf("Unexpected signature: %s", signature)
		}
	})

	t.Run("joins positions with pipe in ticker order", func(t *testing.T) {
		portfolio := model.Portfolio{
			"ITSA4": {Ticker: "ITSA4", Quantity: 20, UnitPrice: 9.5},
			"ABCB4": {Ticker: "ABCB4", Quantity: 10, UnitPrice: 21.3},
		}

		signature := service.PortfolioSignature(portfolio)

		if !strings.HasPrefix(signature, "ABCB4:") {
			t.Errorf("Expected ABCB4 first in signature, got %s", signature)
		}
		if strings.Count(signature, "|") != 1 {
			t.Errorf("Expected one separator, got %s", signature)
		}
	})
}

// TestHistoryService_SaveRun tests run recording and deduplication.
//
// WHY: History is the only persistent trace of simulations. The dedupe rule
// (same composition and period replaces, anything else appends) defines what
// "same scenario" means to the user.
func TestHistoryService_SaveRun(t *testing.T) {
	portfolio := model.Portfolio{
		"ABCB4": {Ticker: "ABCB4", Quantity: 100, UnitPrice: 10},
	}

	t.Run("records a completed run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db)

		err := svc.SaveRun(portfolio, 2023, 1, sampleResult(), 0.2, 1.0, -0.05)
		if err != nil {
			t.Fatalf("SaveRun() returned unexpected error: %v", err)
		}

		runs, err := svc.ListRuns()
		if err != nil {
			t.Fatalf("ListRuns() returned unexpected error: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("Expected 1 run, got %d", len(runs))
		}

		run := runs[0]
		if run.BaseYear != 2023 || run.BaseQuarter != 1 {
			t.Errorf("Expected base 2023T1, got %dT%d", run.BaseYear, run.BaseQuarter)
		}
		if run.EndYear != 2023 || run.EndQuarter != 3 {
			t.Errorf("Expected end from last snapshot 2023T3, got %dT%d", run.EndYear, run.EndQuarter)
		}
		if run.Tickers != "ABCB4" || run.NumTickers != 1 {
			t.Errorf("Unexpected ticker summary: %s (%d)", run.Tickers, run.NumTickers)
		}
		if math.Abs(run.ReturnExDividends-0.3) > 1e-9 {
			t.Errorf("Expected ex-dividend return 0.3, got %v", run.ReturnExDividends)
		}
	})

	t.Run("same scenario replaces the earlier record", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db)

		if err := svc.SaveRun(portfolio, 2023, 1, sampleResult(), 0.2, 1.0, -0.05); err != nil {
			t.Fatalf("First SaveRun() returned unexpected error: %v", err)
		}
		if err := svc.SaveRun(portfolio, 2023, 1, sampleResult(), 0.3, 0.5, -0.10); err != nil {
			t.Fatalf("Second SaveRun() returned unexpected error: %v", err)
		}

		runs, err := svc.ListRuns()
		if err != nil {
			t.Fatalf("ListRuns() returned unexpected error: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("Expected dedupe to keep 1 run, got %d", len(runs))
		}
		if math.Abs(runs[0].AnnualizedVolatility-0.3) > 1e-9 {
			t.Errorf("Expected the later metrics to win, got vol %v", runs[0].AnnualizedVolatility)
		}
	})

	t.Run("different composition appends a new record", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db)

		other := model.Portfolio{
			"ABCB4": {Ticker: "ABCB4", Quantity: 200, UnitPrice: 10},
		}

		if err := svc.SaveRun(portfolio, 2023, 1, sampleResult(), 0.2, 1.0, -0.05); err != nil {
			t.Fatalf("SaveRun() returned unexpected error: %v", err)
		}
		if err := svc.SaveRun(other, 2023, 1, sampleResult(), 0.2, 1.0, -0.05); err != nil {
			t.Fatalf("SaveRun() returned unexpected error: %v", err)
		}

		testutil.AssertRowCount(t, db, "simulation_run", 2)
	})

	t.Run("empty timeline is a silent no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db)

		empty := model.ReplayResult{Timeline: []model.QuarterSnapshot{}}
		if err := svc.SaveRun(portfolio, 2023, 1, empty, math.NaN(), math.NaN(), math.NaN()); err != nil {
			t.Fatalf("SaveRun() returned unexpected error: %v", err)
		}

		testutil.AssertRowCount(t, db, "simulation_run", 0)
	})

	t.Run("NaN metrics survive a round trip as NaN", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db)

		if err := svc.SaveRun(portfolio, 2023, 1, sampleResult(), math.NaN(), math.NaN(), math.NaN()); err != nil {
			t.Fatalf("SaveRun() returned unexpected error: %v", err)
		}

		runs, err := svc.ListRuns()
		if err != nil {
			t.Fatalf("ListRuns() returned unexpected error: %v", err)
		}
		if !math.IsNaN(runs[0].AnnualizedVolatility) || !math.IsNaN(runs[0].HitRatio) || !math.IsNaN(runs[0].MaxDrawdown) {
			t.Error("Expected NaN metrics to round-trip through NULL storage")
		}
	})
}

// TestHistoryService_DeleteRun tests run removal.
func TestHistoryService_DeleteRun(t *testing.T) {
	portfolio := model.Portfolio{
		"ABCB4": {Ticker: "ABCB4", Quantity: 100, UnitPrice: 10},
	}

	t.Run("removes an existing run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db)

		if err := svc.SaveRun(portfolio, 2023, 1, sampleResult(), 0.2, 1.0, -0.05); err != nil {
			t.Fatalf("SaveRun() returned unexpected error: %v", err)
		}
		runs, _ := svc.ListRuns()

		if err := svc.DeleteRun(runs[0].ID); err != nil {
			t.Fatalf("DeleteRun() returned unexpected error: %v", err)
		}

		testutil.AssertRowCount(t, db, "simulation_run", 0)
	})

	t.Run("unknown run returns ErrRunNotFound", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db)

		err := svc.DeleteRun(testutil.MakeID())
		if err != apperrors.ErrRunNotFound {
			t.Errorf("Expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("malformed id returns ErrInvalidUUID", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db)

		err := svc.DeleteRun("not-a-uuid")
		if err != apperrors.ErrInvalidUUID {
			t.Errorf("Expected ErrInvalidUUID, got %v", err)
		}
	})
}

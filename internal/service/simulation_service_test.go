package service_test

import (
	"context"
	"math"
	"testing"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/testutil"
)

func singlePosition(ticker string, quantity int) model.Portfolio {
	return model.Portfolio{
		ticker: {Ticker: ticker, Quantity: quantity, UnitPrice: 0},
	}
}

// TestSimulationService_Replay tests the quarterly replay engine.
//
// WHY: The replay is the core product. Base pricing, exclusion, quarter
// enumeration, and the carry-forward rule each have precise semantics that
// the KPIs depend on; an off-by-one in any of them skews every reported
// return.
func TestSimulationService_Replay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSimulationService(t, db)

	t.Run("single ticker single quarter", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(12).WithDPS(0.5).Row(),
		}

		result := svc.Replay(singlePosition("ABCB4", 100), panel, 2023, 1)

		if result.KPIs.InitialValue != 1000 {
			t.Errorf("Expected initial value 1000, got %v", result.KPIs.InitialValue)
		}
		if len(result.Timeline) != 1 {
			t.Fatalf("Expected 1 timeline quarter, got %d", len(result.Timeline))
		}
		if result.Timeline[0].Value != 1200 {
			t.Errorf("Expected quarter value 1200, got %v", result.Timeline[0].Value)
		}
		if result.Timeline[0].Dividends != 50 {
			t.Errorf("Expected quarter dividends 50, got %v", result.Timeline[0].Dividends)
		}
		if math.Abs(result.KPIs.TotalReturn-0.25) > 1e-9 {
			t.Errorf("Expected total return 0.25, got %v", result.KPIs.TotalReturn)
		}
		expectedCAGR := math.Pow(1.25, 4) - 1
		if math.Abs(result.KPIs.CAGR-expectedCAGR) > 1e-9 {
			t.Errorf("Expected CAGR %v, got %v", expectedCAGR, result.KPIs.CAGR)
		}
	})

	t.Run("ticker without base price is excluded entirely", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(12).Row(),
			testutil.NewPanelRow("XXXX3").At(2023, 2).WithPrice(99).Row(),
		}
		portfolio := model.Portfolio{
			"ABCB4": {Ticker: "ABCB4", Quantity: 10},
			"XXXX3": {Ticker: "XXXX3", Quantity: 10},
		}

		result := svc.Replay(portfolio, panel, 2023, 1)

		if len(result.ExcludedTickers) != 1 || result.ExcludedTickers[0] != "XXXX3" {
			t.Fatalf("Expected XXXX3 excluded, got %v", result.ExcludedTickers)
		}
		if result.KPIs.InitialValue != 100 {
			t.Errorf("Expected initial value from surviving ticker only, got %v", result.KPIs.InitialValue)
		}
		// XXXX3 must not re-enter in later quarters despite having a price there.
		if result.Timeline[0].Value != 120 {
			t.Errorf("Expected 2023T2 value 120 without excluded ticker, got %v", result.Timeline[0].Value)
		}
	})

	t.Run("NaN base price excludes like a missing row", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2023, 1).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(12).Row(),
		}

		result := svc.Replay(singlePosition("ABCB4", 10), panel, 2023, 1)

		if len(result.ExcludedTickers) != 1 {
			t.Fatalf("Expected 1 excluded ticker, got %v", result.ExcludedTickers)
		}
		if len(result.Timeline) != 0 {
			t.Errorf("Expected empty timeline with no survivors, got %d quarters", len(result.Timeline))
		}
		if !math.IsNaN(result.KPIs.TotalReturn) || !math.IsNaN(result.KPIs.CAGR) {
			t.Error("Expected NaN ratios with no survivors")
		}
	})

	t.Run("empty portfolio yields empty result without error", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Row(),
		}

		result := svc.Replay(model.Portfolio{}, panel, 2023, 1)

		if len(result.Timeline) != 0 || len(result.Details) != 0 {
			t.Error("Expected empty timeline and details for empty portfolio")
		}
		if result.KPIs.InitialValue != 0 {
			t.Errorf("Expected zero initial value, got %v", result.KPIs.InitialValue)
		}
	})

	t.Run("quarters enumerate in ascending order across years", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2022, 4).WithPrice(10).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(14).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(12).Row(),
			testutil.NewPanelRow("ABCB4").At(2024, 1).WithPrice(16).Row(),
		}

		result := svc.Replay(singlePosition("ABCB4", 1), panel, 2022, 4)

		if len(result.Timeline) != 3 {
			t.Fatalf("Expected 3 quarters after base, got %d", len(result.Timeline))
		}
		labels := []string{"2023T1", "2023T2", "2024T1"}
		for i, snapshot := range result.Timeline {
			if got := snapshot.QuarterKey().String(); got != labels[i] {
				t.Errorf("Expected quarter %s at index %d, got %s", labels[i], i, got)
			}
		}
	})

	t.Run("quarters at or before the base are never replayed", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2022, 3).WithPrice(8).Row(),
			testutil.NewPanelRow("ABCB4").At(2022, 4).WithPrice(9).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Row(),
		}

		result := svc.Replay(singlePosition("ABCB4", 1), panel, 2022, 4)

		if len(result.Timeline) != 1 {
			t.Fatalf("Expected only quarters after the base, got %d", len(result.Timeline))
		}
		if result.Timeline[0].Year != 2023 {
			t.Errorf("Expected 2023T1, got %dT%d", result.Timeline[0].Year, result.Timeline[0].Quarter)
		}
	})

	t.Run("unpriced quarter carries prior value forward", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(12).Row(),
			// 2023T3 exists in the panel through another ticker but ABCB4 has no price.
			testutil.NewPanelRow("ITSA4").At(2023, 3).WithPrice(5).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 4).WithPrice(14).Row(),
		}

		result := svc.Replay(singlePosition("ABCB4", 10), panel, 2023, 1)

		if len(result.Timeline) != 3 {
			t.Fatalf("Expected 3 quarters, got %d", len(result.Timeline))
		}
		if result.Timeline[0].Value != 120 {
			t.Errorf("Expected 2023T2 value 120, got %v", result.Timeline[0].Value)
		}
		if result.Timeline[1].Value != 120 {
			t.Errorf("Expected 2023T3 to carry 120 forward, got %v", result.Timeline[1].Value)
		}
		if result.Timeline[2].Value != 140 {
			t.Errorf("Expected 2023T4 value 140, got %v", result.Timeline[2].Value)
		}
	})

	t.Run("dividends accumulate across quarters", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(10).WithDPS(0.5).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 3).WithPrice(10).WithDPS(0.3).Row(),
		}

		result := svc.Replay(singlePosition("ABCB4", 10), panel, 2023, 1)

		if math.Abs(result.KPIs.AccruedDividends-8) > 1e-9 {
			t.Errorf("Expected accrued dividends 8, got %v", result.KPIs.AccruedDividends)
		}
	})

	t.Run("details carry NaN value but zero dividends for unpriced tickers", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Row(),
			testutil.NewPanelRow("ITSA4").At(2023, 1).WithPrice(5).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(12).Row(),
		}
		portfolio := model.Portfolio{
			"ABCB4": {Ticker: "ABCB4", Quantity: 10},
			"ITSA4": {Ticker: "ITSA4", Quantity: 10},
		}

		result := svc.Replay(portfolio, panel, 2023, 1)

		if len(result.Details) != 2 {
			t.Fatalf("Expected a detail row per surviving ticker per quarter, got %d", len(result.Details))
		}
		for _, detail := range result.Details {
			if detail.Ticker == "ITSA4" {
				if !math.IsNaN(detail.Value) {
					t.Errorf("Expected NaN value for unpriced ITSA4, got %v", detail.Value)
				}
				if detail.Dividends != 0 {
					t.Errorf("Expected zero dividends for unpriced ITSA4, got %v", detail.Dividends)
				}
			}
		}
	})

	t.Run("replay is deterministic for identical inputs", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Row(),
			testutil.NewPanelRow("ITSA4").At(2023, 1).WithPrice(5).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(12).WithDPS(0.4).Row(),
			testutil.NewPanelRow("ITSA4").At(2023, 2).WithPrice(6).WithDPS(0.1).Row(),
		}
		portfolio := model.Portfolio{
			"ABCB4": {Ticker: "ABCB4", Quantity: 10},
			"ITSA4": {Ticker: "ITSA4", Quantity: 20},
		}

		first := svc.Replay(portfolio, panel, 2023, 1)
		second := svc.Replay(portfolio, panel, 2023, 1)

		if first.KPIs != second.KPIs {
			t.Errorf("Expected identical KPIs, got %+v vs %+v", first.KPIs, second.KPIs)
		}
		if len(first.Timeline) != len(second.Timeline) {
			t.Fatalf("Expected identical timelines")
		}
		for i := range first.Timeline {
			if first.Timeline[i] != second.Timeline[i] {
				t.Errorf("Timeline diverges at index %d", i)
			}
		}
	})

	t.Run("portfolio tickers are normalized before matching", func(t *testing.T) {
		panel := []model.PanelRow{
			testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Row(),
			testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(12).Row(),
		}
		portfolio := model.Portfolio{
			" abcb4 ": {Ticker: " abcb4 ", Quantity: 10},
		}

		result := svc.Replay(portfolio, panel, 2023, 1)

		if len(result.ExcludedTickers) != 0 {
			t.Errorf("Expected normalized ticker to match, exclusions: %v", result.ExcludedTickers)
		}
		if result.KPIs.InitialValue != 100 {
			t.Errorf("Expected initial value 100, got %v", result.KPIs.InitialValue)
		}
	})
}

// TestSimulationService_RunSimulation tests the orchestration around Replay.
//
// WHY: RunSimulation wires storage, metrics, and history together. The replay
// must read the stored panel and a completed run must land in history exactly
// once per scenario.
func TestSimulationService_RunSimulation(t *testing.T) {
	t.Run("replays stored panel and records the run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSimulationService(t, db)

		testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Insert(t, db)
		testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(12).WithDPS(0.5).Insert(t, db)

		outcome, err := svc.RunSimulation(context.Background(), singlePosition("ABCB4", 100), 2023, 1)
		if err != nil {
			t.Fatalf("RunSimulation() returned unexpected error: %v", err)
		}

		if outcome.Result.KPIs.InitialValue != 1000 {
			t.Errorf("Expected initial value 1000, got %v", outcome.Result.KPIs.InitialValue)
		}
		if len(outcome.Enriched) != 1 {
			t.Errorf("Expected 1 enriched quarter, got %d", len(outcome.Enriched))
		}
		testutil.AssertRowCount(t, db, "simulation_run", 1)
	})

	t.Run("re-running the same scenario does not duplicate history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSimulationService(t, db)

		testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Insert(t, db)
		testutil.NewPanelRow("ABCB4").At(2023, 2).WithPrice(12).Insert(t, db)

		portfolio := singlePosition("ABCB4", 100)
		if _, err := svc.RunSimulation(context.Background(), portfolio, 2023, 1); err != nil {
			t.Fatalf("First run returned unexpected error: %v", err)
		}
		if _, err := svc.RunSimulation(context.Background(), portfolio, 2023, 1); err != nil {
			t.Fatalf("Second run returned unexpected error: %v", err)
		}

		testutil.AssertRowCount(t, db, "simulation_run", 1)
	})

	t.Run("empty replay is not recorded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSimulationService(t, db)

		if _, err := svc.RunSimulation(context.Background(), singlePosition("ABCB4", 100), 2023, 1); err != nil {
			t.Fatalf("RunSimulation() returned unexpected error: %v", err)
		}

		testutil.AssertRowCount(t, db, "simulation_run", 0)
	})
}

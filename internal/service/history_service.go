package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/repository"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/validation"
)

// HistoryService records completed simulation runs and serves the run ledger.
// Runs are deduplicated by a deterministic key derived from the portfolio
// composition and the simulated period, so re-running the same scenario
// refreshes one record instead of piling up copies.
type HistoryService struct {
	historyRepo *repository.HistoryRepository
}

// NewHistoryService creates a new HistoryService with the provided repository.
func NewHistoryService(historyRepo *repository.HistoryRepository) *HistoryService {
	return &HistoryService{historyRepo: historyRepo}
}

// PortfolioSignature builds a canonical textual form of a portfolio: one
// "TICKER:qty@unitprice" segment per position, sorted by ticker and joined
// with "|". Two portfolios with the same positions produce the same signature
// regardless of insertion order.
func PortfolioSignature(portfolio model.Portfolio) string {
	tickers := make([]string, 0, len(portfolio))
	for ticker := range portfolio {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	segments := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		position := portfolio[ticker]
		segments = append(segments, fmt.Sprintf("%s:%d@%.4f", ticker, position.Quantity, position.UnitPrice))
	}
	return strings.Join(segments, "|")
}

// RunKey builds the deduplication key for a run: the simulated period span
// plus the portfolio signature.
func RunKey(portfolio model.Portfolio, baseYear, baseQuarter, endYear, endQuarter int) string {
	return fmt.Sprintf("%dT%d->%dT%d|%s",
		baseYear, baseQuarter, endYear, endQuarter, PortfolioSignature(portfolio))
}

// SaveRun records a completed replay in the run ledger.
//
// Runs with an empty timeline or an empty portfolio are not recorded; there
// is nothing to compare such a run against. The end period is taken from the
// last timeline snapshot. Saving a run whose key already exists replaces the
// earlier record.
func (s *HistoryService) SaveRun(portfolio model.Portfolio, baseYear, baseQuarter int, result model.ReplayResult, volatility, hitRatio, maxDrawdown float64) error {
	if len(result.Timeline) == 0 || len(portfolio) == 0 {
		return nil
	}

	last := result.Timeline[len(result.Timeline)-1]

	tickers := make([]string, 0, len(portfolio))
	for ticker := range portfolio {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	returnExDividends := math.NaN()
	if result.KPIs.InitialValue > 0 {
		returnExDividends = result.KPIs.FinalValue/result.KPIs.InitialValue - 1
	}

	now := time.Now().UTC()
	run := model.SimulationRun{
		ID:                   uuid.NewString(),
		SimID:                now.Format("20060102150405"),
		RunKey:               RunKey(portfolio, baseYear, baseQuarter, last.Year, last.Quarter),
		CreatedAt:            now,
		BaseYear:             baseYear,
		BaseQuarter:          baseQuarter,
		EndYear:              last.Year,
		EndQuarter:           last.Quarter,
		Tickers:              strings.Join(tickers, ","),
		NumTickers:           len(tickers),
		InitialValue:         result.KPIs.InitialValue,
		FinalValue:           result.KPIs.FinalValue,
		AccruedDividends:     result.KPIs.AccruedDividends,
		TotalReturn:          result.KPIs.TotalReturn,
		ReturnExDividends:    returnExDividends,
		CAGR:                 result.KPIs.CAGR,
		AnnualizedVolatility: volatility,
		HitRatio:             hitRatio,
		MaxDrawdown:          maxDrawdown,
	}

	if err := s.historyRepo.SaveRun(run); err != nil {
		return fmt.Errorf("failed to save simulation run: %w", err)
	}
	return nil
}

// ListRuns retrieves all recorded runs, newest first.
func (s *HistoryService) ListRuns() ([]model.SimulationRun, error) {
	return s.historyRepo.GetRuns()
}

// DeleteRun removes a recorded run by its primary key.
func (s *HistoryService) DeleteRun(id string) error {
	if err := validation.ValidateUUID(id); err != nil {
		return err
	}
	return s.historyRepo.DeleteRun(id)
}

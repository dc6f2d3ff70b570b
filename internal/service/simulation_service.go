package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/repository"
)

// quartersPerYear converts quarterly figures to annual ones: the CAGR exponent
// and the volatility annualization factor both encode it.
const quartersPerYear = 4

// SimulationService replays a fixed portfolio through the quarterly panel and
// derives its value/dividend timeline, risk metrics, and KPIs.
type SimulationService struct {
	panelRepo      *repository.PanelRepository
	historyService *HistoryService
}

// NewSimulationService creates a new SimulationService with the provided dependencies.
func NewSimulationService(panelRepo *repository.PanelRepository, historyService *HistoryService) *SimulationService {
	return &SimulationService{
		panelRepo:      panelRepo,
		historyService: historyService,
	}
}

// SimulationOutcome bundles a replay with its derived metric series.
type SimulationOutcome struct {
	Result               model.ReplayResult
	Enriched             []model.EnrichedSnapshot
	AnnualizedVolatility float64
	HitRatio             float64
	MaxDrawdown          float64
}

// panelIndexKey addresses one panel cell during replay lookups.
type panelIndexKey struct {
	ticker  string
	year    int
	quarter int
}

// Replay walks a fixed portfolio forward through every panel quarter after the
// base quarter and aggregates value and dividend cash per quarter.
//
// Base pricing: each ticker is priced from the panel at exactly
// (baseYear, baseQuarter). A ticker with no panel row, or a non-finite price,
// at the base quarter is excluded from the whole replay and reported in
// ExcludedTickers; it contributes nothing to the initial value or to any
// later quarter. An empty portfolio, or one with no survivor, returns an
// empty timeline with zeroed/NaN KPIs rather than an error.
//
// Quarter enumeration: every distinct quarter present anywhere in the panel
// with key > base key, ascending. Quarters with no data are never synthesized;
// a gap in the source silently skips a quarter rather than interpolating.
//
// Aggregation: a quarter's value is the sum of the finite per-ticker values.
// A ticker without a finite price that quarter contributes NaN to its detail
// row and nothing to the sum; missing DPS contributes 0 dividend cash. When a
// quarter has zero finite contributors the portfolio value carries the prior
// quarter's value forward instead of collapsing to NaN or zero.
//
// Replay is a pure function of its arguments: identical inputs yield
// identical timelines and KPIs.
func (s *SimulationService) Replay(portfolio model.Portfolio, panel []model.PanelRow, baseYear, baseQuarter int) model.ReplayResult {
	result := model.ReplayResult{
		Timeline:        []model.QuarterSnapshot{},
		ExcludedTickers: []string{},
		Details:         []model.DetailRow{},
		KPIs: model.SimulationKPIs{
			TotalReturn: math.NaN(),
			CAGR:        math.NaN(),
		},
	}

	if len(portfolio) == 0 {
		return result
	}

	// Base prices: finite price_qy at exactly the base quarter.
	basePrices := map[string]float64{}
	for _, row := range panel {
		if row.Year == baseYear && row.Quarter == baseQuarter && isFinite(row.Price) {
			basePrices[row.Ticker] = row.Price
		}
	}

	type holding struct {
		quantity  int
		basePrice float64
	}

	surviving := map[string]holding{}
	tickers := []string{}
	for rawTicker, position := range portfolio {
		ticker := strings.ToUpper(strings.TrimSpace(rawTicker))
		price, ok := basePrices[ticker]
		if !ok {
			result.ExcludedTickers = append(result.ExcludedTickers, ticker)
			continue
		}
		surviving[ticker] = holding{quantity: position.Quantity, basePrice: price}
		tickers = append(tickers, ticker)
	}
	sort.Strings(result.ExcludedTickers)
	sort.Strings(tickers)

	if len(surviving) == 0 {
		return result
	}

	initialValue := 0.0
	for _, h := range surviving {
		initialValue += float64(h.quantity) * h.basePrice
	}

	// Quarter enumeration and panel index.
	baseKey := baseYear*quartersPerYear + baseQuarter
	index := make(map[panelIndexKey]model.PanelRow, len(panel))
	keySet := map[int]bool{}
	for _, row := range panel {
		index[panelIndexKey{row.Ticker, row.Year, row.Quarter}] = row
		if key := row.QuarterKey().Key(); key > baseKey {
			keySet[key] = true
		}
	}
	quarterKeys := make([]int, 0, len(keySet))
	for key := range keySet {
		quarterKeys = append(quarterKeys, key)
	}
	sort.Ints(quarterKeys)

	accruedDividends := 0.0
	finalValue := initialValue
	priorValue := initialValue

	for _, key := range quarterKeys {
		quarter := model.QuarterFromKey(key)

		quarterValue := 0.0
		finiteContributors := 0
		quarterDividends := 0.0

		for _, ticker := range tickers {
			h := surviving[ticker]

			price := math.NaN()
			dps := 0.0
			if row, ok := index[panelIndexKey{ticker, quarter.Year, quarter.Quarter}]; ok {
				if isFinite(row.Price) {
					price = row.Price
				}
				if isFinite(row.DPS) {
					dps = row.DPS
				}
			}

			tickerValue := math.NaN()
			if isFinite(price) {
				tickerValue = float64(h.quantity) * price
				quarterValue += tickerValue
				finiteContributors++
			}
			tickerDividends := float64(h.quantity) * dps
			quarterDividends += tickerDividends

			result.Details = append(result.Details, model.DetailRow{
				Year:      quarter.Year,
				Quarter:   quarter.Quarter,
				Ticker:    ticker,
				Value:     tickerValue,
				Dividends: tickerDividends,
			})
		}

		if finiteContributors == 0 {
			// Carry the prior value forward rather than emitting NaN or a
			// fabricated zero for a quarter nobody priced.
			quarterValue = priorValue
		}

		accruedDividends += quarterDividends
		finalValue = quarterValue
		priorValue = quarterValue

		result.Timeline = append(result.Timeline, model.QuarterSnapshot{
			Year:      quarter.Year,
			Quarter:   quarter.Quarter,
			Value:     quarterValue,
			Dividends: quarterDividends,
		})
	}

	nQuarters := len(quarterKeys)
	result.KPIs.InitialValue = initialValue
	result.KPIs.FinalValue = finalValue
	result.KPIs.AccruedDividends = accruedDividends
	if initialValue > 0 {
		result.KPIs.TotalReturn = (finalValue + accruedDividends - initialValue) / initialValue
	}
	if initialValue > 0 && nQuarters > 0 {
		result.KPIs.CAGR = math.Pow((finalValue+accruedDividends)/initialValue, quartersPerYear/float64(nQuarters)) - 1
	}

	return result
}

// RunSimulation loads the stored panel, replays the portfolio from the base
// quarter, derives the metric series, and records the run in history.
//
// A failed history write is logged but does not fail the simulation: the
// recorder is an observer of results, not a participant in producing them.
func (s *SimulationService) RunSimulation(ctx context.Context, portfolio model.Portfolio, baseYear, baseQuarter int) (SimulationOutcome, error) {
	panel, err := s.panelRepo.GetPanelRows("")
	if err != nil {
		return SimulationOutcome{}, fmt.Errorf("failed to load panel for simulation: %w", err)
	}

	result := s.Replay(portfolio, panel, baseYear, baseQuarter)
	enriched, vol, hitRatio, maxDrawdown := DeriveMetrics(result.Timeline, result.KPIs.InitialValue)

	if err := s.historyService.SaveRun(portfolio, baseYear, baseQuarter, result, vol, hitRatio, maxDrawdown); err != nil {
		log.Printf("failed to record simulation run: %v", err)
	}

	return SimulationOutcome{
		Result:               result,
		Enriched:             enriched,
		AnnualizedVolatility: vol,
		HitRatio:             hitRatio,
		MaxDrawdown:          maxDrawdown,
	}, nil
}

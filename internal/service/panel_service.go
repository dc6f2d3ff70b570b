package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/repository"
)

// PanelService builds and serves the quarterly panel: the canonical
// one-row-per-(ticker, fiscal quarter) aggregation of raw statement records.
type PanelService struct {
	recordRepo *repository.RecordRepository
	panelRepo  *repository.PanelRepository
}

// NewPanelService creates a new PanelService with the provided repositories.
func NewPanelService(recordRepo *repository.RecordRepository, panelRepo *repository.PanelRepository) *PanelService {
	return &PanelService{
		recordRepo: recordRepo,
		panelRepo:  panelRepo,
	}
}

// BuildPanel collapses a raw longitudinal statement table into one row per
// (ticker, fiscal year, fiscal quarter).
//
// The aggregation rules, per column:
//   - price: mean of the quarter's observations, ignoring NaN; NaN if all NaN
//   - shares: last non-null value within the quarter, in reference-date order
//   - dividends/JCP: NaN-safe sum; NaN entries count as absent unless the
//     whole group is NaN, in which case the sum is NaN; when the source column
//     is absent entirely the value is 0
//   - DPS: (dividends + JCP) / shares with NaN numerator components treated
//     as 0; any non-finite result (divide-by-zero, missing shares) becomes NaN
//   - DY: DPS / price
//
// Rows with an unparseable reference date, or a date at/after the 2025-05-01
// cutoff, are excluded entirely before aggregation. Tickers are normalized to
// trimmed uppercase. A ticker absent from the input never appears in the
// output; no zero rows are synthesized.
func (s *PanelService) BuildPanel(table model.StatementTable) []model.PanelRow {
	clean := normalizeRecords(table.Records)
	tickers, byTicker := partitionByTicker(clean)

	panelRows := []model.PanelRow{}
	for _, ticker := range tickers {
		panelRows = append(panelRows, buildTickerRows(ticker, byTicker[ticker], table)...)
	}
	return panelRows
}

// RebuildPanel re-materializes the quarterly panel from all stored statement
// records. Ticker groups are independent, so they are aggregated concurrently,
// and the result replaces the stored panel in one transaction.
//
// Returns the number of panel rows written.
func (s *PanelService) RebuildPanel(ctx context.Context) (int, error) {
	records, err := s.recordRepo.GetRecords()
	if err != nil {
		return 0, fmt.Errorf("failed to load records for panel rebuild: %w", err)
	}

	// Stored records always carry every column; presence flags only vary for
	// CSV input, where BuildPanel is called with the parsed header flags.
	table := model.StatementTable{
		Records:      records,
		HasShares:    true,
		HasDividends: true,
		HasJCP:       true,
	}

	clean := normalizeRecords(table.Records)
	tickers, byTicker := partitionByTicker(clean)

	results := make([][]model.PanelRow, len(tickers))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			results[i] = buildTickerRows(ticker, byTicker[ticker], table)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("failed to aggregate panel rows: %w", err)
	}

	panelRows := []model.PanelRow{}
	for _, rows := range results {
		panelRows = append(panelRows, rows...)
	}

	if err := s.panelRepo.ReplaceAll(panelRows); err != nil {
		return 0, fmt.Errorf("failed to store rebuilt panel: %w", err)
	}

	return len(panelRows), nil
}

// GetPanel retrieves stored panel rows, optionally filtered by ticker.
func (s *PanelService) GetPanel(ticker string) ([]model.PanelRow, error) {
	return s.panelRepo.GetPanelRows(strings.ToUpper(strings.TrimSpace(ticker)))
}

// ListQuarters returns every distinct fiscal quarter present in the panel.
func (s *PanelService) ListQuarters() ([]model.QuarterKey, error) {
	return s.panelRepo.ListQuarters()
}

// normalizeRecords normalizes tickers, drops rows with no usable reference
// date or a date at/after the cutoff, and sorts by (ticker, reference date)
// so last-value and forward-fill aggregations are well-defined.
func normalizeRecords(records []model.StatementRecord) []model.StatementRecord {
	clean := make([]model.StatementRecord, 0, len(records))
	for _, record := range records {
		record.Ticker = strings.ToUpper(strings.TrimSpace(record.Ticker))
		if record.Ticker == "" {
			continue
		}
		if record.ReferenceDate.IsZero() || !record.ReferenceDate.Before(panelDateCutoff) {
			continue
		}
		clean = append(clean, record)
	}

	sort.SliceStable(clean, func(i, j int) bool {
		if clean[i].Ticker != clean[j].Ticker {
			return clean[i].Ticker < clean[j].Ticker
		}
		return clean[i].ReferenceDate.Before(clean[j].ReferenceDate)
	})

	return clean
}

// partitionByTicker splits sorted records into per-ticker groups, preserving
// the sorted ticker order.
func partitionByTicker(records []model.StatementRecord) ([]string, map[string][]model.StatementRecord) {
	tickers := []string{}
	byTicker := map[string][]model.StatementRecord{}
	for _, record := range records {
		if _, seen := byTicker[record.Ticker]; !seen {
			tickers = append(tickers, record.Ticker)
		}
		byTicker[record.Ticker] = append(byTicker[record.Ticker], record)
	}
	return tickers, byTicker
}

// buildTickerRows aggregates one ticker's date-ordered records into quarterly
// panel rows. Quarters come out in chronological order because the input is
// date-ordered.
func buildTickerRows(ticker string, records []model.StatementRecord, table model.StatementTable) []model.PanelRow {
	type group struct {
		key       model.QuarterKey
		prices    []float64
		shares    []float64
		dividends []float64
		jcp       []float64
	}

	groups := []*group{}
	var current *group

	for _, record := range records {
		key := model.QuarterOf(record.ReferenceDate)
		if current == nil || current.key != key {
			current = &group{key: key}
			groups = append(groups, current)
		}
		current.prices = append(current.prices, repository.FloatOrNaN(record.Price))
		current.shares = append(current.shares, repository.FloatOrNaN(record.SharesOutstanding))
		current.dividends = append(current.dividends, repository.FloatOrNaN(record.Dividends))
		current.jcp = append(current.jcp, repository.FloatOrNaN(record.JCP))
	}

	rows := make([]model.PanelRow, 0, len(groups))
	for _, g := range groups {
		row := model.PanelRow{
			Ticker:  ticker,
			Year:    g.key.Year,
			Quarter: g.key.Quarter,
			Price:   safeMean(g.prices),
		}

		if table.HasShares {
			row.Shares = lastNonNull(g.shares)
		} else {
			row.Shares = nan()
		}
		if table.HasDividends {
			row.Dividends = safeSum(g.dividends)
		} else {
			row.Dividends = 0
		}
		if table.HasJCP {
			row.JCP = safeSum(g.jcp)
		} else {
			row.JCP = 0
		}

		row.DPS = (finiteOrZero(row.Dividends) + finiteOrZero(row.JCP)) / row.Shares
		if !isFinite(row.DPS) {
			row.DPS = nan()
		}
		row.DY = row.DPS / row.Price

		rows = append(rows, row)
	}

	return rows
}

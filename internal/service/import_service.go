package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/feed"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/repository"
)

// Column alias lists, checked in order. Source exports mix Portuguese and
// English header names depending on which upstream produced the file.
var (
	dateAliases     = []string{"data_referencia", "reference_date", "date"}
	tickerAliases   = []string{"ticker"}
	priceAliases    = []string{"preco_atual", "preco", "close", "price"}
	sharesAliases   = []string{"acoes_emitidas", "qtde_acoes", "acoes", "shares_outstanding"}
	dividendAliases = []string{"dividendos", "dividends"}
	jcpAliases      = []string{"juros_sobre_capital_proprio", "jcp"}
	sectorAliases   = []string{"setor", "sector"}
	dyAliases       = []string{"dividend_yield"}
	peAliases       = []string{"preco_lucro", "price_earnings"}
	roeAliases      = []string{"roe"}
)

// ImportService ingests raw statement CSVs, either uploaded directly or
// fetched from the configured statement feed, and triggers panel rebuilds.
type ImportService struct {
	recordRepo      *repository.RecordRepository
	panelService    *PanelService
	feedClient      *feed.Client
	settingsService *SettingsService
}

// NewImportService creates a new ImportService with the provided dependencies.
// feedClient may be nil when no feed is configured.
func NewImportService(recordRepo *repository.RecordRepository, panelService *PanelService, feedClient *feed.Client, settingsService *SettingsService) *ImportService {
	return &ImportService{
		recordRepo:      recordRepo,
		panelService:    panelService,
		feedClient:      feedClient,
		settingsService: settingsService,
	}
}

// ParseCSV reads a raw statement CSV into a StatementTable.
//
// Header names are matched case-insensitively against the known alias lists.
// Date, ticker, and price columns are required; missing ones map to the
// corresponding schema error. Optional columns that are absent set the table's
// presence flag to false, which the panel aggregation distinguishes from a
// present-but-empty column. Unparseable numeric cells become NULL and
// unparseable dates become the zero time; both are filtered or NaN-propagated
// downstream rather than rejected here.
func ParseCSV(r io.Reader) (model.StatementTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return model.StatementTable{}, apperrors.ErrInvalidCSVHeaders
	}

	columns := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if name != "" {
			columns[name] = i
		}
	}

	dateIdx, ok := resolveColumn(columns, dateAliases)
	if !ok {
		return model.StatementTable{}, apperrors.ErrMissingDateColumn
	}
	tickerIdx, ok := resolveColumn(columns, tickerAliases)
	if !ok {
		return model.StatementTable{}, apperrors.ErrMissingTickerColumn
	}
	priceIdx, ok := resolveColumn(columns, priceAliases)
	if !ok {
		return model.StatementTable{}, apperrors.ErrMissingPriceColumn
	}

	sharesIdx, hasShares := resolveColumn(columns, sharesAliases)
	dividendIdx, hasDividends := resolveColumn(columns, dividendAliases)
	jcpIdx, hasJCP := resolveColumn(columns, jcpAliases)
	sectorIdx, hasSector := resolveColumn(columns, sectorAliases)
	dyIdx, hasDY := resolveColumn(columns, dyAliases)
	peIdx, hasPE := resolveColumn(columns, peAliases)
	roeIdx, hasROE := resolveColumn(columns, roeAliases)

	table := model.StatementTable{
		Records:      []model.StatementRecord{},
		HasShares:    hasShares,
		HasDividends: hasDividends,
		HasJCP:       hasJCP,
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.StatementTable{}, fmt.Errorf("failed to read CSV row: %w", err)
		}

		record := model.StatementRecord{
			ID:     uuid.NewString(),
			Ticker: cell(row, tickerIdx),
			Price:  parseNullFloat(cell(row, priceIdx)),
		}

		if t, err := repository.ParseTime(cell(row, dateIdx)); err == nil {
			record.ReferenceDate = t
		}
		if hasShares {
			record.SharesOutstanding = parseNullFloat(cell(row, sharesIdx))
		}
		if hasDividends {
			record.Dividends = parseNullFloat(cell(row, dividendIdx))
		}
		if hasJCP {
			record.JCP = parseNullFloat(cell(row, jcpIdx))
		}
		if hasSector {
			if sector := cell(row, sectorIdx); sector != "" {
				record.Sector = sql.NullString{String: sector, Valid: true}
			}
		}
		if hasDY {
			record.DividendYield = parseNullFloat(cell(row, dyIdx))
		}
		if hasPE {
			record.PriceEarnings = parseNullFloat(cell(row, peIdx))
		}
		if hasROE {
			record.ROE = parseNullFloat(cell(row, roeIdx))
		}

		table.Records = append(table.Records, record)
	}

	return table, nil
}

// ImportCSV parses and stores an uploaded statement CSV, then rebuilds the
// quarterly panel from the full record store.
//
// Returns the number of records inserted and the number of panel rows written.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (int, int, error) {
	table, err := ParseCSV(r)
	if err != nil {
		return 0, 0, err
	}

	inserted, err := s.recordRepo.InsertRecords(table.Records)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", apperrors.ErrFailedToImportRecords, err)
	}

	panelRows, err := s.panelService.RebuildPanel(ctx)
	if err != nil {
		return inserted, 0, fmt.Errorf("%w: %v", apperrors.ErrFailedToRebuildPanel, err)
	}

	return inserted, panelRows, nil
}

// RefreshFromFeed replaces the full record store with a fresh export from the
// configured statement feed and rebuilds the panel.
//
// Returns the number of records imported and the number of panel rows written.
func (s *ImportService) RefreshFromFeed(ctx context.Context) (int, int, error) {
	if s.feedClient == nil {
		return 0, 0, apperrors.ErrFeedNotConfigured
	}

	token := ""
	if s.settingsService != nil {
		token, _ = s.settingsService.FeedToken()
	}

	body, err := s.feedClient.FetchStatements(ctx, token)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch statement feed: %w", err)
	}
	defer body.Close()

	table, err := ParseCSV(body)
	if err != nil {
		return 0, 0, err
	}

	if err := s.recordRepo.DeleteAllRecords(); err != nil {
		return 0, 0, fmt.Errorf("failed to clear statement records: %w", err)
	}

	inserted, err := s.recordRepo.InsertRecords(table.Records)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", apperrors.ErrFailedToImportRecords, err)
	}

	panelRows, err := s.panelService.RebuildPanel(ctx)
	if err != nil {
		return inserted, 0, fmt.Errorf("%w: %v", apperrors.ErrFailedToRebuildPanel, err)
	}

	return inserted, panelRows, nil
}

// resolveColumn finds the first alias present in the header, in alias order.
func resolveColumn(columns map[string]int, aliases []string) (int, bool) {
	for _, alias := range aliases {
		if idx, ok := columns[alias]; ok {
			return idx, true
		}
	}
	return 0, false
}

// cell returns the trimmed value at idx, or "" when the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNullFloat coerces a CSV cell to a nullable float. Empty cells and
// unparseable values are NULL. Comma decimal separators are accepted.
func parseNullFloat(value string) sql.NullFloat64 {
	if value == "" {
		return sql.NullFloat64{}
	}
	normalized := strings.ReplaceAll(value, ",", ".")
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

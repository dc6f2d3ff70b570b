package testutil

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/repository"
)

// StatementRecordBuilder provides a fluent interface for creating test
// statement records.
//
// Example usage:
//
//	// Pure record, no database
//	record := testutil.NewStatementRecord().WithTicker("ABCB4").Record()
//
//	// Persisted record
//	record := testutil.NewStatementRecord().
//	    WithTicker("ABCB4").
//	    WithDate(2023, 2, 15).
//	    WithPrice(10.5).
//	    Build(t, db)
type StatementRecordBuilder struct {
	record model.StatementRecord
}

// NewStatementRecord creates a StatementRecordBuilder with sensible defaults.
func NewStatementRecord() *StatementRecordBuilder {
	return &StatementRecordBuilder{
		record: model.StatementRecord{
			ID:            MakeID(),
			Ticker:        "TEST3",
			ReferenceDate: time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC),
			Price:         sql.NullFloat64{Float64: 10.0, Valid: true},
		},
	}
}

// WithTicker sets the ticker.
func (b *StatementRecordBuilder) WithTicker(ticker string) *StatementRecordBuilder {
	b.record.Ticker = ticker
	return b
}

// WithDate sets the reference date.
func (b *StatementRecordBuilder) WithDate(year int, month time.Month, day int) *StatementRecordBuilder {
	b.record.ReferenceDate = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return b
}

// WithPrice sets the price observation.
func (b *StatementRecordBuilder) WithPrice(price float64) *StatementRecordBuilder {
	b.record.Price = sql.NullFloat64{Float64: price, Valid: true}
	return b
}

// WithoutPrice clears the price observation.
func (b *StatementRecordBuilder) WithoutPrice() *StatementRecordBuilder {
	b.record.Price = sql.NullFloat64{}
	return b
}

// WithShares sets the shares outstanding.
func (b *StatementRecordBuilder) WithShares(shares float64) *StatementRecordBuilder {
	b.record.SharesOutstanding = sql.NullFloat64{Float64: shares, Valid: true}
	return b
}

// WithDividends sets the declared dividends.
func (b *StatementRecordBuilder) WithDividends(dividends float64) *StatementRecordBuilder {
	b.record.Dividends = sql.NullFloat64{Float64: dividends, Valid: true}
	return b
}

// WithJCP sets the interest-on-equity distribution.
func (b *StatementRecordBuilder) WithJCP(jcp float64) *StatementRecordBuilder {
	b.record.JCP = sql.NullFloat64{Float64: jcp, Valid: true}
	return b
}

// WithSector sets the sector classification.
func (b *StatementRecordBuilder) WithSector(sector string) *StatementRecordBuilder {
	b.record.Sector = sql.NullString{String: sector, Valid: true}
	return b
}

// WithIndicators sets the screening indicator columns.
func (b *StatementRecordBuilder) WithIndicators(dy, pe, roe float64) *StatementRecordBuilder {
	b.record.DividendYield = sql.NullFloat64{Float64: dy, Valid: true}
	b.record.PriceEarnings = sql.NullFloat64{Float64: pe, Valid: true}
	b.record.ROE = sql.NullFloat64{Float64: roe, Valid: true}
	return b
}

// Record returns the built record without touching the database.
func (b *StatementRecordBuilder) Record() model.StatementRecord {
	return b.record
}

// Build inserts the record into the database and returns it.
func (b *StatementRecordBuilder) Build(t *testing.T, db *sql.DB) model.StatementRecord {
	t.Helper()

	query := `
		INSERT INTO financial_record
			(id, ticker, reference_date, sector, price, shares_outstanding,
			 dividends, jcp, dividend_yield, price_earnings, roe)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.record.ID,
		b.record.Ticker,
		b.record.ReferenceDate.Format("2006-01-02"),
		b.record.Sector,
		b.record.Price,
		b.record.SharesOutstanding,
		b.record.Dividends,
		b.record.JCP,
		b.record.DividendYield,
		b.record.PriceEarnings,
		b.record.ROE,
	)
	if err != nil {
		t.Fatalf("Failed to create test statement record: %v", err)
	}

	return b.record
}

// PanelRowBuilder provides a fluent interface for creating test panel rows.
//
// Example usage:
//
//	row := testutil.NewPanelRow("ABCB4").At(2023, 1).WithPrice(10).Insert(t, db)
type PanelRowBuilder struct {
	row model.PanelRow
}

// NewPanelRow creates a PanelRowBuilder for the given ticker. Aggregates
// default to NaN, matching an empty quarter.
func NewPanelRow(ticker string) *PanelRowBuilder {
	return &PanelRowBuilder{
		row: model.PanelRow{
			Ticker:    ticker,
			Year:      2023,
			Quarter:   1,
			Price:     math.NaN(),
			Shares:    math.NaN(),
			Dividends: math.NaN(),
			JCP:       math.NaN(),
			DPS:       math.NaN(),
			DY:        math.NaN(),
		},
	}
}

// At sets the fiscal quarter.
func (b *PanelRowBuilder) At(year, quarter int) *PanelRowBuilder {
	b.row.Year = year
	b.row.Quarter = quarter
	return b
}

// WithPrice sets the quarter's mean price.
func (b *PanelRowBuilder) WithPrice(price float64) *PanelRowBuilder {
	b.row.Price = price
	return b
}

// WithDPS sets the quarter's dividend per share.
func (b *PanelRowBuilder) WithDPS(dps float64) *PanelRowBuilder {
	b.row.DPS = dps
	return b
}

// WithShares sets the quarter's shares outstanding.
func (b *PanelRowBuilder) WithShares(shares float64) *PanelRowBuilder {
	b.row.Shares = shares
	return b
}

// Row returns the built panel row without touching the database.
func (b *PanelRowBuilder) Row() model.PanelRow {
	return b.row
}

// Insert stores the panel row in the database and returns it.
func (b *PanelRowBuilder) Insert(t *testing.T, db *sql.DB) model.PanelRow {
	t.Helper()

	query := `
		INSERT INTO quarterly_panel
			(id, ticker, fiscal_year, fiscal_quarter, price, shares_outstanding,
			 dividends, jcp, dps, dy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		MakeID(),
		b.row.Ticker,
		b.row.Year,
		b.row.Quarter,
		repository.NullFloat(b.row.Price),
		repository.NullFloat(b.row.Shares),
		repository.NullFloat(b.row.Dividends),
		repository.NullFloat(b.row.JCP),
		repository.NullFloat(b.row.DPS),
		repository.NullFloat(b.row.DY),
	)
	if err != nil {
		t.Fatalf("Failed to create test panel row: %v", err)
	}

	return b.row
}

// MakeID generates a UUID string for use in tests.
func MakeID() string {
	return uuid.New().String()
}

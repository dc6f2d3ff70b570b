package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
)

// PanelRepository provides data access methods for the quarterly_panel table,
// the materialized one-row-per-(ticker, fiscal quarter) aggregate. NaN domain
// values are stored as NULL and restored as NaN on read.
type PanelRepository struct {
	db *sql.DB
}

// NewPanelRepository creates a new repository instance.
func NewPanelRepository(db *sql.DB) *PanelRepository {
	return &PanelRepository{db: db}
}

// ReplaceAll swaps the entire materialized panel for the given rows in one
// transaction, so readers never observe a half-rebuilt panel.
func (r *PanelRepository) ReplaceAll(panelRows []model.PanelRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	//nolint:errcheck // Rollback after commit is a no-op
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM quarterly_panel"); err != nil {
		return fmt.Errorf("failed to clear quarterly_panel: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO quarterly_panel
			(id, ticker, fiscal_year, fiscal_quarter, price, shares_outstanding,
			 dividends, jcp, dps, dy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare panel insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range panelRows {
		_, err := stmt.Exec(
			uuid.NewString(),
			row.Ticker,
			row.Year,
			row.Quarter,
			NullFloat(row.Price),
			NullFloat(row.Shares),
			NullFloat(row.Dividends),
			NullFloat(row.JCP),
			NullFloat(row.DPS),
			NullFloat(row.DY),
		)
		if err != nil {
			return fmt.Errorf("failed to insert panel row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit panel rebuild: %w", err)
	}

	return nil
}

// GetPanelRows retrieves panel rows ordered by (ticker, year, quarter).
// An empty ticker returns the whole panel.
func (r *PanelRepository) GetPanelRows(ticker string) ([]model.PanelRow, error) {
	query := `
		SELECT ticker, fiscal_year, fiscal_quarter, price, shares_outstanding,
		       dividends, jcp, dps, dy
		FROM quarterly_panel
	`
	var args []any

	if ticker != "" {
		query += ` WHERE ticker = ?`
		args = append(args, ticker)
	}

	query += ` ORDER BY ticker ASC, fiscal_year ASC, fiscal_quarter ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quarterly_panel: %w", err)
	}
	defer rows.Close()

	panelRows := []model.PanelRow{}

	for rows.Next() {
		var row model.PanelRow
		var price, shares, dividends, jcp, dps, dy sql.NullFloat64

		err := rows.Scan(
			&row.Ticker,
			&row.Year,
			&row.Quarter,
			&price,
			&shares,
			&dividends,
			&jcp,
			&dps,
			&dy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan panel row: %w", err)
		}

		row.Price = FloatOrNaN(price)
		row.Shares = FloatOrNaN(shares)
		row.Dividends = FloatOrNaN(dividends)
		row.JCP = FloatOrNaN(jcp)
		row.DPS = FloatOrNaN(dps)
		row.DY = FloatOrNaN(dy)

		panelRows = append(panelRows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quarterly_panel: %w", err)
	}

	return panelRows, nil
}

// ListQuarters returns every distinct fiscal quarter present in the panel,
// ascending. This backs the period selection UI.
func (r *PanelRepository) ListQuarters() ([]model.QuarterKey, error) {
	query := `
		SELECT DISTINCT fiscal_year, fiscal_quarter
		FROM quarterly_panel
		ORDER BY fiscal_year ASC, fiscal_quarter ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query panel quarters: %w", err)
	}
	defer rows.Close()

	quarters := []model.QuarterKey{}
	for rows.Next() {
		var q model.QuarterKey
		if err := rows.Scan(&q.Year, &q.Quarter); err != nil {
			return nil, fmt.Errorf("failed to scan panel quarter: %w", err)
		}
		quarters = append(quarters, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating panel quarters: %w", err)
	}

	return quarters, nil
}

package repository

import (
	"database/sql"
	"fmt"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
)

// RecordRepository provides data access methods for the financial_record table.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new repository instance.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// InsertRecords stores a batch of statement records in a single transaction.
// Records with a zero reference date are skipped: the storage schema requires
// a date, and the panel builder would exclude them anyway.
func (r *RecordRepository) InsertRecords(records []model.StatementRecord) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	//nolint:errcheck // Rollback after commit is a no-op
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO financial_record
			(id, ticker, reference_date, sector, price, shares_outstanding,
			 dividends, jcp, dividend_yield, price_earnings, roe)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, record := range records {
		if record.ReferenceDate.IsZero() {
			continue
		}
		_, err := stmt.Exec(
			record.ID,
			record.Ticker,
			record.ReferenceDate.Format("2006-01-02"),
			record.Sector,
			record.Price,
			record.SharesOutstanding,
			record.Dividends,
			record.JCP,
			record.DividendYield,
			record.PriceEarnings,
			record.ROE,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert financial record: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit record insert: %w", err)
	}

	return inserted, nil
}

// DeleteAllRecords removes every stored statement record. Used by the feed
// refresh, which replaces the whole table.
func (r *RecordRepository) DeleteAllRecords() error {
	if _, err := r.db.Exec("DELETE FROM financial_record"); err != nil {
		return fmt.Errorf("failed to delete financial records: %w", err)
	}
	return nil
}

// GetRecords retrieves all statement records ordered by (ticker, reference date)
// so that "last" and forward-fill aggregations downstream are well-defined.
func (r *RecordRepository) GetRecords() ([]model.StatementRecord, error) {
	query := `
		SELECT id, ticker, reference_date, sector, price, shares_outstanding,
		       dividends, jcp, dividend_yield, price_earnings, roe
		FROM financial_record
		ORDER BY ticker ASC, reference_date ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial_record: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetLatestRecords returns the most recent statement record per ticker,
// optionally narrowed by fiscal year/quarter of the reference date, sector,
// and a ticker substring search. This backs the screening snapshot view.
func (r *RecordRepository) GetLatestRecords(filter model.SnapshotFilter) ([]model.StatementRecord, error) {
	query := `
		SELECT fr.id, fr.ticker, fr.reference_date, fr.sector, fr.price,
		       fr.shares_outstanding, fr.dividends, fr.jcp, fr.dividend_yield,
		       fr.price_earnings, fr.roe
		FROM financial_record fr
		INNER JOIN (
			SELECT ticker, MAX(reference_date) AS latest_date
			FROM financial_record
			WHERE 1=1
	`
	var args []any

	if filter.Year != 0 {
		query += ` AND CAST(strftime('%Y', reference_date) AS INTEGER) = ?`
		args = append(args, filter.Year)
	}
	if filter.Quarter != 0 {
		query += ` AND ((CAST(strftime('%m', reference_date) AS INTEGER) + 2) / 3) = ?`
		args = append(args, filter.Quarter)
	}

	query += `
			GROUP BY ticker
		) latest ON fr.ticker = latest.ticker AND fr.reference_date = latest.latest_date
		WHERE 1=1
	`

	if filter.Sector != "" {
		query += ` AND fr.sector = ?`
		args = append(args, filter.Sector)
	}
	if filter.Search != "" {
		query += ` AND fr.ticker LIKE ?`
		args = append(args, "%"+filter.Search+"%")
	}

	query += ` ORDER BY fr.ticker ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest financial records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords converts a result set into statement records, parsing dates.
func scanRecords(rows *sql.Rows) ([]model.StatementRecord, error) {
	records := []model.StatementRecord{}

	for rows.Next() {
		var record model.StatementRecord
		var dateStr string

		err := rows.Scan(
			&record.ID,
			&record.Ticker,
			&dateStr,
			&record.Sector,
			&record.Price,
			&record.SharesOutstanding,
			&record.Dividends,
			&record.JCP,
			&record.DividendYield,
			&record.PriceEarnings,
			&record.ROE,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan financial record: %w", err)
		}

		record.ReferenceDate, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse reference_date: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating financial records: %w", err)
	}

	return records, nil
}

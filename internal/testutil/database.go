package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Raw financial-statement observations
		CREATE TABLE financial_record (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			ticker VARCHAR(10) NOT NULL,
			reference_date DATE NOT NULL,
			sector VARCHAR(100),
			price FLOAT,
			shares_outstanding FLOAT,
			dividends FLOAT,
			jcp FLOAT,
			dividend_yield FLOAT,
			price_earnings FLOAT,
			roe FLOAT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Materialized quarterly panel
		CREATE TABLE quarterly_panel (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			ticker VARCHAR(10) NOT NULL,
			fiscal_year INTEGER NOT NULL,
			fiscal_quarter INTEGER NOT NULL,
			price FLOAT,
			shares_outstanding FLOAT,
			dividends FLOAT,
			jcp FLOAT,
			dps FLOAT,
			dy FLOAT,
			calculated_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			CONSTRAINT uq_panel_ticker_quarter UNIQUE (ticker, fiscal_year, fiscal_quarter)
		);

		-- Run history, deduplicated by run_key
		CREATE TABLE simulation_run (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			sim_id VARCHAR(14) NOT NULL,
			run_key TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL,
			base_year INTEGER NOT NULL,
			base_quarter INTEGER NOT NULL,
			end_year INTEGER NOT NULL,
			end_quarter INTEGER NOT NULL,
			tickers TEXT NOT NULL,
			n_tickers INTEGER NOT NULL,
			initial_value FLOAT NOT NULL,
			final_value FLOAT NOT NULL,
			accrued_dividends FLOAT NOT NULL,
			total_return FLOAT,
			return_ex_dividends FLOAT,
			cagr FLOAT,
			annualized_volatility FLOAT,
			hit_ratio FLOAT,
			max_drawdown FLOAT
		);

		-- Key/value settings
		CREATE TABLE system_setting (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			"key" VARCHAR(50) NOT NULL UNIQUE,
			value VARCHAR(500) NOT NULL,
			updated_at DATETIME
		);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase removes all rows from every table. Useful between subtests
// that share one database.
//
// Example usage:
//
//	func TestMultipleThings(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//
//	    t.Run("First test", func(t *testing.T) {
//	        // Create data
//	        testutil.CleanDatabase(t, db)  // Clean after
//	    })
//
//	    t.Run("Second test", func(t *testing.T) {
//	        // Fresh clean database
//	    })
//	}
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	tables := []string{
		"quarterly_panel",
		"financial_record",
		"simulation_run",
		"system_setting",
	}

	for _, table := range tables {
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "financial_record", 2)
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}

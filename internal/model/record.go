package model

import (
	"database/sql"
	"time"
)

// StatementRecord represents a single financial-statement observation for a ticker.
// Multiple records can share the same (ticker, reference date); the panel builder
// collapses them per fiscal quarter. All numeric fields are nullable because
// source filings frequently omit them.
type StatementRecord struct {
	ID                string          // Primary key
	Ticker            string          // Normalized to trimmed uppercase
	ReferenceDate     time.Time       // Statement reference date; zero when unparseable
	Sector            sql.NullString  // Sector classification, when known
	Price             sql.NullFloat64 // Price observation
	SharesOutstanding sql.NullFloat64 // Shares outstanding
	Dividends         sql.NullFloat64 // Cash dividends declared in the filing
	JCP               sql.NullFloat64 // Interest-on-equity distributions (juros sobre capital próprio)
	DividendYield     sql.NullFloat64 // Reported dividend yield indicator
	PriceEarnings     sql.NullFloat64 // Reported price/earnings indicator
	ROE               sql.NullFloat64 // Reported return-on-equity indicator
}

// StatementTable is a raw longitudinal table of statement observations together
// with column-presence flags. The flags keep "column absent from the source"
// distinguishable from "value NULL in a present column": an absent dividend
// column aggregates to 0, while a present-but-all-NULL group aggregates to NaN.
type StatementTable struct {
	Records      []StatementRecord
	HasShares    bool
	HasDividends bool
	HasJCP       bool
}

// SnapshotFilter narrows the latest-row-per-ticker screening view.
// Zero values mean "no filter" for that dimension.
type SnapshotFilter struct {
	Year    int    // Fiscal year of the reference date
	Quarter int    // Fiscal quarter of the reference date
	Sector  string // Exact sector match
	Search  string // Ticker substring match
}

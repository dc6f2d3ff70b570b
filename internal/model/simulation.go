package model

import "time"

// QuarterSnapshot is one timeline entry of a replay: the aggregate portfolio
// value excluding dividends, and the dividend cash received that quarter.
type QuarterSnapshot struct {
	Year      int     // Fiscal year
	Quarter   int     // Fiscal quarter 1-4
	Value     float64 // Ex-dividend portfolio value; carries the prior value when no ticker priced
	Dividends float64 // Dividend cash received this quarter
}

// QuarterKey returns the snapshot's ordered quarter identity.
func (s QuarterSnapshot) QuarterKey() QuarterKey {
	return QuarterKey{Year: s.Year, Quarter: s.Quarter}
}

// DetailRow is the per-ticker breakdown of one replayed quarter. Value is NaN
// when the ticker had no finite price that quarter; Dividends defaults to 0
// when DPS is missing.
type DetailRow struct {
	Year      int
	Quarter   int
	Ticker    string
	Value     float64
	Dividends float64
}

// SimulationKPIs is the scalar summary of one replay.
type SimulationKPIs struct {
	InitialValue     float64 // Sum of quantity × base price over surviving tickers
	FinalValue       float64 // Last quarter's ex-dividend portfolio value
	AccruedDividends float64 // Sum of all quarterly dividend cash
	TotalReturn      float64 // (final + dividends − initial) / initial; NaN if initial ≤ 0
	CAGR             float64 // ((final + dividends) / initial)^(4/nQuarters) − 1; NaN when undefined
}

// ReplayResult bundles everything a replay produces.
type ReplayResult struct {
	Timeline        []QuarterSnapshot
	KPIs            SimulationKPIs
	ExcludedTickers []string // Tickers with no finite base-quarter price, sorted
	Details         []DetailRow
}

// EnrichedSnapshot extends a timeline entry with the derived metric series.
type EnrichedSnapshot struct {
	QuarterSnapshot
	Return              float64 // (value + dividends) / prior value − 1; NaN when the denominator is degenerate
	CumulativeDividends float64 // Running dividend total, never reset
	TotalValue          float64 // Ex-dividend value + cumulative dividends
	Drawdown            float64 // value / running max(value) − 1, on the ex-dividend series
}

// SimulationRun is the flat run-history record persisted per replay.
// Risk metrics are NaN when undefined and stored as NULL.
type SimulationRun struct {
	ID                   string    // Primary key
	SimID                string    // Timestamp-derived identifier (YYYYMMDDHHMMSS)
	RunKey               string    // Dedupe key: base/end period + composition signature
	CreatedAt            time.Time // When the run was recorded
	BaseYear             int
	BaseQuarter          int
	EndYear              int
	EndQuarter           int
	Tickers              string // Comma-joined sorted ticker list
	NumTickers           int
	InitialValue         float64
	FinalValue           float64
	AccruedDividends     float64
	TotalReturn          float64 // Fraction (0.18 means 18%)
	ReturnExDividends    float64 // (final / initial) − 1
	CAGR                 float64
	AnnualizedVolatility float64
	HitRatio             float64
	MaxDrawdown          float64
}

// VersionInfo reports application and schema versions for the system endpoint.
type VersionInfo struct {
	AppVersion string `json:"app_version"`
	DBVersion  string `json:"db_version"`
}

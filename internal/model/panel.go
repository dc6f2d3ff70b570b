package model

// PanelRow is the canonical aggregation unit: one row per (ticker, fiscal year,
// fiscal quarter). Missing values are IEEE NaN, never zero: a quarter with no
// usable price data must not look like a quarter where the price was 0.
type PanelRow struct {
	Ticker    string  // Normalized ticker
	Year      int     // Fiscal year
	Quarter   int     // Fiscal quarter 1-4
	Price     float64 // Mean of the quarter's price observations; NaN if none
	Shares    float64 // Last non-null share count observed in the quarter; NaN if none
	Dividends float64 // Sum of cash dividends; 0 when the column is absent, NaN when all values were null
	JCP       float64 // Sum of interest-on-equity; same null rules as Dividends
	DPS       float64 // (Dividends + JCP) / Shares, nulls treated as 0 in the numerator; NaN if non-finite
	DY        float64 // DPS / Price
}

// QuarterKey returns the row's ordered quarter identity.
func (r PanelRow) QuarterKey() QuarterKey {
	return QuarterKey{Year: r.Year, Quarter: r.Quarter}
}

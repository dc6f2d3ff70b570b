package model

// Position is a fixed holding in the hypothetical portfolio. UnitPrice is the
// acquisition price the user entered and is informational only; the replay
// always re-derives the entry price from the panel at the base quarter.
type Position struct {
	Ticker    string  `json:"ticker"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Portfolio maps normalized tickers to positions. One active portfolio exists
// per user session; mutation is serialized by the session layer.
type Portfolio map[string]Position

// Clone returns an independent copy so a replay never observes concurrent mutation.
func (p Portfolio) Clone() Portfolio {
	out := make(Portfolio, len(p))
	for ticker, pos := range p {
		out[ticker] = pos
	}
	return out
}

// Period is a possibly partial (year, quarter) selection from the UI filters.
// A zero component means "unset".
type Period struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// Defined reports whether at least one component is set. A partially defined
// period is enough to trigger the portfolio lock-and-reset rule.
func (p Period) Defined() bool {
	return p.Year != 0 || p.Quarter != 0
}

// Complete reports whether the period can serve as a replay base quarter.
func (p Period) Complete() bool {
	return p.Year != 0 && p.Quarter >= 1 && p.Quarter <= 4
}

package request

// PositionPayload is one portfolio position in a request body.
type PositionPayload struct {
	Ticker    string  `json:"ticker"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// RunSimulationRequest represents the request body for running a simulation
// with an inline portfolio. When the portfolio is omitted the handler falls
// back to the session identified by the X-Session-ID header.
type RunSimulationRequest struct {
	Portfolio   []PositionPayload `json:"portfolio,omitempty"`
	BaseYear    int               `json:"baseYear,omitempty"`
	BaseQuarter int               `json:"baseQuarter,omitempty"`
}

// SetPeriodRequest represents the request body for selecting a session's base
// period. A zero component means "unset".
type SetPeriodRequest struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// SetFeedTokenRequest represents the request body for storing the statement
// feed authentication token.
type SetFeedTokenRequest struct {
	Token string `json:"token"`
}

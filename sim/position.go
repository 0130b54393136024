package sim

import "time"

// Position is the open holding in one instrument. There is at most one
// per symbol per Broker; a missing entry means flat. Only the Broker
// mutates positions, on order fills.
type Position struct {
	Symbol     string    `json:"symbol"`
	Quantity   float64   `json:"quantity"`
	EntryPrice float64   `json:"entryPrice"`
	EntryTime  time.Time `json:"entryDate"`

	// EntryCommission is carried so the round-trip Trade can charge both
	// legs when the position closes.
	EntryCommission float64 `json:"entryCommission"`
}

// EquitySnapshot is the portfolio value at the end of one bar:
// cash plus every open position valued at its latest close.
type EquitySnapshot struct {
	Time  time.Time
	Value float64
	Cash  float64
}

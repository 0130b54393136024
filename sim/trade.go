package sim

import "time"

// Side of the round trip. Long-only today, so closed trades are SideBuy.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Trade is one completed round trip, created when a position goes flat.
// Immutable once appended to the trade log.
//
// PnL = (ExitPrice - EntryPrice) * Quantity - Commission, where
// Commission is the sum of the entry and exit legs.
type Trade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	EntryTime  time.Time `json:"entryDate"`
	ExitTime   time.Time `json:"exitDate"`
	Quantity   float64   `json:"quantity"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  float64   `json:"exitPrice"`
	PnL        float64   `json:"pnl"`
	Commission float64   `json:"commission"`
}

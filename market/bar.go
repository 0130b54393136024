// Package market defines the OHLCV bar type shared by the data,
// indicator, simulation and backtest packages.
package market

import "time"

// Bar represents one OHLCV observation for an instrument.
// Bars are immutable once loaded.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Package indicators provides streaming technical indicators for the
// backtest engine. Each indicator is causal: its value after the i-th
// update depends only on bars 0..i, so the same code behaves identically
// in simulation and replay.
package indicators

import "backtester/market"

// Indicator computes a single streaming value from bars.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value; 0 if !Ready().
	// Callers should always check Ready().
	Value() float64
}

// Package data supplies historical bar series to the backtest engine.
//
// Providers are collaborators: the engine fetches all bars for a symbol
// once, before the simulation loop starts, and never performs I/O inside
// the loop.
package data

import (
	"context"
	"errors"
	"sort"
	"time"

	"backtester/market"
)

// ErrNoData is returned when a provider has no bars for a symbol in the
// requested range.
var ErrNoData = errors.New("no bar data")

// Provider returns the ordered bar series for a symbol within [start, end].
type Provider interface {
	Bars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error)
}

// MemoryProvider serves bar series from memory. Useful for tests and
// synthetic data runs.
type MemoryProvider struct {
	series map[string][]market.Bar
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{series: make(map[string][]market.Bar)}
}

// Add registers a bar series for symbol, sorted by time.
func (p *MemoryProvider) Add(symbol string, bars []market.Bar) {
	cp := make([]market.Bar, len(bars))
	copy(cp, bars)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Time.Before(cp[j].Time) })
	p.series[symbol] = cp
}

func (p *MemoryProvider) Bars(_ context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	all, ok := p.series[symbol]
	if !ok {
		return nil, ErrNoData
	}

	var out []market.Bar
	for _, b := range all {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

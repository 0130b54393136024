package backtest

import (
	"time"

	"backtester/metrics"
	"backtester/sim"
)

// DailyReturn is one row of the per-day return series. Rows start at the
// second equity snapshot (a return needs a previous value). Drawdown is
// measured against the running peak up to that day.
type DailyReturn struct {
	Date             time.Time `json:"date"`
	PortfolioValue   float64   `json:"portfolioValue"`
	DailyReturn      float64   `json:"dailyReturn"`
	CumulativeReturn float64   `json:"cumulativeReturn"`
	Drawdown         float64   `json:"drawdown"`
}

// Result is the fully-populated outcome of one run. It is handed to the
// caller at request end and never mutated afterwards.
//
// WinRate is a percentage here (matching the service response shape);
// Metrics.WinRate is the same figure as a fraction.
type Result struct {
	RunID      string              `json:"runId"`
	StrategyID string              `json:"strategyId"`
	Params     map[string]float64  `json:"parameters,omitempty"`
	Symbols    []string            `json:"symbols"`
	Skipped    []string            `json:"skippedSymbols,omitempty"`
	Start      time.Time           `json:"startDate"`
	End        time.Time           `json:"endDate"`

	InitialCapital float64 `json:"initialCapital"`
	FinalCapital   float64 `json:"finalCapital"`
	TotalTrades    int     `json:"totalTrades"`
	WinRate        float64 `json:"winRate"`
	MaxDrawdown    float64 `json:"maxDrawdown"`
	SharpeRatio    float64 `json:"sharpeRatio"`
	TotalReturn    float64 `json:"totalReturn"`

	Trades       []sim.Trade         `json:"trades"`
	Equity       []sim.EquitySnapshot `json:"-"`
	DailyReturns []DailyReturn       `json:"dailyReturns"`
	Metrics      metrics.Metrics     `json:"metrics"`

	// OpenPositions holds positions still open at the end of the run
	// (e.g. a symbol whose data ran out mid-run). They are excluded from
	// closed-trade statistics but included in FinalCapital valuation.
	OpenPositions []sim.Position `json:"openPositions,omitempty"`
}

func buildDailyReturns(equity []sim.EquitySnapshot, initialCapital float64) []DailyReturn {
	if len(equity) < 2 {
		return nil
	}

	out := make([]DailyReturn, 0, len(equity)-1)
	peak := equity[0].Value
	for i := 1; i < len(equity); i++ {
		prev, cur := equity[i-1].Value, equity[i].Value
		if cur > peak {
			peak = cur
		}
		drawdown := 0.0
		if peak > 0 {
			drawdown = (peak - cur) / peak
		}
		out = append(out, DailyReturn{
			Date:             equity[i].Time,
			PortfolioValue:   cur,
			DailyReturn:      (cur - prev) / prev,
			CumulativeReturn: (cur - initialCapital) / initialCapital,
			Drawdown:         drawdown,
		})
	}
	return out
}

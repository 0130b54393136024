// Package metrics computes performance statistics from a completed run's
// trade log and equity curve. Compute is a pure function: degenerate
// inputs (no trades or no equity points) yield all-zero metrics rather
// than errors, and a run with no losing trades reports ProfitFactor as
// +Inf rather than failing.
package metrics

import (
	"encoding/json"
	"math"

	"backtester/sim"
)

// TradingDaysPerYear is the annualization factor for daily bars.
const TradingDaysPerYear = 252

// Metrics is the full statistics set for one backtest run. Ratios are
// fractions (WinRate 0.55 = 55%), drawdown is a fraction of the peak.
type Metrics struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpeRatio"`
	SortinoRatio     float64 `json:"sortinoRatio"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
	CalmarRatio      float64 `json:"calmarRatio"`
	WinRate          float64 `json:"winRate"`
	ProfitFactor     float64 `json:"profitFactor"`
	AvgWin           float64 `json:"avgWin"`
	AvgLoss          float64 `json:"avgLoss"`
	LargestWin       float64 `json:"largestWin"`
	LargestLoss      float64 `json:"largestLoss"`
}

// MarshalJSON renders ProfitFactor as null when it is the infinite
// no-losers sentinel, which encoding/json refuses to serialize.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type plain Metrics
	out := struct {
		plain
		ProfitFactor *float64 `json:"profitFactor"`
	}{plain: plain(m)}
	if !math.IsInf(m.ProfitFactor, 0) {
		out.ProfitFactor = &m.ProfitFactor
	}
	return json.Marshal(out)
}

// Compute derives the metrics set from the trade log, equity snapshots
// and starting capital. riskFreeRate is annual (0.06 = 6%).
func Compute(trades []sim.Trade, equity []sim.EquitySnapshot, initialCapital, riskFreeRate float64) Metrics {
	if len(trades) == 0 || len(equity) == 0 {
		return Metrics{}
	}

	values := make([]float64, len(equity))
	for i, e := range equity {
		values[i] = e.Value
	}

	finalValue := values[len(values)-1]
	totalReturn := (finalValue - initialCapital) / initialCapital

	returns := DailyReturns(values)

	// Annualized return over the observed trading days.
	annualized := 0.0
	if n := len(returns); n > 0 {
		annualized = math.Pow(1+totalReturn, TradingDaysPerYear/float64(n)) - 1
	}

	volatility := 0.0
	if len(returns) > 1 {
		volatility = stddev(returns) * math.Sqrt(TradingDaysPerYear)
	}

	sharpe := 0.0
	if volatility > 0 {
		sharpe = (annualized - riskFreeRate) / volatility
	}

	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	downside := 0.0
	if len(negative) > 1 {
		downside = stddev(negative) * math.Sqrt(TradingDaysPerYear)
	}
	sortino := 0.0
	if downside > 0 {
		sortino = (annualized - riskFreeRate) / downside
	}

	maxDD := MaxDrawdown(values)

	calmar := 0.0
	if maxDD > 0 {
		calmar = annualized / maxDD
	}

	m := Metrics{
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualized,
		Volatility:       volatility,
		SharpeRatio:      sharpe,
		SortinoRatio:     sortino,
		MaxDrawdown:      maxDD,
		CalmarRatio:      calmar,
	}
	m.addTradeStats(trades)
	return m
}

func (m *Metrics) addTradeStats(trades []sim.Trade) {
	var wins, losses int
	var totalWins, totalLosses float64

	for _, t := range trades {
		switch {
		case t.PnL > 0:
			wins++
			totalWins += t.PnL
			if t.PnL > m.LargestWin {
				m.LargestWin = t.PnL
			}
		case t.PnL < 0:
			losses++
			totalLosses += -t.PnL
			if t.PnL < m.LargestLoss {
				m.LargestLoss = t.PnL
			}
		}
	}

	m.WinRate = float64(wins) / float64(len(trades))

	if totalLosses > 0 {
		m.ProfitFactor = totalWins / totalLosses
	} else {
		// No losing trades: sentinel, not a crash.
		m.ProfitFactor = math.Inf(1)
	}

	if wins > 0 {
		m.AvgWin = totalWins / float64(wins)
	}
	if losses > 0 {
		m.AvgLoss = totalLosses / float64(losses)
	}
}

// DailyReturns converts an equity value series to period-over-period
// returns: r[i-1] = (v[i] - v[i-1]) / v[i-1].
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		out = append(out, (values[i]-values[i-1])/values[i-1])
	}
	return out
}

// MaxDrawdown returns the largest peak-to-trough decline as a fraction of
// the running peak. Zero for flat or monotonically rising series.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if dd := (peak - v) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	n := float64(len(xs))
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= n

	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	return math.Sqrt(variance / n)
}

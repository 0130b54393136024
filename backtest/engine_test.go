package backtest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtester/data"
	"backtester/market"
	"backtester/strategies"
)

func barSeries(start time.Time, closes ...float64) []market.Bar {
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{
			Time: start.AddDate(0, 0, i),
			Open: c, High: c, Low: c, Close: c,
			Volume: 1000,
		}
	}
	return out
}

// scriptStrategy replays a fixed signal sequence, one per bar.
type scriptStrategy struct {
	i       int
	signals []strategies.Signal
}

func (s *scriptStrategy) Name() string { return "script" }
func (s *scriptStrategy) Warmup() int  { return 0 }
func (s *scriptStrategy) Reset()       { s.i = 0 }

func (s *scriptStrategy) OnBar(market.Bar, bool) strategies.Signal {
	if s.i >= len(s.signals) {
		return strategies.Hold
	}
	sig := s.signals[s.i]
	s.i++
	return sig
}

func scriptRegistry(signals ...strategies.Signal) *strategies.Registry {
	reg := strategies.NewRegistry()
	reg.Register(strategies.Definition{
		ID: "script",
		Build: func(strategies.Values) (strategies.Strategy, error) {
			return &scriptStrategy{signals: signals}, nil
		},
	})
	return reg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
)

func baseRequest(strategyID string) Request {
	return Request{
		StrategyID:     strategyID,
		Symbols:        []string{"AAPL"},
		Start:          testStart,
		End:            testEnd,
		InitialCapital: 10_000,
		Commission:     0,
		RiskFreeRate:   DefaultRiskFreeRate,
	}
}

func TestRunValidation(t *testing.T) {
	provider := data.NewMemoryProvider()
	engine := NewEngine(provider, WithLogger(quietLogger()))

	cases := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"zero capital", func(r *Request) { r.InitialCapital = 0 }, "initialCapital"},
		{"negative capital", func(r *Request) { r.InitialCapital = -100 }, "initialCapital"},
		{"no symbols", func(r *Request) { r.Symbols = nil }, "symbols"},
		{"blank symbol", func(r *Request) { r.Symbols = []string{"AAPL", "  "} }, "symbols"},
		{"missing dates", func(r *Request) { r.Start = time.Time{} }, "dateRange"},
		{"start after end", func(r *Request) { r.Start, r.End = r.End, r.Start }, "dateRange"},
		{"commission too high", func(r *Request) { r.Commission = 1 }, "commission"},
		{"negative commission", func(r *Request) { r.Commission = -0.1 }, "commission"},
		{"unknown strategy", func(r *Request) { r.StrategyID = "nope" }, "strategy"},
		{"bad parameter", func(r *Request) {
			r.StrategyID = "ma-cross"
			r.Params = strategies.Values{"fast_period": -3}
		}, "strategy"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest("noop")
			tc.mutate(&req)

			_, err := engine.Run(context.Background(), req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestRunNoData(t *testing.T) {
	engine := NewEngine(data.NewMemoryProvider(), WithLogger(quietLogger()))

	_, err := engine.Run(context.Background(), baseRequest("noop"))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRunSkipsFailedSymbols(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.Add("AAPL", barSeries(testStart, 100, 101, 102))
	engine := NewEngine(provider, WithLogger(quietLogger()))

	req := baseRequest("noop")
	req.Symbols = []string{"AAPL", "MSFT"}

	result, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"MSFT"}, result.Skipped)
	assert.Len(t, result.Equity, 3)
}

func TestRunNoopHoldsCapital(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.Add("AAPL", barSeries(testStart, 100, 90, 110, 80, 120))
	engine := NewEngine(provider, WithLogger(quietLogger()))

	result, err := engine.Run(context.Background(), baseRequest("noop"))
	require.NoError(t, err)

	assert.Equal(t, 10_000.0, result.FinalCapital)
	assert.Equal(t, 0.0, result.TotalReturn)
	assert.Zero(t, result.TotalTrades)
	assert.Empty(t, result.Trades)
	assert.Empty(t, result.OpenPositions)
	for _, snap := range result.Equity {
		assert.Equal(t, 10_000.0, snap.Value)
	}
}

func TestRunScriptedRoundTrip(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.Add("AAPL", barSeries(testStart, 100, 100, 110, 120, 125))

	reg := scriptRegistry(
		strategies.Hold, strategies.Buy, strategies.Hold, strategies.Sell, strategies.Hold)
	engine := NewEngine(provider, WithLogger(quietLogger()), WithRegistry(reg))

	result, err := engine.Run(context.Background(), baseRequest("script"))
	require.NoError(t, err)

	// Buy 100 units at 100 on bar 1, sell at 120 on bar 3.
	assert.Equal(t, 12_000.0, result.FinalCapital)
	assert.InDelta(t, 0.2, result.TotalReturn, 1e-12)
	assert.Equal(t, 1, result.TotalTrades)
	assert.Equal(t, 100.0, result.WinRate)
	assert.NotEmpty(t, result.RunID)

	require.Len(t, result.Trades, 1)
	tr := result.Trades[0]
	assert.Equal(t, 2000.0, tr.PnL)
	assert.Equal(t, 100.0, tr.Quantity)

	wantEquity := []float64{10_000, 10_000, 11_000, 12_000, 12_000}
	require.Len(t, result.Equity, len(wantEquity))
	for i, want := range wantEquity {
		assert.Equal(t, want, result.Equity[i].Value, "bar %d", i)
	}

	require.Len(t, result.DailyReturns, 4)
	assert.InDelta(t, 0.1, result.DailyReturns[1].DailyReturn, 1e-12)
	assert.InDelta(t, 0.2, result.DailyReturns[3].CumulativeReturn, 1e-12)

	assert.Equal(t, 1.0, result.Metrics.WinRate)
	assert.InDelta(t, 0.2, result.Metrics.TotalReturn, 1e-12)
}

func TestResultJSONWithNoLosers(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.Add("AAPL", barSeries(testStart, 100, 100, 110, 120, 125))

	reg := scriptRegistry(
		strategies.Hold, strategies.Buy, strategies.Hold, strategies.Sell, strategies.Hold)
	engine := NewEngine(provider, WithLogger(quietLogger()), WithRegistry(reg))

	result, err := engine.Run(context.Background(), baseRequest("script"))
	require.NoError(t, err)

	// A winners-only run carries the infinite profit-factor sentinel; the
	// full result must still serialize.
	require.True(t, math.IsInf(result.Metrics.ProfitFactor, 1))

	b, err := json.Marshal(result)
	require.NoError(t, err)

	var got struct {
		Metrics map[string]any `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Nil(t, got.Metrics["profitFactor"])
}

func TestRunCommissionDragsReturns(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.Add("AAPL", barSeries(testStart, 100, 100, 110, 120, 125))

	run := func(commission float64) float64 {
		reg := scriptRegistry(
			strategies.Hold, strategies.Buy, strategies.Hold, strategies.Sell, strategies.Hold)
		engine := NewEngine(provider, WithLogger(quietLogger()), WithRegistry(reg))

		req := baseRequest("script")
		req.Commission = commission
		result, err := engine.Run(context.Background(), req)
		require.NoError(t, err)
		return result.FinalCapital
	}

	free := run(0)
	taxed := run(DefaultCommission)
	assert.Less(t, taxed, free)
}

func TestRunLeavesPositionOpen(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.Add("AAPL", barSeries(testStart, 100, 100, 110))

	reg := scriptRegistry(strategies.Hold, strategies.Buy, strategies.Hold)
	engine := NewEngine(provider, WithLogger(quietLogger()), WithRegistry(reg))

	result, err := engine.Run(context.Background(), baseRequest("script"))
	require.NoError(t, err)

	// Never sold: no closed trades, but the position is marked to market.
	assert.Zero(t, result.TotalTrades)
	require.Len(t, result.OpenPositions, 1)
	assert.Equal(t, "AAPL", result.OpenPositions[0].Symbol)
	assert.Equal(t, 11_000.0, result.FinalCapital)
}

func TestRunMultiSymbol(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.Add("AAPL", barSeries(testStart, 100, 101, 102, 103))
	provider.Add("MSFT", barSeries(testStart, 200, 202)) // shorter history

	engine := NewEngine(provider, WithLogger(quietLogger()))

	req := baseRequest("noop")
	req.Symbols = []string{"MSFT", "AAPL"}

	result, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	// Loop runs to the longest feed.
	assert.Len(t, result.Equity, 4)
	assert.Equal(t, 10_000.0, result.FinalCapital)
}

func TestConcurrentRunsShareNothing(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.Add("AAPL", barSeries(testStart, 100, 100, 110, 120, 125))

	reg := scriptRegistry(
		strategies.Hold, strategies.Buy, strategies.Hold, strategies.Sell, strategies.Hold)
	engine := NewEngine(provider, WithLogger(quietLogger()), WithRegistry(reg))

	const n = 8
	results := make(chan *Result, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			r, err := engine.Run(context.Background(), baseRequest("script"))
			results <- r
			errs <- err
		}()
	}

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
		r := <-results
		assert.Equal(t, 12_000.0, r.FinalCapital)
		assert.False(t, seen[r.RunID], "run IDs must be unique")
		seen[r.RunID] = true
	}
}

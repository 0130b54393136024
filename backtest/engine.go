// Package backtest orchestrates a full backtest run: it validates the
// request, materializes bar data for every symbol up front, drives the
// bar-by-bar loop through the strategy and execution simulator, and
// assembles the trade log, equity curve and performance metrics into a
// Result.
//
// Each Run call owns an independent broker, strategies and equity log, so
// one Engine value may serve concurrent runs.
package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"backtester/data"
	"backtester/internal/id"
	"backtester/market"
	"backtester/metrics"
	"backtester/sim"
	"backtester/strategies"
)

// Engine runs backtests against a data provider.
type Engine struct {
	provider data.Provider
	registry *strategies.Registry
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger; defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRegistry swaps the strategy registry; defaults to the built-ins.
func WithRegistry(r *strategies.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// NewEngine creates an engine reading bars from provider.
func NewEngine(provider data.Provider, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		registry: strategies.Builtins(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the engine's strategy registry (for listing).
func (e *Engine) Registry() *strategies.Registry { return e.registry }

// feed is one active instrument in a run: its bars and its strategy
// instance. Strategy and indicator state is per-instrument.
type feed struct {
	symbol string
	bars   []market.Bar
	strat  strategies.Strategy
}

// Run executes one backtest. It returns *ValidationError for bad
// requests, ErrNoData when no symbol yields bars, and *SimulationError
// if an invariant breaks mid-loop; otherwise the fully-populated Result.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(e.registry); err != nil {
		return nil, err
	}

	runID := id.New()
	log := e.logger.With("run", runID, "strategy", req.StrategyID)

	feeds, skipped, err := e.loadFeeds(ctx, log, req)
	if err != nil {
		return nil, err
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("%w (requested %v)", ErrNoData, req.Symbols)
	}

	broker := sim.NewBroker(req.InitialCapital, req.Commission, log)

	// All feeds are materialized before the loop; no I/O happens inside.
	maxBars := 0
	for _, f := range feeds {
		if len(f.bars) > maxBars {
			maxBars = len(f.bars)
		}
	}

	equity := make([]sim.EquitySnapshot, 0, maxBars)
	for i := 0; i < maxBars; i++ {
		var snapTime time.Time
		for _, f := range feeds {
			if i >= len(f.bars) {
				// Shorter history: the instrument goes inactive; any open
				// position stays open and out of closed-trade stats.
				continue
			}
			bar := f.bars[i]
			if bar.Time.After(snapTime) {
				snapTime = bar.Time
			}

			broker.Observe(f.symbol, bar)

			switch f.strat.OnBar(bar, broker.HasPosition(f.symbol)) {
			case strategies.Buy:
				broker.Buy(f.symbol, bar)
			case strategies.Sell:
				broker.Sell(f.symbol, bar)
			}
		}

		snap := broker.MarkToMarket(snapTime)
		if math.IsNaN(snap.Value) || math.IsInf(snap.Value, 0) {
			serr := &SimulationError{RunID: runID,
				Err: fmt.Errorf("non-finite equity %v at bar %d", snap.Value, i)}
			log.Error("aborting run", "error", serr.Err, "bar", i)
			return nil, serr
		}
		equity = append(equity, snap)
	}

	return e.assemble(runID, req, broker, equity, skipped), nil
}

// loadFeeds fetches bars for every requested symbol, building a strategy
// instance per active symbol. A symbol that fails to load is skipped with
// a warning; the run continues with the rest.
func (e *Engine) loadFeeds(ctx context.Context, log *slog.Logger, req Request) ([]*feed, []string, error) {
	symbols := append([]string(nil), req.Symbols...)
	sort.Strings(symbols)

	var feeds []*feed
	var skipped []string
	for _, sym := range symbols {
		bars, err := e.provider.Bars(ctx, sym, req.Start, req.End)
		if err != nil || len(bars) == 0 {
			log.Warn("skipping symbol: no usable bar data", "symbol", sym, "error", err)
			skipped = append(skipped, sym)
			continue
		}

		strat, err := e.registry.New(req.StrategyID, req.Params)
		if err != nil {
			// Validate already vetted this; a failure here is internal.
			return nil, nil, &SimulationError{Err: fmt.Errorf("build strategy: %w", err)}
		}

		feeds = append(feeds, &feed{symbol: sym, bars: bars, strat: strat})
	}
	return feeds, skipped, nil
}

func (e *Engine) assemble(runID string, req Request, broker *sim.Broker,
	equity []sim.EquitySnapshot, skipped []string) *Result {

	trades := broker.Trades()

	finalCapital := req.InitialCapital
	if len(equity) > 0 {
		finalCapital = equity[len(equity)-1].Value
	}

	m := metrics.Compute(trades, equity, req.InitialCapital, req.RiskFreeRate)

	wins := 0
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
		}
	}
	winRatePct := 0.0
	if len(trades) > 0 {
		winRatePct = float64(wins) / float64(len(trades)) * 100
	}

	return &Result{
		RunID:          runID,
		StrategyID:     req.StrategyID,
		Params:         req.Params,
		Symbols:        req.Symbols,
		Skipped:        skipped,
		Start:          req.Start,
		End:            req.End,
		InitialCapital: req.InitialCapital,
		FinalCapital:   finalCapital,
		TotalTrades:    len(trades),
		WinRate:        winRatePct,
		MaxDrawdown:    m.MaxDrawdown,
		SharpeRatio:    m.SharpeRatio,
		TotalReturn:    (finalCapital - req.InitialCapital) / req.InitialCapital,
		Trades:         trades,
		Equity:         equity,
		DailyReturns:   buildDailyReturns(equity, req.InitialCapital),
		Metrics:        m,
		OpenPositions:  broker.OpenPositions(),
	}
}

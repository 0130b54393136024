// Package sim is the execution simulator: it turns order intents into
// fills against bar prices and tracks cash, positions, equity and the
// trade log for a single backtest run.
//
// Fill policy: immediate-close-fill. An order emitted on a bar fills at
// that bar's close, and equity is valued at the same close, so fills and
// snapshots never disagree. A flat percentage commission is charged on
// the notional of every fill.
package sim

import (
	"log/slog"
	"math"
	"time"

	"backtester/internal/id"
	"backtester/market"
)

// Broker simulates a single cash account. It is not safe for concurrent
// use; each run owns its own instance.
type Broker struct {
	cash       float64
	commission float64

	positions map[string]*Position
	lastClose map[string]float64
	trades    []Trade

	logger *slog.Logger
}

// NewBroker creates a broker with the given starting cash and commission
// rate (0.001 = 0.1% of notional per fill).
func NewBroker(cash, commission float64, logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		cash:       cash,
		commission: commission,
		positions:  make(map[string]*Position),
		lastClose:  make(map[string]float64),
		logger:     logger,
	}
}

// Observe records the latest close for a symbol. The engine calls it for
// every bar before asking strategies for intents, so valuation always
// uses the current bar's close.
func (b *Broker) Observe(symbol string, bar market.Bar) {
	b.lastClose[symbol] = bar.Close
}

// Buy opens an all-in long position at the bar's close: quantity is
// floor(cash / (price * (1+commission))), which guarantees the fill never
// overdraws cash. Returns false (a logged no-op) when a position is
// already open or cash cannot afford a single unit.
func (b *Broker) Buy(symbol string, bar market.Bar) bool {
	if _, open := b.positions[symbol]; open {
		b.logger.Warn("buy rejected: position already open", "symbol", symbol)
		return false
	}

	price := bar.Close
	qty := math.Floor(b.cash / (price * (1 + b.commission)))
	if qty < 1 {
		b.logger.Warn("buy rejected: insufficient cash",
			"symbol", symbol, "cash", b.cash, "price", price)
		return false
	}

	notional := qty * price
	fee := notional * b.commission
	b.cash -= notional + fee

	b.positions[symbol] = &Position{
		Symbol:          symbol,
		Quantity:        qty,
		EntryPrice:      price,
		EntryTime:       bar.Time,
		EntryCommission: fee,
	}

	b.logger.Debug("buy filled",
		"symbol", symbol, "quantity", qty, "price", price, "commission", fee)
	return true
}

// Sell closes the full position at the bar's close and appends the round
// trip to the trade log. Selling with no open position is a logged no-op.
func (b *Broker) Sell(symbol string, bar market.Bar) bool {
	pos, open := b.positions[symbol]
	if !open {
		b.logger.Warn("sell rejected: no open position", "symbol", symbol)
		return false
	}

	price := bar.Close
	notional := pos.Quantity * price
	fee := notional * b.commission
	b.cash += notional - fee

	totalFee := pos.EntryCommission + fee
	pnl := (price-pos.EntryPrice)*pos.Quantity - totalFee

	b.trades = append(b.trades, Trade{
		ID:         id.New(),
		Symbol:     symbol,
		Side:       SideBuy,
		EntryTime:  pos.EntryTime,
		ExitTime:   bar.Time,
		Quantity:   pos.Quantity,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  price,
		PnL:        pnl,
		Commission: totalFee,
	})
	delete(b.positions, symbol)

	b.logger.Debug("sell filled",
		"symbol", symbol, "quantity", pos.Quantity, "price", price, "pnl", pnl)
	return true
}

// MarkToMarket returns the end-of-bar equity snapshot: cash plus every
// open position at its latest observed close.
func (b *Broker) MarkToMarket(t time.Time) EquitySnapshot {
	value := b.cash
	for sym, pos := range b.positions {
		value += pos.Quantity * b.lastClose[sym]
	}
	return EquitySnapshot{Time: t, Value: value, Cash: b.cash}
}

// Cash returns the free cash balance.
func (b *Broker) Cash() float64 { return b.cash }

// HasPosition reports whether a position is open in symbol.
func (b *Broker) HasPosition(symbol string) bool {
	_, ok := b.positions[symbol]
	return ok
}

// Position returns a copy of the open position in symbol, if any.
func (b *Broker) Position(symbol string) (Position, bool) {
	pos, ok := b.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// OpenPositions returns copies of all open positions.
func (b *Broker) OpenPositions() []Position {
	out := make([]Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, *pos)
	}
	return out
}

// Trades returns the closed round trips in fill order.
func (b *Broker) Trades() []Trade { return b.trades }

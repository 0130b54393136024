// Package journal records completed backtest runs: the run summary, the
// closed trades and the equity curve. The engine itself never persists
// anything; the CLI wires a journal in when asked to keep artifacts.
package journal

import "time"

// TradeRecord mirrors the trades table.
type TradeRecord struct {
	RunID      string
	TradeID    string
	Symbol     string
	Side       string
	Quantity   float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	PnL        float64
	Commission float64
}

// EquityRecord mirrors the equity table.
type EquityRecord struct {
	RunID string
	Time  time.Time
	Value float64
	Cash  float64
}

// RunRecord mirrors the runs table.
type RunRecord struct {
	RunID    string
	Created  time.Time
	Strategy string
	Params   []byte // strategy parameters, JSON
	Symbols  string // comma-separated
	Start    time.Time
	End      time.Time

	InitialCapital float64
	FinalCapital   float64

	Trades       int
	Wins         int
	Losses       int
	WinRate      float64 // percent
	TotalReturn  float64
	MaxDrawdown  float64
	SharpeRatio  float64
	ProfitFactor float64
}

// Journal persists run artifacts.
type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Journal backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the journal database at path and
// applies the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, params, symbols, start_time, end_time,
		 initial_capital, final_capital, trades, wins, losses,
		 win_rate, total_return, max_drawdown, sharpe_ratio, profit_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, string(r.Params), r.Symbols, r.Start, r.End,
		r.InitialCapital, r.FinalCapital, r.Trades, r.Wins, r.Losses,
		r.WinRate, r.TotalReturn, r.MaxDrawdown, r.SharpeRatio, r.ProfitFactor,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, symbol, side, quantity, entry_price, exit_price,
		 entry_time, exit_time, pnl, commission)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Symbol, t.Side, t.Quantity, t.EntryPrice, t.ExitPrice,
		t.EntryTime, t.ExitTime, t.PnL, t.Commission,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, time, value, cash)
		VALUES (?, ?, ?, ?)`,
		e.RunID, e.Time, e.Value, e.Cash,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

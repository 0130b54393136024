package journal

import (
	"database/sql"
	"fmt"
)

// GetRun returns one run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	row := j.db.QueryRow(`
		SELECT run_id, created, strategy, params, symbols, start_time, end_time,
		       initial_capital, final_capital, trades, wins, losses,
		       win_rate, total_return, max_drawdown, sharpe_ratio, profit_factor
		FROM runs WHERE run_id = ?`, runID)

	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return RunRecord{}, fmt.Errorf("run %q not found", runID)
	}
	return rec, err
}

// ListRuns returns run summaries, newest first.
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, strategy, params, symbols, start_time, end_time,
		       initial_capital, final_capital, trades, wins, losses,
		       win_rate, total_return, max_drawdown, sharpe_ratio, profit_factor
		FROM runs ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListTradesByRun returns the closed trades of a run in exit order.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, symbol, side, quantity, entry_price, exit_price,
		       entry_time, exit_time, pnl, commission
		FROM trades WHERE run_id = ? ORDER BY exit_time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.RunID,
			&rec.Symbol,
			&rec.Side,
			&rec.Quantity,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.EntryTime,
			&rec.ExitTime,
			&rec.PnL,
			&rec.Commission,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquityByRun returns a run's equity curve in time order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, value, cash
		FROM equity WHERE run_id = ? ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var rec EquityRecord
		if err := rows.Scan(&rec.RunID, &rec.Time, &rec.Value, &rec.Cash); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var rec RunRecord
	var params string
	err := s.Scan(
		&rec.RunID,
		&rec.Created,
		&rec.Strategy,
		&params,
		&rec.Symbols,
		&rec.Start,
		&rec.End,
		&rec.InitialCapital,
		&rec.FinalCapital,
		&rec.Trades,
		&rec.Wins,
		&rec.Losses,
		&rec.WinRate,
		&rec.TotalReturn,
		&rec.MaxDrawdown,
		&rec.SharpeRatio,
		&rec.ProfitFactor,
	)
	rec.Params = []byte(params)
	return rec, err
}

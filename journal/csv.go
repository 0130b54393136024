package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV is a Journal writing trades and equity to two CSV files. Run
// summaries are not written (they live in the printed report or SQLite).
type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	fail := func(err error) (*CSV, error) {
		tf.Close()
		ef.Close()
		return nil, err
	}

	if err := tw.Write([]string{"run_id", "trade_id", "symbol", "side", "quantity",
		"entry_price", "exit_price", "entry_time", "exit_time", "pnl", "commission"}); err != nil {
		return fail(err)
	}
	if err := ew.Write([]string{"run_id", "time", "value", "cash"}); err != nil {
		return fail(err)
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return fail(err)
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return fail(err)
	}

	return &CSV{trades: tw, equity: ew, tf: tf, ef: ef}, nil
}

func (j *CSV) RecordRun(RunRecord) error { return nil }

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.RunID,
		t.TradeID,
		t.Symbol,
		t.Side,
		f(t.Quantity),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.EntryTime.Format(time.RFC3339),
		t.ExitTime.Format(time.RFC3339),
		f(t.PnL),
		f(t.Commission),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquityRecord) error {
	err := j.equity.Write([]string{
		e.RunID,
		e.Time.Format(time.RFC3339),
		f(e.Value),
		f(e.Cash),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"backtester/backtest"
	"backtester/config"
	"backtester/data"
	"backtester/journal"
)

var runFlags struct {
	configPath string
	logLevel   string

	strategy   string
	params     []string
	symbols    []string
	start      string
	end        string
	capital    float64
	commission float64
	riskFree   float64
	dataDir    string

	dbPath     string
	tradesCSV  string
	equityCSV  string
	jsonOutput bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest and print the results",
	Example: `  backtester run -s ma-cross --symbols AAPL,MSFT \
      --start 2023-01-02 --end 2024-01-02 --capital 100000 \
      -p fast_period=10 -p slow_period=30`,
	RunE: runBacktest,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.configPath, "config", "c", "", "config file (YAML or JSON)")
	f.StringVar(&runFlags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	f.StringVarP(&runFlags.strategy, "strategy", "s", "", "strategy identifier")
	f.StringArrayVarP(&runFlags.params, "param", "p", nil, "strategy parameter as name=value (repeatable)")
	f.StringSliceVar(&runFlags.symbols, "symbols", nil, "symbols to trade")
	f.StringVar(&runFlags.start, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&runFlags.end, "end", "", "end date (YYYY-MM-DD)")
	f.Float64Var(&runFlags.capital, "capital", 0, "initial capital")
	f.Float64Var(&runFlags.commission, "commission", 0, "commission rate per fill")
	f.Float64Var(&runFlags.riskFree, "risk-free", 0, "annual risk-free rate")
	f.StringVar(&runFlags.dataDir, "data", "", "directory of <SYMBOL>.csv bar files")

	f.StringVar(&runFlags.dbPath, "db", "", "journal run to this SQLite database")
	f.StringVar(&runFlags.tradesCSV, "trades-csv", "", "write trades to this CSV file")
	f.StringVar(&runFlags.equityCSV, "equity-csv", "", "write equity curve to this CSV file")
	f.BoolVar(&runFlags.jsonOutput, "json", false, "print the full result as JSON")

	rootCmd.AddCommand(runCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runFlags.configPath)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	logger := newLogger(cfg.Log.Level)

	params, err := parseParams(runFlags.params)
	if err != nil {
		return err
	}
	for k, v := range cfg.Strategy.Params {
		if _, ok := params[k]; !ok {
			params[k] = v
		}
	}

	start, end, err := cfg.Dates()
	if err != nil {
		return err
	}

	req := backtest.Request{
		StrategyID:     cfg.Strategy.ID,
		Params:         params,
		Symbols:        cfg.Backtest.Symbols,
		Start:          start,
		End:            end,
		InitialCapital: cfg.Backtest.InitialCapital,
		Commission:     cfg.Backtest.Commission,
		RiskFreeRate:   cfg.Backtest.RiskFreeRate,
	}

	provider := data.NewCSVProvider(cfg.Data.Dir)
	engine := backtest.NewEngine(provider, backtest.WithLogger(logger))

	result, err := engine.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	jnl, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if jnl != nil {
		defer jnl.Close()
		if err := recordResult(jnl, result); err != nil {
			return fmt.Errorf("journal run %s: %w", result.RunID, err)
		}
		logger.Info("run journaled", "run", result.RunID)
	}

	if runFlags.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(cmd, result)
	return nil
}

// applyRunFlags overlays explicitly-set flags on the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("strategy") {
		cfg.Strategy.ID = runFlags.strategy
	}
	if f.Changed("symbols") {
		cfg.Backtest.Symbols = runFlags.symbols
	}
	if f.Changed("start") {
		cfg.Backtest.Start = runFlags.start
	}
	if f.Changed("end") {
		cfg.Backtest.End = runFlags.end
	}
	if f.Changed("capital") {
		cfg.Backtest.InitialCapital = runFlags.capital
	}
	if f.Changed("commission") {
		cfg.Backtest.Commission = runFlags.commission
	}
	if f.Changed("risk-free") {
		cfg.Backtest.RiskFreeRate = runFlags.riskFree
	}
	if f.Changed("data") {
		cfg.Data.Dir = runFlags.dataDir
	}
	if f.Changed("db") {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = runFlags.dbPath
	}
	if f.Changed("trades-csv") || f.Changed("equity-csv") {
		cfg.Journal.Type = "csv"
		cfg.Journal.TradesFile = runFlags.tradesCSV
		cfg.Journal.EquityFile = runFlags.equityCSV
	}
	if f.Changed("log-level") {
		cfg.Log.Level = runFlags.logLevel
	}
}

func parseParams(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("bad --param %q (want name=value)", p)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad --param %q: %v is not a number", p, raw)
		}
		out[name] = v
	}
	return out, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	default:
		return nil, nil
	}
}

// recordResult writes the run summary, trades and equity curve.
func recordResult(jnl journal.Journal, r *backtest.Result) error {
	params, err := json.Marshal(r.Params)
	if err != nil {
		return err
	}

	if err := jnl.RecordRun(journal.RunRecord{
		RunID:          r.RunID,
		Created:        time.Now().UTC(),
		Strategy:       r.StrategyID,
		Params:         params,
		Symbols:        strings.Join(r.Symbols, ","),
		Start:          r.Start,
		End:            r.End,
		InitialCapital: r.InitialCapital,
		FinalCapital:   r.FinalCapital,
		Trades:         r.TotalTrades,
		Wins:           countWins(r),
		Losses:         countLosses(r),
		WinRate:        r.WinRate,
		TotalReturn:    r.TotalReturn,
		MaxDrawdown:    r.MaxDrawdown,
		SharpeRatio:    r.SharpeRatio,
		ProfitFactor:   r.Metrics.ProfitFactor,
	}); err != nil {
		return err
	}

	for _, t := range r.Trades {
		if err := jnl.RecordTrade(journal.TradeRecord{
			RunID:      r.RunID,
			TradeID:    t.ID,
			Symbol:     t.Symbol,
			Side:       string(t.Side),
			Quantity:   t.Quantity,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			PnL:        t.PnL,
			Commission: t.Commission,
		}); err != nil {
			return err
		}
	}

	for _, e := range r.Equity {
		if err := jnl.RecordEquity(journal.EquityRecord{
			RunID: r.RunID,
			Time:  e.Time,
			Value: e.Value,
			Cash:  e.Cash,
		}); err != nil {
			return err
		}
	}
	return nil
}

func countWins(r *backtest.Result) int {
	n := 0
	for _, t := range r.Trades {
		if t.PnL > 0 {
			n++
		}
	}
	return n
}

func countLosses(r *backtest.Result) int {
	n := 0
	for _, t := range r.Trades {
		if t.PnL < 0 {
			n++
		}
	}
	return n
}

func printResult(cmd *cobra.Command, r *backtest.Result) {
	out := cmd.OutOrStdout()
	m := r.Metrics

	fmt.Fprintf(out, "\nBacktest %s\n", r.RunID)
	fmt.Fprintf(out, "=====================================\n")
	fmt.Fprintf(out, "Strategy:          %s\n", r.StrategyID)
	fmt.Fprintf(out, "Symbols:           %s\n", strings.Join(r.Symbols, ", "))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped:           %s\n", strings.Join(r.Skipped, ", "))
	}
	fmt.Fprintf(out, "Period:            %s to %s\n",
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Fprintf(out, "Initial Capital:   $%.2f\n", r.InitialCapital)
	fmt.Fprintf(out, "Final Capital:     $%.2f\n", r.FinalCapital)
	fmt.Fprintf(out, "Total Return:      %.2f%%\n", r.TotalReturn*100)
	fmt.Fprintf(out, "Annualized Return: %.2f%%\n", m.AnnualizedReturn*100)
	fmt.Fprintf(out, "Volatility:        %.2f%%\n", m.Volatility*100)
	fmt.Fprintf(out, "Sharpe Ratio:      %.2f\n", m.SharpeRatio)
	fmt.Fprintf(out, "Sortino Ratio:     %.2f\n", m.SortinoRatio)
	fmt.Fprintf(out, "Max Drawdown:      %.2f%%\n", m.MaxDrawdown*100)
	fmt.Fprintf(out, "Calmar Ratio:      %.2f\n", m.CalmarRatio)
	fmt.Fprintf(out, "-------------------------------------\n")
	fmt.Fprintf(out, "Total Trades:      %d\n", r.TotalTrades)
	fmt.Fprintf(out, "Win Rate:          %.1f%%\n", r.WinRate)
	if math.IsInf(m.ProfitFactor, 1) {
		fmt.Fprintf(out, "Profit Factor:     inf\n")
	} else {
		fmt.Fprintf(out, "Profit Factor:     %.2f\n", m.ProfitFactor)
	}
	fmt.Fprintf(out, "Avg Win:           $%.2f\n", m.AvgWin)
	fmt.Fprintf(out, "Avg Loss:          $%.2f\n", m.AvgLoss)
	fmt.Fprintf(out, "Largest Win:       $%.2f\n", m.LargestWin)
	fmt.Fprintf(out, "Largest Loss:      $%.2f\n", m.LargestLoss)
	if len(r.OpenPositions) > 0 {
		fmt.Fprintf(out, "-------------------------------------\n")
		for _, p := range r.OpenPositions {
			fmt.Fprintf(out, "Open: %s x%.0f @ $%.2f\n", p.Symbol, p.Quantity, p.EntryPrice)
		}
	}
	fmt.Fprintln(out)
}

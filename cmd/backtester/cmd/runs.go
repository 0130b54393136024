package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"backtester/journal"
)

var runsFlags struct {
	dbPath string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List journaled backtest runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		jnl, err := journal.NewSQLite(runsFlags.dbPath)
		if err != nil {
			return err
		}
		defer jnl.Close()

		runs, err := jnl.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs journaled")
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-26s  %-12s  %-19s  %8s  %8s  %6s\n",
			"RUN", "STRATEGY", "CREATED", "RETURN", "TRADES", "WIN%")
		for _, r := range runs {
			fmt.Fprintf(out, "%-26s  %-12s  %-19s  %7.2f%%  %8d  %5.1f%%\n",
				r.RunID, r.Strategy, r.Created.Format("2006-01-02 15:04:05"),
				r.TotalReturn*100, r.Trades, r.WinRate)
		}
		return nil
	},
}

var tradesFlags struct {
	dbPath string
}

var tradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "Show the closed trades of a journaled run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jnl, err := journal.NewSQLite(tradesFlags.dbPath)
		if err != nil {
			return err
		}
		defer jnl.Close()

		trades, err := jnl.ListTradesByRun(args[0])
		if err != nil {
			return err
		}
		if len(trades) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no trades for run", args[0])
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-8s  %-10s  %8s  %10s  %10s  %10s\n",
			"SYMBOL", "EXIT", "QTY", "ENTRY", "EXIT", "PNL")
		for _, t := range trades {
			fmt.Fprintf(out, "%-8s  %-10s  %8.0f  %10.2f  %10.2f  %10.2f\n",
				t.Symbol, t.ExitTime.Format("2006-01-02"),
				t.Quantity, t.EntryPrice, t.ExitPrice, t.PnL)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsFlags.dbPath, "db", "backtester.db", "journal SQLite database")
	tradesCmd.Flags().StringVar(&tradesFlags.dbPath, "db", "backtester.db", "journal SQLite database")
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(tradesCmd)
}

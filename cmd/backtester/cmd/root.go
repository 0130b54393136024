package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Backtest trading strategies over historical bar data",
	Long: `Backtester simulates trading strategies bar-by-bar over historical
OHLCV data and reports performance metrics: returns, risk-adjusted
ratios, drawdown and trade statistics.

Strategies are selected by name with declared numeric parameters; run
'backtester strategies' to list them.`,
}

// Execute runs the root command.
func Execute() error {
	// Optional .env for BACKTESTER_* overrides; absence is fine.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

// newLogger builds the process logger at the given level.
func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

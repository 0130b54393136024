// Package config loads backtester run configuration from YAML or JSON
// files, with environment-variable overrides (BACKTESTER_* via
// envconfig) layered on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"backtester/backtest"
)

// Config is the complete run configuration.
type Config struct {
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// BacktestConfig sets the simulation parameters.
type BacktestConfig struct {
	InitialCapital float64  `json:"initial_capital" yaml:"initial_capital" envconfig:"INITIAL_CAPITAL"`
	Commission     float64  `json:"commission" yaml:"commission" envconfig:"COMMISSION"`
	RiskFreeRate   float64  `json:"risk_free_rate" yaml:"risk_free_rate" envconfig:"RISK_FREE_RATE"`
	Start          string   `json:"start" yaml:"start" envconfig:"START"`
	End            string   `json:"end" yaml:"end" envconfig:"END"`
	Symbols        []string `json:"symbols" yaml:"symbols" envconfig:"SYMBOLS"`
}

// StrategyConfig selects a strategy and its parameters.
type StrategyConfig struct {
	ID     string             `json:"id" yaml:"id" envconfig:"STRATEGY"`
	Params map[string]float64 `json:"params" yaml:"params"`
}

// DataConfig points at the bar data source.
type DataConfig struct {
	Dir string `json:"dir" yaml:"dir" envconfig:"DATA_DIR"`
}

// JournalConfig controls run artifact persistence.
// Type is "", "csv" or "sqlite"; empty disables journaling.
type JournalConfig struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty" envconfig:"JOURNAL_TYPE"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty" envconfig:"JOURNAL_DB"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
}

// LogConfig sets logging behavior.
type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty" envconfig:"LOG_LEVEL"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCapital: 100_000,
			Commission:     backtest.DefaultCommission,
			RiskFreeRate:   backtest.DefaultRiskFreeRate,
		},
		Strategy: StrategyConfig{
			ID: "ma-cross",
		},
		Data: DataConfig{
			Dir: "./data",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path (YAML first, JSON fallback) over
// the defaults, then applies BACKTESTER_* environment overrides and
// validates. An empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if jerr := json.Unmarshal(data, cfg); jerr != nil {
				return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
			}
		}
	}

	if err := envconfig.Process("BACKTESTER", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration. Dates and symbols may be empty here
// (they are usually supplied per-run on the command line); when present
// they must be well-formed.
func (c *Config) Validate() error {
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive")
	}
	if c.Backtest.Commission < 0 || c.Backtest.Commission >= 1 {
		return fmt.Errorf("backtest.commission must be in [0, 1)")
	}
	if c.Strategy.ID == "" {
		return fmt.Errorf("strategy.id is required")
	}

	start, err := c.parseDate(c.Backtest.Start)
	if err != nil {
		return fmt.Errorf("backtest.start: %w", err)
	}
	end, err := c.parseDate(c.Backtest.End)
	if err != nil {
		return fmt.Errorf("backtest.end: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return fmt.Errorf("backtest.start must be before backtest.end")
	}

	switch c.Journal.Type {
	case "", "csv", "sqlite":
	default:
		return fmt.Errorf("journal.type must be empty, 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && (c.Journal.TradesFile == "" || c.Journal.EquityFile == "") {
		return fmt.Errorf("journal trades_file and equity_file required for csv type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for sqlite type")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}

// Dates returns the parsed start/end dates; zero values when unset.
func (c *Config) Dates() (start, end time.Time, err error) {
	start, err = c.parseDate(c.Backtest.Start)
	if err != nil {
		return
	}
	end, err = c.parseDate(c.Backtest.End)
	return
}

func (c *Config) parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

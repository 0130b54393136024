package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100_000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 0.001, cfg.Backtest.Commission)
	assert.Equal(t, 0.06, cfg.Backtest.RiskFreeRate)
	assert.Equal(t, "ma-cross", cfg.Strategy.ID)
	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Journal.Type)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
backtest:
  initial_capital: 50000
  commission: 0.002
  start: "2023-01-02"
  end: "2024-01-02"
  symbols: [AAPL, MSFT]
strategy:
  id: rsi
  params:
    rsi_period: 7
data:
  dir: /srv/bars
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50_000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 0.002, cfg.Backtest.Commission)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Backtest.Symbols)
	assert.Equal(t, "rsi", cfg.Strategy.ID)
	assert.Equal(t, 7.0, cfg.Strategy.Params["rsi_period"])
	assert.Equal(t, "/srv/bars", cfg.Data.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Unset fields keep their defaults.
	assert.Equal(t, 0.06, cfg.Backtest.RiskFreeRate)

	start, end, err := cfg.Dates()
	require.NoError(t, err)
	assert.Equal(t, "2023-01-02", start.Format("2006-01-02"))
	assert.Equal(t, "2024-01-02", end.Format("2006-01-02"))
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"strategy": {"id": "noop"}, "backtest": {"initial_capital": 1234}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "noop", cfg.Strategy.ID)
	assert.Equal(t, 1234.0, cfg.Backtest.InitialCapital)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BACKTESTER_STRATEGY", "rsi")
	t.Setenv("BACKTESTER_INITIAL_CAPITAL", "25000")
	t.Setenv("BACKTESTER_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "rsi", cfg.Strategy.ID)
	assert.Equal(t, 25_000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Backtest.InitialCapital = 0 }},
		{"commission out of range", func(c *Config) { c.Backtest.Commission = 1 }},
		{"missing strategy", func(c *Config) { c.Strategy.ID = "" }},
		{"bad date", func(c *Config) { c.Backtest.Start = "Jan 2 2024" }},
		{"start after end", func(c *Config) {
			c.Backtest.Start = "2024-06-01"
			c.Backtest.End = "2024-01-01"
		}},
		{"bad journal type", func(c *Config) { c.Journal.Type = "postgres" }},
		{"csv journal without files", func(c *Config) { c.Journal.Type = "csv" }},
		{"sqlite journal without path", func(c *Config) { c.Journal.Type = "sqlite" }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})
}

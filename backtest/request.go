package backtest

import (
	"strings"
	"time"

	"backtester/strategies"
)

// Defaults applied by callers (config/CLI) when the user leaves the
// knobs unset. The engine itself uses Request values verbatim, so a
// zero commission run is expressible.
const (
	DefaultCommission   = 0.001 // 0.1% of notional per fill
	DefaultRiskFreeRate = 0.06  // annual
)

// Request describes one backtest run. Runs are stateless per invocation:
// nothing is shared between requests.
type Request struct {
	StrategyID string
	Params     strategies.Values

	Symbols []string
	Start   time.Time
	End     time.Time

	InitialCapital float64
	Commission     float64
	RiskFreeRate   float64
}

// Validate rejects malformed requests before any data is fetched.
// Strategy ID and parameter validation happens against reg.
func (r *Request) Validate(reg *strategies.Registry) error {
	if r.InitialCapital <= 0 {
		return &ValidationError{Field: "initialCapital", Reason: "must be positive"}
	}
	if len(r.Symbols) == 0 {
		return &ValidationError{Field: "symbols", Reason: "must not be empty"}
	}
	for _, s := range r.Symbols {
		if strings.TrimSpace(s) == "" {
			return &ValidationError{Field: "symbols", Reason: "blank symbol"}
		}
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return &ValidationError{Field: "dateRange", Reason: "start and end are required"}
	}
	if !r.Start.Before(r.End) {
		return &ValidationError{Field: "dateRange", Reason: "start must be before end"}
	}
	if r.Commission < 0 || r.Commission >= 1 {
		return &ValidationError{Field: "commission", Reason: "must be in [0, 1)"}
	}

	// Build a throwaway instance so unknown IDs, unknown parameters and
	// out-of-bounds values are all rejected up front.
	if _, err := reg.New(r.StrategyID, r.Params); err != nil {
		return &ValidationError{Field: "strategy", Reason: err.Error()}
	}
	return nil
}

package strategies

import "backtester/market"

// Noop never trades. Useful as a baseline: a run with it must end at
// exactly the initial capital with zero trades.
type Noop struct{}

// NoopDefinition declares the noop strategy.
func NoopDefinition() Definition {
	return Definition{
		ID:          "noop",
		Description: "Never trades (baseline)",
		Build: func(Values) (Strategy, error) {
			return Noop{}, nil
		},
	}
}

func (Noop) Name() string { return "noop" }

func (Noop) Warmup() int { return 0 }

func (Noop) Reset() {}

func (Noop) OnBar(market.Bar, bool) Signal { return Hold }

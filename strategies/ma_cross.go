package strategies

import (
	"fmt"

	"backtester/indicators"
	"backtester/market"
)

// MACross trades a fast/slow simple-moving-average crossover:
// buy when the fast SMA crosses above the slow SMA, sell to close when it
// crosses back below. Entries only happen on the cross bar itself.
type MACross struct {
	fastPeriod int
	slowPeriod int

	fast  *indicators.SMA
	slow  *indicators.SMA
	cross *indicators.Crossover
}

// MACrossDefinition declares the ma-cross strategy and its schema.
func MACrossDefinition() Definition {
	return Definition{
		ID:          "ma-cross",
		Description: "Buy when the fast SMA crosses above the slow SMA, sell on the reverse cross",
		Params: []Param{
			{Name: "fast_period", Default: 10, Min: 1, Max: 500},
			{Name: "slow_period", Default: 30, Min: 2, Max: 1000},
		},
		Build: func(v Values) (Strategy, error) {
			return NewMACross(int(v["fast_period"]), int(v["slow_period"]))
		},
	}
}

func NewMACross(fastPeriod, slowPeriod int) (*MACross, error) {
	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("fast_period %d must be below slow_period %d", fastPeriod, slowPeriod)
	}
	return &MACross{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
		fast:       indicators.NewSMA(fastPeriod),
		slow:       indicators.NewSMA(slowPeriod),
		cross:      indicators.NewCrossover(),
	}, nil
}

func (s *MACross) Name() string {
	return "ma-cross"
}

// Warmup is the slow period plus one bar for the cross comparison.
func (s *MACross) Warmup() int {
	return s.slowPeriod + 1
}

func (s *MACross) Reset() {
	s.fast.Reset()
	s.slow.Reset()
	s.cross.Reset()
}

func (s *MACross) OnBar(b market.Bar, inPosition bool) Signal {
	s.fast.Update(b)
	s.slow.Update(b)
	if !s.fast.Ready() || !s.slow.Ready() {
		return Hold
	}

	s.cross.Update(s.fast.Value(), s.slow.Value())
	if !s.cross.Ready() {
		return Hold
	}

	switch sig := s.cross.Value(); {
	case !inPosition && sig > 0:
		return Buy
	case inPosition && sig < 0:
		return Sell
	default:
		return Hold
	}
}

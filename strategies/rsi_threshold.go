package strategies

import (
	"fmt"

	"backtester/indicators"
	"backtester/market"
)

// RSIThreshold buys when RSI drops below the lower (oversold) threshold
// and sells to close when it rises above the upper (overbought) one.
type RSIThreshold struct {
	period int
	lower  float64
	upper  float64

	rsi *indicators.RSI
}

// RSIDefinition declares the rsi strategy and its schema.
func RSIDefinition() Definition {
	return Definition{
		ID:          "rsi",
		Description: "Buy oversold (RSI below lower), sell overbought (RSI above upper)",
		Params: []Param{
			{Name: "rsi_period", Default: 14, Min: 2, Max: 500},
			{Name: "rsi_lower", Default: 30, Min: 0, Max: 100},
			{Name: "rsi_upper", Default: 70, Min: 0, Max: 100},
		},
		Build: func(v Values) (Strategy, error) {
			return NewRSIThreshold(int(v["rsi_period"]), v["rsi_lower"], v["rsi_upper"])
		},
	}
}

func NewRSIThreshold(period int, lower, upper float64) (*RSIThreshold, error) {
	if lower >= upper {
		return nil, fmt.Errorf("rsi_lower %v must be below rsi_upper %v", lower, upper)
	}
	return &RSIThreshold{
		period: period,
		lower:  lower,
		upper:  upper,
		rsi:    indicators.NewRSI(period),
	}, nil
}

func (s *RSIThreshold) Name() string {
	return "rsi"
}

func (s *RSIThreshold) Warmup() int {
	return s.rsi.Warmup()
}

func (s *RSIThreshold) Reset() {
	s.rsi.Reset()
}

func (s *RSIThreshold) OnBar(b market.Bar, inPosition bool) Signal {
	s.rsi.Update(b)
	if !s.rsi.Ready() {
		return Hold
	}

	switch v := s.rsi.Value(); {
	case !inPosition && v < s.lower:
		return Buy
	case inPosition && v > s.upper:
		return Sell
	default:
		return Hold
	}
}

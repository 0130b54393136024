package indicators

import (
	"fmt"

	"backtester/market"
)

// RSI is a streaming Relative Strength Index using Wilder's smoothing.
//
// The first value is defined after period+1 bars (period deltas): the
// initial averages are simple means of the gains/losses, after which each
// update applies avg = (avg*(period-1) + delta) / period.
type RSI struct {
	period int
	count  int
	prev   float64

	sumGain float64
	sumLoss float64
	avgGain float64
	avgLoss float64
}

// NewRSI creates an RSI indicator with the given lookback period.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

// Warmup is period+1: the first bar only seeds the previous close.
func (r *RSI) Warmup() int {
	return r.period + 1
}

func (r *RSI) Reset() {
	r.count = 0
	r.prev = 0
	r.sumGain = 0
	r.sumLoss = 0
	r.avgGain = 0
	r.avgLoss = 0
}

func (r *RSI) Update(b market.Bar) {
	r.count++
	if r.count == 1 {
		r.prev = b.Close
		return
	}

	delta := b.Close - r.prev
	r.prev = b.Close

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	p := float64(r.period)
	switch {
	case r.count <= r.period:
		r.sumGain += gain
		r.sumLoss += loss
	case r.count == r.period+1:
		r.sumGain += gain
		r.sumLoss += loss
		r.avgGain = r.sumGain / p
		r.avgLoss = r.sumLoss / p
	default:
		r.avgGain = (r.avgGain*(p-1) + gain) / p
		r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	}
}

func (r *RSI) Ready() bool {
	return r.count >= r.period+1
}

// Value returns RSI in [0,100]. A perfectly flat series reads 50
// (neutral); a series with no losses reads 100.
func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	switch {
	case r.avgGain == 0 && r.avgLoss == 0:
		return 50
	case r.avgLoss == 0:
		return 100
	default:
		rs := r.avgGain / r.avgLoss
		return 100 - 100/(1+rs)
	}
}

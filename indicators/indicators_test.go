package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"backtester/market"
)

func barSeries(closes ...float64) []market.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{
			Time: base.AddDate(0, 0, i),
			Open: c, High: c, Low: c, Close: c,
			Volume: 1000,
		}
	}
	return out
}

func TestSMAStreaming(t *testing.T) {
	bars := barSeries(102, 105, 106, 108, 110)

	t.Run("basic functionality", func(t *testing.T) {
		ma := NewSMA(3)
		assert.Equal(t, "SMA(3)", ma.Name())
		assert.Equal(t, 3, ma.Warmup())
		assert.False(t, ma.Ready())
		assert.Equal(t, 0.0, ma.Value())

		ma.Update(bars[0])
		assert.False(t, ma.Ready())
		ma.Update(bars[1])
		assert.False(t, ma.Ready())

		ma.Update(bars[2])
		assert.True(t, ma.Ready())
		assert.InDelta(t, (102.0+105.0+106.0)/3.0, ma.Value(), 0.001)

		// Window slides: oldest close drops out.
		ma.Update(bars[3])
		assert.InDelta(t, (105.0+106.0+108.0)/3.0, ma.Value(), 0.001)
	})

	t.Run("reset", func(t *testing.T) {
		ma := NewSMA(2)
		ma.Update(bars[0])
		ma.Update(bars[1])
		assert.True(t, ma.Ready())

		ma.Reset()
		assert.False(t, ma.Ready())
		assert.Equal(t, 0.0, ma.Value())
	})
}

func TestRSIStreaming(t *testing.T) {
	t.Run("warmup needs period+1 bars", func(t *testing.T) {
		rsi := NewRSI(3)
		assert.Equal(t, "RSI(3)", rsi.Name())
		assert.Equal(t, 4, rsi.Warmup())

		bars := barSeries(10, 11, 10.5, 11.5)
		for i, b := range bars {
			assert.False(t, rsi.Ready(), "bar %d", i)
			rsi.Update(b)
		}
		assert.True(t, rsi.Ready())
	})

	t.Run("wilder smoothing values", func(t *testing.T) {
		rsi := NewRSI(3)
		for _, b := range barSeries(10, 11, 10.5, 11.5) {
			rsi.Update(b)
		}
		// deltas +1, -0.5, +1: avgGain 2/3, avgLoss 1/6, RS 4.
		assert.InDelta(t, 80.0, rsi.Value(), 0.001)

		// Next delta -0.5: avgGain 4/9, avgLoss 5/18, RS 1.6.
		rsi.Update(barSeries(11)[0])
		assert.InDelta(t, 100-100/2.6, rsi.Value(), 0.001)
	})

	t.Run("flat series is neutral", func(t *testing.T) {
		rsi := NewRSI(3)
		for _, b := range barSeries(50, 50, 50, 50, 50, 50) {
			rsi.Update(b)
		}
		assert.Equal(t, 50.0, rsi.Value())
	})

	t.Run("pure uptrend pegs at 100", func(t *testing.T) {
		rsi := NewRSI(3)
		for _, b := range barSeries(10, 11, 12, 13, 14, 15) {
			rsi.Update(b)
		}
		assert.Equal(t, 100.0, rsi.Value())
	})

	t.Run("reset", func(t *testing.T) {
		rsi := NewRSI(2)
		for _, b := range barSeries(10, 11, 12) {
			rsi.Update(b)
		}
		assert.True(t, rsi.Ready())

		rsi.Reset()
		assert.False(t, rsi.Ready())
		assert.Equal(t, 0.0, rsi.Value())
	})
}

func TestCrossover(t *testing.T) {
	t.Run("needs two comparisons", func(t *testing.T) {
		x := NewCrossover()
		assert.Equal(t, 2, x.Warmup())
		assert.False(t, x.Ready())

		x.Update(1, 2)
		assert.False(t, x.Ready())
		assert.Equal(t, 0, x.Value())

		x.Update(3, 2)
		assert.True(t, x.Ready())
	})

	t.Run("bull cross", func(t *testing.T) {
		x := NewCrossover()
		x.Update(1, 2)
		x.Update(3, 2)
		assert.Equal(t, +1, x.Value())

		// Staying above is not a new cross.
		x.Update(4, 2)
		assert.Equal(t, 0, x.Value())
	})

	t.Run("bear cross", func(t *testing.T) {
		x := NewCrossover()
		x.Update(3, 2)
		x.Update(1, 2)
		assert.Equal(t, -1, x.Value())
	})

	t.Run("touch then cross counts", func(t *testing.T) {
		x := NewCrossover()
		x.Update(1, 2)
		x.Update(2, 2) // equal: no signal, but lastDiff is now 0
		assert.Equal(t, 0, x.Value())
		x.Update(3, 2)
		assert.Equal(t, +1, x.Value())
	})

	t.Run("reset", func(t *testing.T) {
		x := NewCrossover()
		x.Update(1, 2)
		x.Update(3, 2)
		x.Reset()
		assert.False(t, x.Ready())
		assert.Equal(t, 0, x.Value())
	})
}

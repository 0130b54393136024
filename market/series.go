package market

import "fmt"

// Validate checks that a bar series is usable for simulation: timestamps
// strictly increasing, prices positive, and high/low bracketing open/close.
func Validate(bars []Bar) error {
	for i, b := range bars {
		if b.Time.IsZero() {
			return fmt.Errorf("bar %d: zero timestamp", i)
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return fmt.Errorf("bar %d: timestamp %s not after %s",
				i, b.Time.Format("2006-01-02"), bars[i-1].Time.Format("2006-01-02"))
		}
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("bar %d: non-positive price", i)
		}
		if b.Low > b.High {
			return fmt.Errorf("bar %d: low %v above high %v", i, b.Low, b.High)
		}
	}
	return nil
}

// Closes extracts the close series from bars.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

package market

import "fmt"

// Series is an ordered run of candles for a single symbol and timeframe.
// Timestamps must be strictly increasing; Validate checks that once after
// loading so the engine never has to.
type Series []Candle

// Closes extracts the close prices.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high prices.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.High
	}
	return out
}

// Validate checks ordering and candle sanity for the whole series.
func (s Series) Validate() error {
	for i, c := range s {
		if c.Malformed() {
			return fmt.Errorf("candle %d (%s): malformed OHLC %v/%v/%v/%v",
				i, c.Time.Format("2006-01-02"), c.Open, c.High, c.Low, c.Close)
		}
		if i > 0 && !c.Time.After(s[i-1].Time) {
			return fmt.Errorf("candle %d (%s): timestamp not increasing", i, c.Time)
		}
	}
	return nil
}

// Tail returns the last n candles, or the whole series if it is shorter.
func (s Series) Tail(n int) Series {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

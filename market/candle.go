package market

import "time"

// Candle represents OHLCV (Open, High, Low, Close, Volume) candlestick data
// for one bar. Candles are treated as immutable once built.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bearish reports whether the candle closed below its open.
func (c Candle) Bearish() bool { return c.Close < c.Open }

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Malformed reports whether the candle carries prices the simulator cannot
// trust: non-positive values, NaN/Inf, or a high below the low. The open and
// close must sit inside the [low, high] range.
func (c Candle) Malformed() bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if v <= 0 || v != v || v > maxPrice {
			return true
		}
	}
	if c.High < c.Low {
		return true
	}
	if c.Open > c.High || c.Open < c.Low {
		return true
	}
	if c.Close > c.High || c.Close < c.Low {
		return true
	}
	return false
}

// maxPrice guards against Inf sneaking through arithmetic upstream.
const maxPrice = 1e15

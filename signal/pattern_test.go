package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haekwon/reversal/market"
)

func bearishCandle(prev market.Candle) market.Candle {
	// Lower high, red body, no meaningful upper wick.
	open := prev.Close
	return market.Candle{
		Open:  open,
		High:  open,
		Low:   open * 0.95,
		Close: open * 0.97,
	}
}

func bullishCandle(prev market.Candle) market.Candle {
	open := prev.Close
	return market.Candle{
		Open:  open,
		High:  open * 1.02,
		Low:   open * 0.99,
		Close: open * 1.01,
	}
}

func buildAfterPeak(peak market.Candle, n int, bullishAt map[int]bool) []market.Candle {
	out := make([]market.Candle, 0, n)
	prev := peak
	for i := 0; i < n; i++ {
		var c market.Candle
		if bullishAt[i] {
			c = bullishCandle(prev)
		} else {
			c = bearishCandle(prev)
		}
		out = append(out, c)
		prev = c
	}
	return out
}

func TestClassifyAllBearish(t *testing.T) {
	peak := market.Candle{Open: 98, High: 105, Low: 97, Close: 100}
	after := buildAfterPeak(peak, 7, nil)

	assert.Equal(t, PatternAll, Classify(peak, after, 0.2))
}

func TestClassifyAllButOne(t *testing.T) {
	peak := market.Candle{Open: 98, High: 105, Low: 97, Close: 100}
	after := buildAfterPeak(peak, 7, map[int]bool{3: true})

	assert.Equal(t, PatternAllButOne, Classify(peak, after, 0.2))
}

func TestClassifyNoneBearish(t *testing.T) {
	peak := market.Candle{Open: 98, High: 105, Low: 97, Close: 100}
	after := buildAfterPeak(peak, 7, map[int]bool{
		0: true, 1: true, 2: true, 3: true, 4: true, 5: true, 6: true,
	})

	assert.Equal(t, PatternNone, Classify(peak, after, 0.2))
}

func TestClassifyTwoBullishIsNone(t *testing.T) {
	peak := market.Candle{Open: 98, High: 105, Low: 97, Close: 100}
	after := buildAfterPeak(peak, 7, map[int]bool{1: true, 5: true})

	assert.Equal(t, PatternNone, Classify(peak, after, 0.2))
}

func TestClassifyTruncatesToSevenBars(t *testing.T) {
	peak := market.Candle{Open: 98, High: 105, Low: 97, Close: 100}
	// Bullish bar at index 8 must be ignored.
	after := buildAfterPeak(peak, 10, map[int]bool{8: true})

	assert.Equal(t, PatternAll, Classify(peak, after, 0.2))
}

func TestClassifyEmptyAfterPeak(t *testing.T) {
	peak := market.Candle{Open: 98, High: 105, Low: 97, Close: 100}
	assert.Equal(t, PatternNone, Classify(peak, nil, 0.2))
}

func TestClassifyUpperWickCountsBullish(t *testing.T) {
	peak := market.Candle{Open: 98, High: 105, Low: 97, Close: 100}
	// Red body, high below the peak high, but the wick stretches more than
	// the buffer fraction above the open: bullish probe.
	wick := market.Candle{Open: 80, High: 100, Low: 78, Close: 79}
	after := []market.Candle{wick}

	// One examined bar, zero bearish => n == k-1.
	assert.Equal(t, PatternAllButOne, Classify(peak, after, 0.2))
}

func TestClassifyHigherHighCountsBullish(t *testing.T) {
	peak := market.Candle{Open: 98, High: 105, Low: 97, Close: 100}
	hh := market.Candle{Open: 100, High: 106, Low: 95, Close: 96}

	assert.Equal(t, PatternAllButOne, Classify(peak, []market.Candle{hh}, 0.2))
}

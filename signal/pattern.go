package signal

import "github.com/haekwon/reversal/market"

// Pattern is the aggregate label over the candles following a peak.
type Pattern string

const (
	// PatternAll: every examined bar is bearish. The reversal is clean, so
	// the fast EMA is used for the entry level.
	PatternAll Pattern = "all"

	// PatternAllButOne: exactly one examined bar is bullish. Tolerated as
	// noise, but the slow EMA is used instead.
	PatternAllButOne Pattern = "all_but_one"

	// PatternNone: anything else. No signal.
	PatternNone Pattern = "none"
)

// maxPatternBars bounds how many post-peak candles the classifier examines.
const maxPatternBars = 7

// Classify labels up to maxPatternBars candles after the peak and aggregates
// the per-bar labels into a Pattern.
//
// A bar is bullish when ANY of these holds, each compared against the
// previous bar (the peak bar for the first one):
//   - its high exceeds the previous high,
//   - it closed above its open, or
//   - its high exceeds its open by more than the buffer fraction (a long
//     upper wick shows buyers are still probing).
//
// Otherwise it is bearish. With k bars examined and n bearish: n==k is
// PatternAll, n==k-1 is PatternAllButOne, anything else PatternNone. Zero
// bars after the peak means there is nothing to confirm: PatternNone.
func Classify(peak market.Candle, after []market.Candle, buffer float64) Pattern {
	if len(after) > maxPatternBars {
		after = after[:maxPatternBars]
	}
	if len(after) == 0 {
		return PatternNone
	}

	bearish := 0
	prev := peak
	for _, c := range after {
		if !bullishBar(c, prev, buffer) {
			bearish++
		}
		prev = c
	}

	switch k := len(after); {
	case bearish == k:
		return PatternAll
	case bearish == k-1:
		return PatternAllButOne
	default:
		return PatternNone
	}
}

func bullishBar(c, prev market.Candle, buffer float64) bool {
	if c.High > prev.High {
		return true
	}
	if c.Close > c.Open {
		return true
	}
	return c.High > c.Open*(1+buffer)
}

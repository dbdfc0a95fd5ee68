package signal

import "github.com/haekwon/reversal/market"

// Collect evaluates every strategy independently over the same window and
// returns all resulting decisions. Strategies do not see each other's output;
// an ensemble is just a slice of decisions to aggregate afterwards.
func Collect(strategies []Strategy, candles market.Series, symbol string) []Decision {
	out := make([]Decision, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, s.Decide(candles, symbol))
	}
	return out
}

// Buys filters a decision list down to actionable BUY signals.
func Buys(decisions []Decision) []Decision {
	var out []Decision
	for _, d := range decisions {
		if d.Action == Buy {
			out = append(out, d)
		}
	}
	return out
}

// Unanimous reports whether every decision in the list is a BUY. An empty
// list is not unanimous.
func Unanimous(decisions []Decision) bool {
	if len(decisions) == 0 {
		return false
	}
	for _, d := range decisions {
		if d.Action != Buy {
			return false
		}
	}
	return true
}

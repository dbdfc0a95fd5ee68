package indicators

// RSI computes the Relative Strength Index over the last period bar-to-bar
// changes of closes. It needs at least period+1 closes; ok is false when the
// input is too short.
//
// By convention a window with no losses returns 100.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 {
		panic("indicators: RSI period must be > 0")
	}
	if len(closes) < period+1 {
		return 0, false
	}

	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}

	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

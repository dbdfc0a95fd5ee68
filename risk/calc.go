package risk

import "math"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// RR is the reward-to-risk multiple of a bracket.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

func riskPct(plannedRisk, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return plannedRisk / equity
}

type SizeInputs struct {
	Equity     float64
	RiskPct    float64 // e.g. 0.01
	EntryPrice float64
	StopPrice  float64
}

type SizeResult struct {
	Size       float64
	StopDist   float64
	RiskAmount float64
}

// Size allocates the position so a stop-out loses RiskPct of equity. The
// size is floored to whole units; a zero stop distance sizes to zero.
func Size(in SizeInputs) SizeResult {
	dist := math.Abs(in.EntryPrice - in.StopPrice)
	riskAmt := in.Equity * in.RiskPct
	if dist == 0 {
		return SizeResult{StopDist: dist, RiskAmount: riskAmt}
	}
	return SizeResult{
		Size:       math.Floor(riskAmt / dist),
		StopDist:   dist,
		RiskAmount: riskAmt,
	}
}

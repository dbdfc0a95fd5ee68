package backtest

import (
	"time"

	"github.com/haekwon/reversal/portfolio"
)

// Result is the summary of one completed run.
type Result struct {
	RunID  string
	Symbol string

	Start time.Time
	End   time.Time

	StartCash float64
	EndEquity float64

	Signals  int // buy decisions emitted
	Rejected int // buy decisions the risk gate refused

	Trades int
	Wins   int
	Losses int

	NetPL        float64
	ReturnPct    float64
	WinRate      float64
	ProfitFactor float64
	MaxDDPct     float64
}

// computeStats derives the headline numbers from the closed trades and the
// equity curve.
func computeStats(r *Result, trades []portfolio.TradeLogEntry, curve []portfolio.EquityPoint) {
	r.Trades = len(trades)

	var grossProfit, grossLoss float64
	for _, t := range trades {
		if t.PnL > 0 {
			r.Wins++
			grossProfit += t.PnL
		} else {
			r.Losses++
			grossLoss += -t.PnL
		}
	}

	r.NetPL = r.EndEquity - r.StartCash
	if r.StartCash > 0 {
		r.ReturnPct = r.NetPL / r.StartCash
	}
	if r.Trades > 0 {
		r.WinRate = float64(r.Wins) / float64(r.Trades)
	}
	if grossLoss > 0 {
		r.ProfitFactor = grossProfit / grossLoss
	}
	r.MaxDDPct = maxDrawdown(curve)
}

// maxDrawdown is the largest peak-to-trough equity decline, as a fraction of
// the peak.
func maxDrawdown(curve []portfolio.EquityPoint) float64 {
	var peak, maxDD float64
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

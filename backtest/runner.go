// Package backtest drives a strategy bar by bar over historical candles and
// books the resulting trades through a portfolio manager.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/haekwon/reversal/internal/id"
	"github.com/haekwon/reversal/journal"
	"github.com/haekwon/reversal/market"
	"github.com/haekwon/reversal/portfolio"
	"github.com/haekwon/reversal/risk"
	"github.com/haekwon/reversal/signal"
	"github.com/haekwon/reversal/sim"
)

// Runner wires a strategy, a risk gate, and a portfolio into one run.
type Runner struct {
	Strategy signal.Strategy
	Manager  *portfolio.Manager
	Policy   risk.Policy
	RiskPct  float64 // per-trade sizing fraction of equity

	// Journal is optional; nil skips persistence.
	Journal journal.Journal
	// RunID tags journal records; one is generated when empty.
	RunID string

	// Hook observes every simulated fill. Diagnostics only.
	Hook sim.Hook
}

// Run scans the candles with a growing window, realizes each admitted signal
// over the remaining bars, and flattens the book at the last close.
//
// Candle validation failures and realization faults abort the run; a strategy
// that never fires just yields a flat result.
func (r *Runner) Run(ctx context.Context, symbol string, candles market.Series) (Result, error) {
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if r.Manager == nil {
		return Result{}, fmt.Errorf("backtest: Manager is required")
	}
	if err := candles.Validate(); err != nil {
		return Result{}, fmt.Errorf("backtest: %w", err)
	}
	if len(candles) == 0 {
		return Result{}, fmt.Errorf("backtest: no candles")
	}

	runID := r.RunID
	if runID == "" {
		runID = id.New()
	}

	res := Result{
		RunID:     runID,
		Symbol:    symbol,
		Start:     candles[0].Time,
		End:       candles[len(candles)-1].Time,
		StartCash: r.Manager.Cash(),
	}

	if r.Journal != nil {
		r.Manager.SetCloseCallback(func(e portfolio.TradeLogEntry) {
			// Journal failures must not disturb the accounting mid-run.
			_ = r.Journal.RecordTrade(journal.TradeRecord{
				TradeID:    e.ID,
				RunID:      runID,
				Symbol:     e.Symbol,
				Direction:  e.Direction.String(),
				Size:       e.Size,
				EntryPrice: e.EntryPrice,
				ExitPrice:  e.ExitPrice,
				EntryTime:  e.EntryTime,
				ExitTime:   e.ExitTime,
				ExitType:   string(e.ExitType),
				Result:     string(e.Result),
				ReturnPct:  e.ReturnPct,
				PnL:        e.PnL,
			})
		})
		defer r.Manager.SetCloseCallback(nil)
	}

	// A realized trade consumes forward bars, so scanning pauses until the
	// book is past its exit.
	var busyUntil time.Time

	for i := r.Strategy.RequiredLookback() - 1; i < len(candles); i++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		bar := candles[i]
		equity := r.Manager.MarkToMarket(map[string]float64{symbol: bar.Close}, bar.Time)
		if r.Journal != nil {
			_ = r.Journal.RecordEquity(journal.EquitySnapshot{
				RunID:  runID,
				Time:   bar.Time,
				Cash:   r.Manager.Cash(),
				Equity: equity,
			})
		}

		if !bar.Time.After(busyUntil) && !busyUntil.IsZero() {
			continue
		}
		if r.Manager.OpenLotCount() > 0 {
			continue
		}

		d := r.Strategy.Decide(candles[:i+1], symbol)
		if d.Action != signal.Buy {
			continue
		}
		res.Signals++

		size := r.sizeFor(equity, d)
		if size <= 0 {
			res.Rejected++
			continue
		}

		gate := risk.Evaluate(r.Policy, risk.Intent{
			Symbol:      symbol,
			Size:        size,
			Entry:       d.EntryPrice,
			Stop:        d.SLPrice,
			TakeProfit:  d.TPPrice,
			Strength:    d.Strength,
			VolumeRatio: d.VolumeRatio,
		}, risk.AccountSnapshot{
			Equity:   equity,
			OpenLots: r.Manager.OpenLotCount(),
		})
		if !gate.Allowed {
			res.Rejected++
			continue
		}

		proposal := sim.NewProposal(sim.TradeMeta{
			Symbol:     symbol,
			EntryTime:  bar.Time,
			EntryPrice: d.EntryPrice,
			TPPrice:    d.TPPrice,
			SLPrice:    d.SLPrice,
			Size:       size,
			Direction:  d.Direction,
		}, candles[i+1:])

		ok, err := r.Manager.TryExecute(proposal, r.Hook)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			res.Rejected++
			continue
		}

		if n := len(r.Manager.TradeLog()); n > 0 {
			last := r.Manager.TradeLog()[n-1]
			if last.ExitTime.After(busyUntil) {
				busyUntil = last.ExitTime
			}
		}
	}

	last := candles[len(candles)-1]
	r.Manager.CloseAll(map[string]float64{symbol: last.Close}, last.Time)

	res.EndEquity = r.Manager.MarkToMarket(map[string]float64{symbol: last.Close}, last.Time)
	computeStats(&res, r.Manager.TradeLog(), r.Manager.EquityCurve())
	return res, nil
}

// sizeFor allocates the position off current equity. With no sizing fraction
// configured every trade takes one unit, which keeps toy runs predictable.
func (r *Runner) sizeFor(equity float64, d signal.Decision) float64 {
	if r.RiskPct <= 0 {
		return 1
	}
	return risk.Size(risk.SizeInputs{
		Equity:     equity,
		RiskPct:    r.RiskPct,
		EntryPrice: d.EntryPrice,
		StopPrice:  d.SLPrice,
	}).Size
}

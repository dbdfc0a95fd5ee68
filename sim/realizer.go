// Package sim turns an immutable trade proposal into simulated fills by
// walking its forward candles bar by bar. The realizer owns the execution
// frictions (slippage, fee, delay) and the TP/SL tie-break policy; it holds
// no portfolio state.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/haekwon/reversal/market"
)

// CrossingPolicy resolves a bar whose range touches both the stop and the
// take-profit level.
type CrossingPolicy string

const (
	// CrossingPreferSL assumes the stop traded first. Conservative default.
	CrossingPreferSL CrossingPolicy = "prefer_sl"
	// CrossingPreferTP assumes the take-profit traded first.
	CrossingPreferTP CrossingPolicy = "prefer_tp"
	// CrossingRandom draws uniformly per crossing bar from the injected
	// random source.
	CrossingRandom CrossingPolicy = "random"
)

// ParseCrossingPolicy converts a config string into a CrossingPolicy.
func ParseCrossingPolicy(s string) (CrossingPolicy, error) {
	switch CrossingPolicy(s) {
	case CrossingPreferSL, CrossingPreferTP, CrossingRandom:
		return CrossingPolicy(s), nil
	case "":
		return CrossingPreferSL, nil
	}
	return "", fmt.Errorf("unknown crossing policy %q (supported: prefer_sl, prefer_tp, random)", s)
}

// dcaRatio fixes how far under (long) or over (short) the entry the
// averaging-down trigger sits. AddBuyPct sizes that fill, it does not move
// the trigger.
const dcaRatio = 0.05

// Hook observes each fill as it is decided. Diagnostics only: a hook must
// never influence control flow and its errors are not consulted.
type Hook func(Fill)

// RealizerConfig bundles the execution frictions and policies.
type RealizerConfig struct {
	AddBuyPct float64        `json:"add_buy_pct" yaml:"add_buy_pct"` // 0 disables averaging down
	Fee       float64        `json:"fee" yaml:"fee"`
	Slippage  float64        `json:"slippage" yaml:"slippage"`
	DelayBars int            `json:"delay_bars" yaml:"delay_bars"`
	Crossing  CrossingPolicy `json:"crossing_policy" yaml:"crossing_policy"`
}

// Realizer simulates fills for proposals. One realizer may serve many
// proposals within a run; concurrent runs need their own (the random source
// is not shared safely).
type Realizer struct {
	cfg RealizerConfig
	rng *rand.Rand
}

// NewRealizer validates the configuration up front. rng is required only for
// CrossingRandom; passing a seeded source keeps runs reproducible.
func NewRealizer(cfg RealizerConfig, rng *rand.Rand) (*Realizer, error) {
	if cfg.AddBuyPct < 0 {
		return nil, fmt.Errorf("realizer: add_buy_pct must be >= 0, got %v", cfg.AddBuyPct)
	}
	if cfg.Fee < 0 || cfg.Fee >= 1 {
		return nil, fmt.Errorf("realizer: fee must be in [0,1), got %v", cfg.Fee)
	}
	if cfg.Slippage < 0 || cfg.Slippage >= 1 {
		return nil, fmt.Errorf("realizer: slippage must be in [0,1), got %v", cfg.Slippage)
	}
	if cfg.DelayBars < 0 {
		return nil, fmt.Errorf("realizer: delay_bars must be >= 0, got %d", cfg.DelayBars)
	}
	switch cfg.Crossing {
	case "":
		cfg.Crossing = CrossingPreferSL
	case CrossingPreferSL, CrossingPreferTP:
	case CrossingRandom:
		if rng == nil {
			return nil, fmt.Errorf("realizer: crossing_policy=random requires a seeded random source")
		}
	default:
		return nil, fmt.Errorf("realizer: unknown crossing policy %q", cfg.Crossing)
	}
	return &Realizer{cfg: cfg, rng: rng}, nil
}

// Realize walks the proposal's forward candles and produces fills.
//
// The entry fills at the bar DelayBars after the signal; if the data ends
// before that bar the realization is empty. At most one averaging-down fill
// triggers at the fixed dcaRatio offset from the planned entry. Exits fill at
// the bracket level itself. An empty or non-exited realization is a normal
// outcome; only inconsistent data is an error.
func (r *Realizer) Realize(p *TradeProposal, hook Hook) (Realization, error) {
	if p.realized {
		return Realization{}, ErrAlreadyRealized
	}
	p.realized = true

	meta := p.Meta
	if meta.Size <= 0 || meta.EntryPrice <= 0 {
		return Realization{}, &FaultError{Bar: -1, Reason: fmt.Sprintf("bad proposal: size=%v entry=%v", meta.Size, meta.EntryPrice)}
	}
	long := meta.Direction != market.Short

	if len(p.Forward) <= r.cfg.DelayBars {
		return Realization{}, nil
	}

	var out Realization
	emit := func(f Fill) {
		out.Fills = append(out.Fills, f)
		if hook != nil {
			hook(f)
		}
	}

	entryBar := p.Forward[r.cfg.DelayBars]
	if entryBar.Malformed() {
		return Realization{}, &FaultError{Bar: r.cfg.DelayBars, Reason: "malformed entry bar"}
	}

	entryPx := r.entryFillPrice(entryBar.Open, meta.EntryPrice, long)
	emit(Fill{Kind: FillEntry, Time: entryBar.Time, Price: entryPx, Size: meta.Size})

	type lot struct {
		price float64
		size  float64
	}
	lots := []lot{{price: entryPx, size: meta.Size}}

	dcaTrigger := meta.EntryPrice * (1 - dcaRatio)
	if !long {
		dcaTrigger = meta.EntryPrice * (1 + dcaRatio)
	}
	dcaArmed := r.cfg.AddBuyPct > 0

	for i := r.cfg.DelayBars; i < len(p.Forward); i++ {
		bar := p.Forward[i]
		if bar.Malformed() {
			return Realization{}, &FaultError{Bar: i, Reason: "malformed bar"}
		}

		if dcaArmed {
			crossed := bar.Low <= dcaTrigger
			if !long {
				crossed = bar.High >= dcaTrigger
			}
			if crossed {
				px := r.entryFillPrice(dcaTrigger, dcaTrigger, long)
				size := meta.Size * r.cfg.AddBuyPct
				emit(Fill{Kind: FillAdd, Time: bar.Time, Price: px, Size: size})
				lots = append(lots, lot{price: px, size: size})
				dcaArmed = false
			}
		}

		slHit := bar.Low <= meta.SLPrice
		tpHit := bar.High >= meta.TPPrice
		if !long {
			slHit = bar.High >= meta.SLPrice
			tpHit = bar.Low <= meta.TPPrice
		}
		if !slHit && !tpHit {
			continue
		}

		exitType := ExitSL
		if tpHit && !slHit {
			exitType = ExitTP
		}
		if tpHit && slHit {
			exitType = r.resolveCrossing()
		}

		exitPx := meta.SLPrice
		if exitType == ExitTP {
			exitPx = meta.TPPrice
		}

		for _, l := range lots {
			ret := (exitPx - l.price) / l.price
			if !long {
				ret = (l.price - exitPx) / l.price
			}
			res := Loss
			if ret > 0 {
				res = Win
			}
			emit(Fill{
				Kind:       FillExit,
				Time:       bar.Time,
				Price:      exitPx,
				Size:       l.size,
				ExitType:   exitType,
				EntryPrice: l.price,
				ReturnPct:  ret,
				Result:     res,
			})
		}

		out.Exited = true
		out.ExitType = exitType
		out.ExitPrice = exitPx
		out.ExitTime = bar.Time
		return out, nil
	}

	// Data ran out with the position still open.
	return out, nil
}

// entryFillPrice applies the better-of-open-and-level convention plus
// slippage and fee. Longs pay up, shorts receive less.
func (r *Realizer) entryFillPrice(open, level float64, long bool) float64 {
	if long {
		px := open
		if level < px {
			px = level
		}
		return px * (1 + r.cfg.Slippage) * (1 + r.cfg.Fee)
	}
	px := open
	if level > px {
		px = level
	}
	return px * (1 - r.cfg.Slippage) * (1 - r.cfg.Fee)
}

func (r *Realizer) resolveCrossing() ExitType {
	switch r.cfg.Crossing {
	case CrossingPreferTP:
		return ExitTP
	case CrossingRandom:
		if r.rng.Intn(2) == 0 {
			return ExitSL
		}
		return ExitTP
	default:
		return ExitSL
	}
}

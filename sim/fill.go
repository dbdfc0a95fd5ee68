package sim

import "time"

// FillKind labels what a fill did.
type FillKind int

const (
	FillEntry FillKind = iota + 1
	FillAdd            // the averaging-down entry
	FillExit
)

func (k FillKind) String() string {
	switch k {
	case FillEntry:
		return "ENTRY"
	case FillAdd:
		return "ADD"
	case FillExit:
		return "EXIT"
	}
	return "UNKNOWN"
}

// ExitType records which level ended a lot.
type ExitType string

const (
	ExitTP    ExitType = "TP"
	ExitSL    ExitType = "SL"
	ExitClose ExitType = "CLOSE"
)

// Result is the win/loss classification of a closed lot. A return of exactly
// zero classifies as LOSS.
type Result string

const (
	Win  Result = "WIN"
	Loss Result = "LOSS"
)

// Fill is one simulated execution. Entry and add fills open a lot; exit
// fills close the lot opened at EntryPrice and carry the realized outcome.
type Fill struct {
	Kind  FillKind
	Time  time.Time
	Price float64
	Size  float64

	// Exit fills only.
	ExitType   ExitType
	EntryPrice float64
	ReturnPct  float64
	Result     Result
}

// Realization is everything Realize produced for one proposal. When Exited is
// false the candle data ran out before either bracket level triggered; the
// caller decides whether the open fills become standing lots or are
// discarded.
type Realization struct {
	Fills []Fill

	Exited    bool
	ExitType  ExitType
	ExitPrice float64
	ExitTime  time.Time
}

// Entries returns the entry and averaging-down fills.
func (r Realization) Entries() []Fill {
	var out []Fill
	for _, f := range r.Fills {
		if f.Kind != FillExit {
			out = append(out, f)
		}
	}
	return out
}

// Exits returns the exit fills, one per closed lot.
func (r Realization) Exits() []Fill {
	var out []Fill
	for _, f := range r.Fills {
		if f.Kind == FillExit {
			out = append(out, f)
		}
	}
	return out
}

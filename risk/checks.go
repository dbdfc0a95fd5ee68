package risk

import (
	"fmt"

	"github.com/haekwon/reversal/signal"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	PlannedRisk    float64
	PlannedRiskPct float64
	PlannedRR      float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

func strengthRank(s signal.Strength) int {
	switch s {
	case signal.StrengthStrong:
		return 2
	case signal.StrengthModerate:
		return 1
	}
	return 0
}

// Evaluate grades one intent against the policy. Every applicable rule is
// checked so the decision carries the full violation list, not just the
// first failure.
func Evaluate(p Policy, intent Intent, acct AccountSnapshot) Decision {
	d := Decision{Allowed: true}

	// Basic sanity
	if intent.Entry <= 0 || intent.Stop <= 0 {
		d.add("NO_STOP_OR_ENTRY", "entry and stop must be set")
		return d
	}
	if intent.Size <= 0 {
		d.add("NO_SIZE", "size must be positive")
		return d
	}

	d.PlannedRisk = intent.Size * abs(intent.Entry-intent.Stop)
	d.PlannedRiskPct = riskPct(d.PlannedRisk, acct.Equity)
	d.PlannedRR = RR(intent.Entry, intent.Stop, intent.TakeProfit)

	if p.MaxRiskPct > 0 && d.PlannedRiskPct > p.MaxRiskPct {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("planned risk %.2f%% exceeds max %.2f%%",
				100*d.PlannedRiskPct, 100*p.MaxRiskPct))
	}
	if d.PlannedRR < p.MinRR {
		d.add("RR_TOO_LOW",
			fmt.Sprintf("RR %.2f below minimum %.2f", d.PlannedRR, p.MinRR))
	}
	if strengthRank(intent.Strength) < strengthRank(p.MinStrength) {
		d.add("STRENGTH_TOO_LOW",
			fmt.Sprintf("strength %s below minimum %s", intent.Strength, p.MinStrength))
	}
	if p.MinVolumeRatio > 0 && intent.VolumeRatio < p.MinVolumeRatio {
		d.add("VOLUME_TOO_LOW",
			fmt.Sprintf("volume ratio %.2f below minimum %.2f", intent.VolumeRatio, p.MinVolumeRatio))
	}
	if p.MaxOpenLots > 0 && acct.OpenLots >= p.MaxOpenLots {
		d.add("TOO_MANY_OPEN_LOTS",
			fmt.Sprintf("open lots %d >= max %d", acct.OpenLots, p.MaxOpenLots))
	}

	return d
}

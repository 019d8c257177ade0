// Package guard decides whether the entry-evaluation block may run for a
// bar. Three independent paths can open it: the regular gated entry, the
// impulse rescue, and the ChoCH reversal bypass.
package guard

import (
	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// Input carries everything the guard reads for one bar.
type Input struct {
	BarIndex int
	// LastSignalBar is the bar index of the last qualifying signal, or
	// -1 when none has been recorded.
	LastSignalBar int
	Flat          bool
	Bar           types.Bar
	Signals       *types.BarSignals
	Forecast      types.Forecast
	Controls      types.EffectiveControls
}

// CooldownOK reports whether enough bars have passed since the last
// qualifying signal.
func CooldownOK(barIndex, lastSignalBar, cooldownBars int) bool {
	if lastSignalBar < 0 {
		return true
	}
	return barIndex-lastSignalBar > cooldownBars
}

// Evaluate computes the entry gates for one bar.
func Evaluate(cfg *config.Settings, in Input) types.Gates {
	g := in.Signals.Gates
	cooldownOK := CooldownOK(in.BarIndex, in.LastSignalBar, in.Controls.CooldownBars)

	decisionFinal := g.DecisionOK
	if cfg.Entry.UseEffectiveAbstainOverride {
		// NaN confidence fails the comparison and leaves the raw flag.
		decisionFinal = g.DecisionOK || in.Forecast.Confidence >= in.Controls.AbstainOverrideConf
	}

	allowEntry := cooldownOK &&
		!g.NearClose &&
		g.ReliabilityOK &&
		g.EvidenceOK &&
		g.EvalOK &&
		(!g.AbstainGate || decisionFinal) &&
		g.InSession

	// The rescue path needs an impulse bar whose body points in the
	// rescue direction.
	rescueLong := in.Signals.Impulse && in.Bar.Close.GreaterThan(in.Bar.Open) && cooldownOK
	rescueShort := in.Signals.Impulse && in.Bar.Close.LessThan(in.Bar.Open) && cooldownOK

	revBypass := cfg.Reversal.AllowNeuralReversals && cooldownOK &&
		(in.Signals.Structure.ChoCHLong || in.Signals.Structure.ChoCHShort)

	gates := types.Gates{
		CooldownOK:       cooldownOK,
		DecisionFinal:    decisionFinal,
		AllowEntry:       allowEntry,
		AllowRescueLong:  rescueLong,
		AllowRescueShort: rescueShort,
		AllowRevBypass:   revBypass,
	}
	gates.EntryEligible = in.Flat &&
		(allowEntry || rescueLong || rescueShort || revBypass)
	return gates
}

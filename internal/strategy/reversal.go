package strategy

import (
	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// Reversal probability floors. Inside an open reversal window the floor
// drops to zero; outside it the reversal must carry at least baseRevFloor.
// An impulse bar in the reversal direction bypasses the configured minimum
// as long as the probability clears impulseRevFloor.
const (
	baseRevFloor    = 0.25
	impulseRevFloor = 0.25
)

// GlobalReversal computes the reversal signals for one bar. It runs
// independently of the configured engine variant and its result is ORed
// into the raw signals by Inject.
func GlobalReversal(cfg *config.Settings, in EvalInput) (revBuy, revShort bool) {
	if !cfg.Reversal.AllowNeuralReversals {
		return false, false
	}
	revBuy = reversalSide(cfg, in, true)
	revShort = reversalSide(cfg, in, false)
	return revBuy, revShort
}

func reversalSide(cfg *config.Settings, in EvalInput, long bool) bool {
	g := in.Signals.Gates
	s := in.Signals.Structure

	macroOK := g.MacroBullOK
	choch := s.ChoCHLong
	prob := in.Forecast.ProbLong
	impulseAligned := in.Signals.Impulse && in.Bar.Close.GreaterThan(in.Bar.Open)
	// Reversing long only makes sense against structure that is not
	// already bullish.
	structOK := s.StructBias <= 0
	if !long {
		macroOK = g.MacroBearOK
		choch = s.ChoCHShort
		prob = in.Forecast.ProbShort
		impulseAligned = in.Signals.Impulse && in.Bar.Close.LessThan(in.Bar.Open)
		structOK = s.StructBias >= 0
	}

	if !macroOK || !g.DrawdownOK || !choch || !g.VolumeOK || !structOK {
		return false
	}

	floor := baseRevFloor
	if g.OpenReversalWindow {
		floor = 0.0
	}
	if !(prob >= floor) { // NaN fails
		return false
	}

	if prob >= cfg.Reversal.RevMinProb {
		return true
	}
	// Below the configured minimum: only the open window or an aligned
	// impulse bar may carry the reversal through.
	if g.OpenReversalWindow {
		return true
	}
	return impulseAligned && prob >= impulseRevFloor
}

// Inject unconditionally ORs the global reversal signals into the raw
// engine output; identical for all four variants.
func Inject(rawBuy, rawShort, revBuy, revShort bool) (bool, bool) {
	return rawBuy || revBuy, rawShort || revShort
}

// Resolve cancels a simultaneous buy+short. The pre-cancellation values
// survive only as diagnostics in the trace.
func Resolve(trace *types.SignalTrace) {
	trace.Buy = trace.InjectedBuy
	trace.Short = trace.InjectedShort
	if trace.Buy && trace.Short {
		trace.Conflicted = true
		trace.Buy = false
		trace.Short = false
	}
}

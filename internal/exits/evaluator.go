// Package exits computes the exit decision for an open position. Risk and
// stale exits bypass the grace periods; structural and ChoCH exits honor
// them.
package exits

import (
	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// Input carries the per-bar inputs the evaluator reads.
type Input struct {
	Position types.Position
	// BarsHeld is the holding duration as of the start of the bar: 0 on
	// the bar after entry is recorded, incrementing while held.
	BarsHeld int
	Signals  *types.BarSignals
	Forecast types.Forecast
}

// Evaluate computes the exit decision for one bar. It returns a zero
// decision while flat.
func Evaluate(cfg *config.Settings, in Input) types.ExitDecision {
	switch in.Position {
	case types.PositionLong:
		return evaluateLong(cfg, in)
	case types.PositionShort:
		return evaluateShort(cfg, in)
	default:
		return types.ExitDecision{}
	}
}

func graceWindows(cfg *config.Settings, barsHeld int) (canStruct, canChoCH bool) {
	chochGrace := cfg.Exit.GraceBars
	if chochGrace > 2 {
		chochGrace = 2
	}
	return barsHeld >= cfg.Exit.GraceBars, barsHeld >= chochGrace
}

func evaluateLong(cfg *config.Settings, in Input) types.ExitDecision {
	canStruct, canChoCH := graceWindows(cfg, in.BarsHeld)
	s := in.Signals.Structure
	r := in.Signals.Risk

	// A TP hit is suppressed while confidence holds above the threshold,
	// letting a high-confidence winner run. NaN confidence never
	// suppresses. All other risk reasons fire unconditionally.
	riskHit := r.ExitHit
	if riskHit && r.ExitReason == types.ExitReasonTP &&
		in.Forecast.Confidence >= cfg.Exit.ConfTP {
		riskHit = false
	}

	structHit := (s.BearishBreak && canStruct) || (s.ChoCHShort && canChoCH)
	// The structural exit additionally needs the opposing-direction
	// probability to clear the floor; a weak reversal read keeps the
	// position. The short path takes no such floor.
	if structHit && !(in.Forecast.ProbShort >= cfg.Exit.ConfChoCH) {
		structHit = false
	}

	return buildDecision(riskHit, structHit, r)
}

func evaluateShort(cfg *config.Settings, in Input) types.ExitDecision {
	canStruct, canChoCH := graceWindows(cfg, in.BarsHeld)
	s := in.Signals.Structure
	r := in.Signals.Risk

	riskHit := r.ExitHit
	if riskHit && r.ExitReason == types.ExitReasonTP &&
		in.Forecast.Confidence >= cfg.Exit.ConfTP {
		riskHit = false
	}

	structHit := (s.BullishBreak && canStruct) || (s.ChoCHLong && canChoCH)

	return buildDecision(riskHit, structHit, r)
}

func buildDecision(riskHit, structHit bool, r types.RiskSignals) types.ExitDecision {
	d := types.ExitDecision{
		RiskHit:   riskHit,
		StructHit: structHit,
		StaleHit:  r.Stale,
		Triggered: riskHit || structHit || r.Stale,
	}
	if !d.Triggered {
		return d
	}
	switch {
	case riskHit:
		d.Reason = r.ExitReason
	case r.Stale:
		d.Reason = types.ExitReasonStalemate
	default:
		d.Reason = types.ExitReasonChoCH
	}
	return d
}

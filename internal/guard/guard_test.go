package guard_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/internal/guard"
	"github.com/signalcraft/decision-engine/pkg/types"
)

func guardSettings() config.Settings {
	s := config.DefaultSettings()
	s.Entry.UseEffectiveAbstainOverride = true
	s.Entry.AbstainOverrideConf = 0.70
	s.Reversal.AllowNeuralReversals = true
	return s
}

func openInput() guard.Input {
	return guard.Input{
		BarIndex:      10,
		LastSignalBar: -1,
		Flat:          true,
		Bar: types.Bar{
			Open:  decimal.NewFromInt(100),
			Close: decimal.NewFromInt(101),
		},
		Signals: &types.BarSignals{
			Gates: types.GateSignals{
				InSession:     true,
				ReliabilityOK: true,
				EvidenceOK:    true,
				EvalOK:        true,
				DecisionOK:    true,
			},
		},
		Forecast: types.Forecast{Confidence: 0.6},
		Controls: types.EffectiveControls{CooldownBars: 5, AbstainOverrideConf: 0.70},
	}
}

func TestCooldownOK(t *testing.T) {
	tests := []struct {
		barIndex, lastSignal, cooldown int
		want                           bool
	}{
		{0, -1, 5, true},  // no prior signal
		{6, 1, 5, false},  // exactly at the limit
		{7, 1, 5, true},   // one past the limit
		{2, 1, 0, true},   // zero cooldown needs one bar of spacing
		{1, 1, 0, false},  // same bar never qualifies
		{10, 9, 3, false},
	}
	for _, tt := range tests {
		if got := guard.CooldownOK(tt.barIndex, tt.lastSignal, tt.cooldown); got != tt.want {
			t.Errorf("CooldownOK(%d,%d,%d) = %v, want %v", tt.barIndex, tt.lastSignal, tt.cooldown, got, tt.want)
		}
	}
}

func TestAllowEntryAllGatesOpen(t *testing.T) {
	cfg := guardSettings()
	g := guard.Evaluate(&cfg, openInput())
	if !g.AllowEntry || !g.EntryEligible {
		t.Errorf("entry should be allowed, got %+v", g)
	}
}

func TestNearCloseBlocksEntry(t *testing.T) {
	cfg := guardSettings()
	in := openInput()
	in.Signals.Gates.NearClose = true
	if g := guard.Evaluate(&cfg, in); g.AllowEntry {
		t.Error("near-close bar must block the regular entry path")
	}
}

func TestOutOfSessionBlocksEntry(t *testing.T) {
	cfg := guardSettings()
	in := openInput()
	in.Signals.Gates.InSession = false
	if g := guard.Evaluate(&cfg, in); g.AllowEntry {
		t.Error("out-of-session bar must block the regular entry path")
	}
}

func TestAbstainOverride(t *testing.T) {
	cfg := guardSettings()
	in := openInput()
	in.Signals.Gates.AbstainGate = true
	in.Signals.Gates.DecisionOK = false

	// Confidence clears the effective override threshold.
	in.Forecast.Confidence = 0.75
	g := guard.Evaluate(&cfg, in)
	if !g.DecisionFinal || !g.AllowEntry {
		t.Errorf("override should clear the abstain gate, got %+v", g)
	}

	// Below the threshold the abstain gate holds.
	in.Forecast.Confidence = 0.60
	if g := guard.Evaluate(&cfg, in); g.AllowEntry {
		t.Error("abstain gate should hold below the override confidence")
	}

	// Feature disabled: the raw decision flag is all that counts.
	cfg.Entry.UseEffectiveAbstainOverride = false
	in.Forecast.Confidence = 0.99
	if g := guard.Evaluate(&cfg, in); g.AllowEntry {
		t.Error("override disabled: high confidence must not bypass the abstain gate")
	}
}

func TestNaNConfidenceFailsOverride(t *testing.T) {
	cfg := guardSettings()
	in := openInput()
	in.Signals.Gates.AbstainGate = true
	in.Signals.Gates.DecisionOK = false
	in.Forecast.Confidence = math.NaN()
	if g := guard.Evaluate(&cfg, in); g.AllowEntry {
		t.Error("NaN confidence must fail the override")
	}
}

func TestRescueDirectionMatchesBody(t *testing.T) {
	cfg := guardSettings()
	in := openInput()
	in.Signals.Impulse = true
	in.Signals.Gates.InSession = false // close the regular path

	g := guard.Evaluate(&cfg, in)
	if !g.AllowRescueLong || g.AllowRescueShort {
		t.Errorf("up-body impulse: rescueLong only, got %+v", g)
	}
	if !g.EntryEligible {
		t.Error("rescue alone should open the entry block")
	}

	in.Bar.Close = decimal.NewFromInt(99)
	g = guard.Evaluate(&cfg, in)
	if g.AllowRescueLong || !g.AllowRescueShort {
		t.Errorf("down-body impulse: rescueShort only, got %+v", g)
	}
}

func TestRescueRespectsCooldown(t *testing.T) {
	cfg := guardSettings()
	in := openInput()
	in.Signals.Impulse = true
	in.LastSignalBar = 9 // adjacent bar, cooldown 5

	g := guard.Evaluate(&cfg, in)
	if g.AllowRescueLong || g.AllowRescueShort {
		t.Error("rescue must honor the cooldown")
	}
}

func TestReversalBypass(t *testing.T) {
	cfg := guardSettings()
	in := openInput()
	in.Signals.Gates.InSession = false
	in.Signals.Structure.ChoCHShort = true

	g := guard.Evaluate(&cfg, in)
	if !g.AllowRevBypass || !g.EntryEligible {
		t.Errorf("ChoCH bar should open the bypass, got %+v", g)
	}

	cfg.Reversal.AllowNeuralReversals = false
	if g := guard.Evaluate(&cfg, in); g.AllowRevBypass {
		t.Error("bypass requires the reversal feature")
	}
}

func TestNotEligibleWhileHolding(t *testing.T) {
	cfg := guardSettings()
	in := openInput()
	in.Flat = false
	if g := guard.Evaluate(&cfg, in); g.EntryEligible {
		t.Error("entry block must not run while holding a position")
	}
}

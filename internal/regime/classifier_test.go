package regime_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/internal/regime"
	"github.com/signalcraft/decision-engine/pkg/types"
)

func newClassifier(cfg config.RegimeSettings) *regime.Classifier {
	return regime.NewClassifier(zap.NewNop(), cfg)
}

func TestHysteresisHoldTrace(t *testing.T) {
	c := newClassifier(config.RegimeSettings{Enabled: true, MinHoldBars: 2})

	raw := []types.RegimeState{types.RegimeTrend, types.RegimeChop, types.RegimeChop, types.RegimeChop}
	wantState := []types.RegimeState{types.RegimeTrend, types.RegimeTrend, types.RegimeTrend, types.RegimeChop}
	wantHold := []int{0, 1, 2, 0}

	snap := types.RegimeSnapshot{State: types.RegimeOff}
	for i, cand := range raw {
		snap = c.Step(snap, cand, 0)
		if snap.State != wantState[i] {
			t.Errorf("bar %d: state = %s, want %s", i, snap.State, wantState[i])
		}
		if snap.HoldBars != wantHold[i] {
			t.Errorf("bar %d: hold = %d, want %d", i, snap.HoldBars, wantHold[i])
		}
	}
}

func TestVolShockPreempts(t *testing.T) {
	c := newClassifier(config.RegimeSettings{Enabled: true, MinHoldBars: 10, ShockThresholdPct: 4, ShockReleaseDelta: 1})

	snap := types.RegimeSnapshot{State: types.RegimeTrend, HoldBars: 0}
	snap = c.Step(snap, types.RegimeVolShock, 5)
	if snap.State != types.RegimeVolShock {
		t.Fatalf("shock should preempt hysteresis, got %s", snap.State)
	}
}

func TestVolShockStickiness(t *testing.T) {
	cfg := config.RegimeSettings{Enabled: true, MinHoldBars: 0, ShockThresholdPct: 4, ShockReleaseDelta: 1}
	c := newClassifier(cfg)

	snap := types.RegimeSnapshot{State: types.RegimeVolShock, HoldBars: 3}

	// Intensity above threshold-release: candidate is overridden.
	snap = c.Step(snap, types.RegimeTrend, 3.5)
	if snap.State != types.RegimeVolShock {
		t.Fatalf("shock should stay sticky at 3.5%%, got %s", snap.State)
	}

	// Intensity decayed: the candidate is honored again.
	snap = c.Step(snap, types.RegimeTrend, 2.0)
	if snap.State != types.RegimeTrend {
		t.Fatalf("shock should release at 2.0%%, got %s", snap.State)
	}
	if snap.HoldBars != 0 {
		t.Errorf("hold should reset on accepted change, got %d", snap.HoldBars)
	}
}

func TestDisabledAlwaysOff(t *testing.T) {
	c := newClassifier(config.RegimeSettings{Enabled: false})

	snap := c.Step(types.RegimeSnapshot{State: types.RegimeOff}, types.RegimeVolShock, 99)
	if snap.State != types.RegimeOff || snap.HoldBars != 0 {
		t.Errorf("disabled classifier must stay off, got %+v", snap)
	}
}

func TestSameCandidateIncrementsHold(t *testing.T) {
	c := newClassifier(config.RegimeSettings{Enabled: true, MinHoldBars: 2})

	snap := types.RegimeSnapshot{State: types.RegimeTrend, HoldBars: 4}
	snap = c.Step(snap, types.RegimeTrend, 0)
	if snap.State != types.RegimeTrend || snap.HoldBars != 5 {
		t.Errorf("got %+v, want trend/5", snap)
	}
}

func TestEmptyCandidateTreatedAsOff(t *testing.T) {
	c := newClassifier(config.RegimeSettings{Enabled: true, MinHoldBars: 0})

	snap := c.Step(types.RegimeSnapshot{State: types.RegimeTrend, HoldBars: 1}, "", 0)
	if snap.State != types.RegimeOff {
		t.Errorf("missing candidate should map to off, got %s", snap.State)
	}
}

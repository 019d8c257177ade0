// Package regime provides the hysteresis-filtered market-regime state.
// A raw per-bar candidate arrives from the feature layer; the classifier
// decides whether the effective state may follow it.
package regime

import (
	"go.uber.org/zap"

	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// Classifier applies hold-bar hysteresis and VOL_SHOCK stickiness to raw
// regime candidates. It is stateless: the snapshot lives in the engine
// state that owns it.
type Classifier struct {
	logger *zap.Logger
	cfg    config.RegimeSettings
}

// NewClassifier creates a classifier for one run.
func NewClassifier(logger *zap.Logger, cfg config.RegimeSettings) *Classifier {
	return &Classifier{logger: logger, cfg: cfg}
}

// Step advances the regime snapshot by one bar.
//
// A state change is accepted only when the current state is Off, the
// candidate is VolShock (always preemptive), or the hold counter has
// reached the configured minimum. Otherwise the hold counter increments
// and the state is retained. Once in VolShock the state stays sticky
// while observed shock intensity remains above threshold minus release
// delta, overriding the candidate.
func (c *Classifier) Step(prev types.RegimeSnapshot, candidate types.RegimeState, shockIntensityPct float64) types.RegimeSnapshot {
	if !c.cfg.Enabled {
		return types.RegimeSnapshot{State: types.RegimeOff}
	}
	if candidate == "" {
		candidate = types.RegimeOff
	}

	// Sticky shock: the raw candidate is ignored until intensity decays.
	if prev.State == types.RegimeVolShock &&
		shockIntensityPct > c.cfg.ShockThresholdPct-c.cfg.ShockReleaseDelta {
		return types.RegimeSnapshot{State: types.RegimeVolShock, HoldBars: prev.HoldBars + 1}
	}

	if candidate == prev.State {
		return types.RegimeSnapshot{State: prev.State, HoldBars: prev.HoldBars + 1}
	}

	accept := prev.State == types.RegimeOff ||
		candidate == types.RegimeVolShock ||
		prev.HoldBars >= c.cfg.MinHoldBars

	if !accept {
		return types.RegimeSnapshot{State: prev.State, HoldBars: prev.HoldBars + 1}
	}

	if c.logger != nil {
		c.logger.Debug("regime change accepted",
			zap.String("from", string(prev.State)),
			zap.String("to", string(candidate)),
			zap.Int("heldBars", prev.HoldBars),
		)
	}
	return types.RegimeSnapshot{State: candidate, HoldBars: 0}
}

package strategy

import (
	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// HybridEngine combines the per-direction setup features with the main
// trigger flag, then runs the ChoCH filter on the candidate.
type HybridEngine struct {
	cfg *config.Settings
}

// NewHybridEngine creates the hybrid variant.
func NewHybridEngine(cfg *config.Settings) *HybridEngine {
	return &HybridEngine{cfg: cfg}
}

// Mode returns the engine mode.
func (e *HybridEngine) Mode() types.EngineMode { return types.EngineHybrid }

// Evaluate produces the raw buy/short signals for one bar.
func (e *HybridEngine) Evaluate(in EvalInput) (bool, bool) {
	t := in.Signals.Triggers

	buy := baseGate(e.cfg, in, true) && t.HybridLongSetup && t.TriggerLong &&
		chochFilter(e.cfg, in, true)
	short := baseGate(e.cfg, in, false) && t.HybridShortSetup && t.TriggerShort &&
		chochFilter(e.cfg, in, false)

	return buy, short
}

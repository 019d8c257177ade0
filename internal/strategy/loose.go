package strategy

import (
	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// LooseEngine is the most permissive variant: the base gate plus a plain
// EMA cross. No ChoCH filter.
type LooseEngine struct {
	cfg *config.Settings
}

// NewLooseEngine creates the loose variant.
func NewLooseEngine(cfg *config.Settings) *LooseEngine {
	return &LooseEngine{cfg: cfg}
}

// Mode returns the engine mode.
func (e *LooseEngine) Mode() types.EngineMode { return types.EngineLoose }

// Evaluate produces the raw buy/short signals for one bar.
func (e *LooseEngine) Evaluate(in EvalInput) (bool, bool) {
	t := in.Signals.Triggers

	buy := baseGate(e.cfg, in, true) && t.EMACrossLong
	short := baseGate(e.cfg, in, false) && t.EMACrossShort

	return buy, short
}

package strategy

import (
	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// BreakoutEngine trades range breaks in the direction of the prevailing
// trend, with the same ChoCH filter as the hybrid variant.
type BreakoutEngine struct {
	cfg *config.Settings
}

// NewBreakoutEngine creates the breakout variant.
func NewBreakoutEngine(cfg *config.Settings) *BreakoutEngine {
	return &BreakoutEngine{cfg: cfg}
}

// Mode returns the engine mode.
func (e *BreakoutEngine) Mode() types.EngineMode { return types.EngineBreakout }

// Evaluate produces the raw buy/short signals for one bar.
func (e *BreakoutEngine) Evaluate(in EvalInput) (bool, bool) {
	t := in.Signals.Triggers

	buy := baseGate(e.cfg, in, true) && t.TrendUp && t.BreakoutLong &&
		chochFilter(e.cfg, in, true)
	short := baseGate(e.cfg, in, false) && t.TrendDown && t.BreakoutShort &&
		chochFilter(e.cfg, in, false)

	return buy, short
}

package strategy

import (
	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// TrendPullbackEngine enters on a trend flip or a reclaim of the trend
// line. It carries no ChoCH filter.
type TrendPullbackEngine struct {
	cfg *config.Settings
}

// NewTrendPullbackEngine creates the trend+pullback variant.
func NewTrendPullbackEngine(cfg *config.Settings) *TrendPullbackEngine {
	return &TrendPullbackEngine{cfg: cfg}
}

// Mode returns the engine mode.
func (e *TrendPullbackEngine) Mode() types.EngineMode { return types.EngineTrendPullback }

// Evaluate produces the raw buy/short signals for one bar.
func (e *TrendPullbackEngine) Evaluate(in EvalInput) (bool, bool) {
	t := in.Signals.Triggers

	buy := baseGate(e.cfg, in, true) && (t.TrendFlipLong || t.ReclaimLong)
	short := baseGate(e.cfg, in, false) && (t.TrendFlipShort || t.ReclaimShort)

	return buy, short
}

// Package tuning derives the effective per-bar control values from the
// base configuration, the trading preset, the regime state and the model
// confidence.
package tuning

import (
	"math"

	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// Regime tuning bounds. Floors and caps are fixed, not configurable.
const (
	chochFloorMin = 0.34
	chochFloorMax = 0.95
	abstainMin    = 0.50
	abstainMax    = 0.99

	// Confidence-adaptive halving: at or above this confidence the
	// effective cooldown is halved, floored at 2 bars.
	halvingConfidence  = 0.80
	halvingMinCooldown = 2
)

// Compute returns the effective controls for one bar.
//
// Order matters: the preset cooldown override is applied before regime
// tuning, and the confidence-adaptive halving is applied last.
func Compute(cfg *config.Settings, reg types.RegimeSnapshot, confidence float64) types.EffectiveControls {
	out := types.EffectiveControls{
		CooldownBars:        cfg.Entry.CooldownBars,
		ChoCHProbFloor:      cfg.Engine.ChoCHProbFloor,
		AbstainOverrideConf: cfg.Entry.AbstainOverrideConf,
	}

	if cfg.Preset.UseCooldown && cfg.Preset.Name != types.PresetManual {
		out.CooldownBars = presetCooldown(cfg)
	}

	if cfg.Regime.Enabled && cfg.Regime.AutoTune {
		applyRegime(&out, reg.State)
	}

	// NaN confidence never qualifies for halving.
	if confidence >= halvingConfidence {
		half := int(math.Round(float64(out.CooldownBars) / 2))
		if half < halvingMinCooldown {
			half = halvingMinCooldown
		}
		out.CooldownBars = half
	}

	return out
}

func presetCooldown(cfg *config.Settings) int {
	switch cfg.Preset.Name {
	case types.PresetScalp:
		return cfg.Preset.ScalpCooldown
	case types.PresetIntraday:
		return cfg.Preset.IntradayCooldown
	case types.PresetSwing:
		return cfg.Preset.SwingCooldown
	default:
		return cfg.Entry.CooldownBars
	}
}

func applyRegime(c *types.EffectiveControls, state types.RegimeState) {
	switch state {
	case types.RegimeTrend:
		c.CooldownBars = maxInt(0, c.CooldownBars-1)
		c.ChoCHProbFloor = math.Max(chochFloorMin, c.ChoCHProbFloor-0.03)
		c.AbstainOverrideConf = math.Max(abstainMin, c.AbstainOverrideConf-0.05)
	case types.RegimeRange:
		c.ChoCHProbFloor = math.Min(chochFloorMax, c.ChoCHProbFloor+0.02)
	case types.RegimeChop:
		c.CooldownBars++
		c.ChoCHProbFloor = math.Min(chochFloorMax, c.ChoCHProbFloor+0.05)
		c.AbstainOverrideConf = math.Min(abstainMax, c.AbstainOverrideConf+0.05)
	case types.RegimeVolShock:
		c.CooldownBars += 2
		c.ChoCHProbFloor = math.Min(chochFloorMax, c.ChoCHProbFloor+0.08)
		c.AbstainOverrideConf = math.Min(abstainMax, c.AbstainOverrideConf+0.08)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

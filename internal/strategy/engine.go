// Package strategy provides the four entry-trigger engines, the global
// reversal signal, and conflict resolution. Exactly one engine variant is
// active per run; all of them share the contract of producing raw buy and
// short signals before reversal injection.
package strategy

import (
	"sync"

	"go.uber.org/zap"

	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// EvalInput carries the per-bar inputs an engine reads.
type EvalInput struct {
	Bar      types.Bar
	Signals  *types.BarSignals
	Forecast types.Forecast
	Controls types.EffectiveControls
}

// Engine is the contract every trigger variant implements.
type Engine interface {
	Mode() types.EngineMode
	Evaluate(in EvalInput) (buy, short bool)
}

// Registry manages the available engine variants.
type Registry struct {
	logger    *zap.Logger
	mu        sync.RWMutex
	factories map[types.EngineMode]func(cfg *config.Settings) Engine
}

// NewRegistry creates a registry with the built-in variants registered.
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		logger:    logger,
		factories: make(map[types.EngineMode]func(cfg *config.Settings) Engine),
	}

	r.Register(types.EngineHybrid, func(cfg *config.Settings) Engine { return NewHybridEngine(cfg) })
	r.Register(types.EngineBreakout, func(cfg *config.Settings) Engine { return NewBreakoutEngine(cfg) })
	r.Register(types.EngineTrendPullback, func(cfg *config.Settings) Engine { return NewTrendPullbackEngine(cfg) })
	r.Register(types.EngineLoose, func(cfg *config.Settings) Engine { return NewLooseEngine(cfg) })

	return r
}

// Register registers an engine factory.
func (r *Registry) Register(mode types.EngineMode, factory func(cfg *config.Settings) Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[mode] = factory
}

// Create instantiates the engine for the given mode.
func (r *Registry) Create(mode types.EngineMode, cfg *config.Settings) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[mode]
	if !ok {
		return nil, false
	}
	return factory(cfg), true
}

// List returns all registered engine modes.
func (r *Registry) List() []types.EngineMode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modes := make([]types.EngineMode, 0, len(r.factories))
	for mode := range r.factories {
		modes = append(modes, mode)
	}
	return modes
}

// baseGate is the directional gate shared by every variant: confidence at
// or above the trust floor, multi-timeframe agreement, the matching macro
// gate, and acceptable drawdown. NaN confidence fails it.
func baseGate(cfg *config.Settings, in EvalInput, long bool) bool {
	g := in.Signals.Gates
	macroOK := g.MacroBullOK
	if !long {
		macroOK = g.MacroBearOK
	}
	return in.Forecast.Confidence >= cfg.Entry.MinTrust &&
		g.MTFOK && macroOK && g.DrawdownOK
}

// chochFilter vetoes a candidate entry that opposes the current structural
// state or coincides with a ChoCH event, unless the directional probability
// clears the effective floor (and volume confirms, when required). Entries
// aligned with structure and away from ChoCH events pass unfiltered.
func chochFilter(cfg *config.Settings, in EvalInput, long bool) bool {
	s := in.Signals.Structure
	opposes := (long && s.StructBias < 0) || (!long && s.StructBias > 0)
	coincides := s.ChoCHLong || s.ChoCHShort
	if !opposes && !coincides {
		return true
	}

	prob := in.Forecast.ProbLong
	if !long {
		prob = in.Forecast.ProbShort
	}
	if prob < in.Controls.ChoCHProbFloor || prob != prob { // NaN fails
		return false
	}
	if cfg.Engine.RequireChoCHVolume && !in.Signals.Gates.VolumeOK {
		return false
	}
	return true
}

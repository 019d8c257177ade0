// Package decision wires the gating layers into the per-bar pipeline and
// applies the strict priority-ordered state transition. One Engine per
// instrument; independent engines share no mutable state and may run on
// separate goroutines without synchronization.
package decision

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/signalcraft/decision-engine/internal/alerts"
	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/internal/exits"
	"github.com/signalcraft/decision-engine/internal/guard"
	"github.com/signalcraft/decision-engine/internal/regime"
	"github.com/signalcraft/decision-engine/internal/strategy"
	"github.com/signalcraft/decision-engine/internal/tuning"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// Engine is the decision core for one instrument.
type Engine struct {
	logger     *zap.Logger
	cfg        *config.Settings
	variant    strategy.Engine
	classifier *regime.Classifier
	state      EngineState
}

// New creates an engine for one instrument. The settings bag must already
// be validated; the engine treats it as trusted.
func New(logger *zap.Logger, cfg *config.Settings) (*Engine, error) {
	variant, ok := strategy.NewRegistry(logger).Create(cfg.Engine.Mode, cfg)
	if !ok {
		return nil, fmt.Errorf("unknown engine mode %q", cfg.Engine.Mode)
	}
	return &Engine{
		logger:     logger,
		cfg:        cfg,
		variant:    variant,
		classifier: regime.NewClassifier(logger, cfg.Regime),
		state:      NewEngineState(),
	}, nil
}

// State returns a copy of the current engine state.
func (e *Engine) State() EngineState { return e.state }

// Mode returns the active engine variant.
func (e *Engine) Mode() types.EngineMode { return e.variant.Mode() }

// ProcessBar runs the full pipeline for one confirmed bar: regime step,
// effective controls, entry gates, engine dispatch with reversal injection
// and conflict resolution, exit evaluation, the priority-ordered state
// transition, alert conditions, and finally the counter advance.
//
// Bars must arrive in strictly increasing time order; a regression is a
// contract violation and returns an error before any state mutation.
func (e *Engine) ProcessBar(bar types.Bar, signals types.BarSignals, forecast types.Forecast) (*types.BarResult, error) {
	if !e.state.LastBarTime.IsZero() && !bar.Timestamp.After(e.state.LastBarTime) {
		return nil, fmt.Errorf("bar out of order: %s not after %s",
			bar.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			e.state.LastBarTime.Format("2006-01-02T15:04:05Z07:00"))
	}

	idx := e.state.BarIndex
	reg := e.classifier.Step(e.state.Regime, signals.RegimeCandidate, signals.ShockIntensityPct)
	controls := tuning.Compute(e.cfg, reg, forecast.Confidence)

	gates := guard.Evaluate(e.cfg, guard.Input{
		BarIndex:      idx,
		LastSignalBar: e.state.LastSignalBar,
		Flat:          e.state.Position == types.PositionFlat,
		Bar:           bar,
		Signals:       &signals,
		Forecast:      forecast,
		Controls:      controls,
	})

	var trace types.SignalTrace
	if gates.EntryEligible {
		in := strategy.EvalInput{Bar: bar, Signals: &signals, Forecast: forecast, Controls: controls}
		trace.RawBuy, trace.RawShort = e.variant.Evaluate(in)
		trace.RevBuy, trace.RevShort = strategy.GlobalReversal(e.cfg, in)
		trace.InjectedBuy, trace.InjectedShort = strategy.Inject(trace.RawBuy, trace.RawShort, trace.RevBuy, trace.RevShort)
		strategy.Resolve(&trace)
	}

	var exitDec types.ExitDecision
	if e.state.Position != types.PositionFlat {
		exitDec = exits.Evaluate(e.cfg, exits.Input{
			Position: e.state.Position,
			BarsHeld: e.state.BarsHeld,
			Signals:  &signals,
			Forecast: forecast,
		})
	}

	posBefore := e.state.Position
	action := e.transition(bar, idx, trace, exitDec)
	entered := action == types.ActionBuy || action == types.ActionShort

	alertFlags := alerts.Compute(e.cfg, alerts.Input{
		DidBuy:    action == types.ActionBuy,
		DidShort:  action == types.ActionShort,
		DidExit:   action == types.ActionExit,
		DidCover:  action == types.ActionCover,
		PrevBuy:   e.state.PrevBuyEvent,
		PrevShort: e.state.PrevShortEvent,
		Signals:   &signals,
	})

	// Advance the bar counters.
	switch {
	case e.state.Position == types.PositionFlat:
		e.state.BarsHeld = 0
	case entered:
		e.state.BarsHeld = 0
	default:
		e.state.BarsHeld++
	}
	e.state.PrevBuyEvent = action == types.ActionBuy
	e.state.PrevShortEvent = action == types.ActionShort
	e.state.Regime = reg
	e.state.BarIndex = idx + 1
	e.state.LastBarTime = bar.Timestamp

	if action != types.ActionNone {
		e.logger.Debug("state transition",
			zap.Int("bar", idx),
			zap.String("action", string(action)),
			zap.String("position", e.state.Position.String()),
			zap.String("exitReason", exitDec.Reason),
		)
	}

	return &types.BarResult{
		BarIndex:       idx,
		Action:         action,
		PositionBefore: posBefore,
		PositionAfter:  e.state.Position,
		BarsHeld:       e.state.BarsHeld,
		EntryPrice:     e.state.EntryPrice,
		Gates:          gates,
		Signals:        trace,
		Exit:           exitDec,
		Controls:       controls,
		Regime:         reg,
		Alerts:         alertFlags,
	}, nil
}

// transition applies the strict priority order and mutates position state
// exactly once per bar.
func (e *Engine) transition(bar types.Bar, idx int, trace types.SignalTrace, exitDec types.ExitDecision) types.Action {
	switch {
	case exitDec.Triggered && e.state.Position == types.PositionLong:
		e.close(idx)
		return types.ActionExit
	case exitDec.Triggered && e.state.Position == types.PositionShort:
		e.close(idx)
		return types.ActionCover
	case trace.Buy && e.state.Position == types.PositionFlat:
		e.open(types.PositionLong, bar, idx)
		return types.ActionBuy
	case trace.Short && e.state.Position == types.PositionFlat:
		e.open(types.PositionShort, bar, idx)
		return types.ActionShort
	default:
		return types.ActionNone
	}
}

func (e *Engine) open(pos types.Position, bar types.Bar, idx int) {
	e.state.Position = pos
	e.state.EntryPrice = bar.Close
	e.state.LastSignalBar = idx
}

func (e *Engine) close(idx int) {
	e.state.Position = types.PositionFlat
	e.state.EntryPrice = decimal.Decimal{}
	e.state.LastSignalBar = idx
}

package strategy_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/internal/strategy"
	"github.com/signalcraft/decision-engine/pkg/types"
)

func engineSettings() config.Settings {
	s := config.DefaultSettings()
	s.Entry.MinTrust = 0.5
	s.Engine.ChoCHProbFloor = 0.55
	s.Engine.RequireChoCHVolume = false
	s.Reversal.AllowNeuralReversals = true
	s.Reversal.RevMinProb = 0.60
	return s
}

func baseInput() strategy.EvalInput {
	return strategy.EvalInput{
		Bar: types.Bar{
			Open:  decimal.NewFromInt(100),
			Close: decimal.NewFromInt(101),
		},
		Signals: &types.BarSignals{
			Gates: types.GateSignals{
				MTFOK:       true,
				MacroBullOK: true,
				MacroBearOK: true,
				DrawdownOK:  true,
				VolumeOK:    true,
			},
		},
		Forecast: types.Forecast{Confidence: 0.7, ProbLong: 0.7, ProbShort: 0.3},
		Controls: types.EffectiveControls{ChoCHProbFloor: 0.55},
	}
}

func TestRegistryCreatesAllVariants(t *testing.T) {
	cfg := engineSettings()
	r := strategy.NewRegistry(zap.NewNop())

	for _, mode := range []types.EngineMode{
		types.EngineHybrid, types.EngineBreakout, types.EngineTrendPullback, types.EngineLoose,
	} {
		eng, ok := r.Create(mode, &cfg)
		if !ok {
			t.Fatalf("missing engine %s", mode)
		}
		if eng.Mode() != mode {
			t.Errorf("engine %s reports mode %s", mode, eng.Mode())
		}
	}

	if _, ok := r.Create("bogus", &cfg); ok {
		t.Error("unknown mode must not resolve")
	}
	if len(r.List()) != 4 {
		t.Errorf("registry should hold 4 variants, got %d", len(r.List()))
	}
}

func TestHybridNeedsSetupAndTrigger(t *testing.T) {
	cfg := engineSettings()
	eng := strategy.NewHybridEngine(&cfg)

	in := baseInput()
	in.Signals.Triggers.HybridLongSetup = true
	if buy, _ := eng.Evaluate(in); buy {
		t.Error("setup without trigger must not fire")
	}

	in.Signals.Triggers.TriggerLong = true
	if buy, _ := eng.Evaluate(in); !buy {
		t.Error("setup plus trigger should fire")
	}

	// Confidence below the trust floor kills the base gate.
	in.Forecast.Confidence = 0.4
	if buy, _ := eng.Evaluate(in); buy {
		t.Error("base gate must hold the trust floor")
	}
}

func TestHybridChoCHFilter(t *testing.T) {
	cfg := engineSettings()
	eng := strategy.NewHybridEngine(&cfg)

	in := baseInput()
	in.Signals.Triggers.HybridLongSetup = true
	in.Signals.Triggers.TriggerLong = true
	in.Signals.Structure.StructBias = -1 // entry opposes structure

	in.Forecast.ProbLong = 0.50 // below the floor
	if buy, _ := eng.Evaluate(in); buy {
		t.Error("counter-structure entry below the probability floor must be vetoed")
	}

	in.Forecast.ProbLong = 0.60
	if buy, _ := eng.Evaluate(in); !buy {
		t.Error("counter-structure entry above the floor should pass")
	}

	// Volume confirmation, when demanded, is part of the filter.
	cfg.Engine.RequireChoCHVolume = true
	in.Signals.Gates.VolumeOK = false
	if buy, _ := eng.Evaluate(in); buy {
		t.Error("filter must demand volume confirmation when configured")
	}

	// Aligned entries away from ChoCH events pass unfiltered.
	in.Signals.Structure.StructBias = 1
	in.Forecast.ProbLong = 0.10
	if buy, _ := eng.Evaluate(in); !buy {
		t.Error("aligned entry should bypass the filter entirely")
	}
}

func TestChoCHEventTriggersFilter(t *testing.T) {
	cfg := engineSettings()
	eng := strategy.NewHybridEngine(&cfg)

	in := baseInput()
	in.Signals.Triggers.HybridLongSetup = true
	in.Signals.Triggers.TriggerLong = true
	in.Signals.Structure.StructBias = 1       // aligned
	in.Signals.Structure.ChoCHLong = true     // but a ChoCH event coincides
	in.Forecast.ProbLong = 0.50

	if buy, _ := eng.Evaluate(in); buy {
		t.Error("a coinciding ChoCH event must engage the filter")
	}
}

func TestBreakoutNeedsTrendDirection(t *testing.T) {
	cfg := engineSettings()
	eng := strategy.NewBreakoutEngine(&cfg)

	in := baseInput()
	in.Signals.Triggers.BreakoutLong = true
	if buy, _ := eng.Evaluate(in); buy {
		t.Error("breakout without trend direction must not fire")
	}

	in.Signals.Triggers.TrendUp = true
	if buy, _ := eng.Evaluate(in); !buy {
		t.Error("trend-aligned breakout should fire")
	}
}

func TestTrendPullbackEitherTrigger(t *testing.T) {
	cfg := engineSettings()
	eng := strategy.NewTrendPullbackEngine(&cfg)

	in := baseInput()
	in.Signals.Triggers.TrendFlipShort = true
	if _, short := eng.Evaluate(in); !short {
		t.Error("trend flip should fire")
	}

	in.Signals.Triggers.TrendFlipShort = false
	in.Signals.Triggers.ReclaimShort = true
	if _, short := eng.Evaluate(in); !short {
		t.Error("reclaim should fire")
	}

	// No ChoCH filter on this variant: a counter-structure entry with a
	// weak probability still passes.
	in.Signals.Structure.StructBias = 1
	in.Forecast.ProbShort = 0.05
	if _, short := eng.Evaluate(in); !short {
		t.Error("trend+pullback must not apply the ChoCH filter")
	}
}

func TestLooseEMACross(t *testing.T) {
	cfg := engineSettings()
	eng := strategy.NewLooseEngine(&cfg)

	in := baseInput()
	in.Signals.Triggers.EMACrossLong = true
	buy, short := eng.Evaluate(in)
	if !buy || short {
		t.Errorf("got buy=%v short=%v, want buy only", buy, short)
	}
}

func reversalInput() strategy.EvalInput {
	in := baseInput()
	in.Signals.Structure.ChoCHLong = true
	in.Signals.Structure.StructBias = -1
	return in
}

func TestReversalProbabilityFloors(t *testing.T) {
	cfg := engineSettings()

	// Outside the window the floor is exactly 0.25.
	in := reversalInput()
	in.Forecast.ProbLong = 0.24
	if buy, _ := strategy.GlobalReversal(&cfg, in); buy {
		t.Error("0.24 must fail the 0.25 floor outside the window")
	}

	// Inside the open window the floor is exactly 0.0.
	in.Signals.Gates.OpenReversalWindow = true
	in.Forecast.ProbLong = 0.0
	if buy, _ := strategy.GlobalReversal(&cfg, in); !buy {
		t.Error("0.0 should pass inside the open window")
	}
}

func TestReversalMinProb(t *testing.T) {
	cfg := engineSettings() // RevMinProb 0.60

	// Above the configured minimum: fires.
	in := reversalInput()
	in.Forecast.ProbLong = 0.65
	if buy, _ := strategy.GlobalReversal(&cfg, in); !buy {
		t.Error("probability above rev_min_prob should fire")
	}

	// Below it, no bypass: blocked.
	in.Forecast.ProbLong = 0.40
	in.Signals.Impulse = false
	if buy, _ := strategy.GlobalReversal(&cfg, in); buy {
		t.Error("probability below rev_min_prob without bypass must not fire")
	}

	// Same-direction impulse bar with probability >= 0.25 bypasses.
	in.Signals.Impulse = true // bar body is up in baseInput
	if buy, _ := strategy.GlobalReversal(&cfg, in); !buy {
		t.Error("aligned impulse should bypass rev_min_prob")
	}

	// Opposite-body impulse does not help a long reversal.
	in.Bar.Close = decimal.NewFromInt(99)
	if buy, _ := strategy.GlobalReversal(&cfg, in); buy {
		t.Error("down-body impulse must not bypass for the long side")
	}
}

func TestReversalStructuralFilter(t *testing.T) {
	cfg := engineSettings()

	in := reversalInput()
	in.Forecast.ProbLong = 0.9
	in.Signals.Structure.StructBias = 1 // already bullish: nothing to reverse
	if buy, _ := strategy.GlobalReversal(&cfg, in); buy {
		t.Error("long reversal against an already-bullish structure must not fire")
	}
}

func TestReversalRequiresVolumeAndMacro(t *testing.T) {
	cfg := engineSettings()

	in := reversalInput()
	in.Forecast.ProbLong = 0.9
	in.Signals.Gates.VolumeOK = false
	if buy, _ := strategy.GlobalReversal(&cfg, in); buy {
		t.Error("reversal requires volume confirmation")
	}

	in.Signals.Gates.VolumeOK = true
	in.Signals.Gates.MacroBullOK = false
	if buy, _ := strategy.GlobalReversal(&cfg, in); buy {
		t.Error("reversal requires the matching macro gate")
	}
}

func TestReversalNaNProbFails(t *testing.T) {
	cfg := engineSettings()
	in := reversalInput()
	in.Signals.Gates.OpenReversalWindow = true
	in.Forecast.ProbLong = math.NaN()
	if buy, _ := strategy.GlobalReversal(&cfg, in); buy {
		t.Error("NaN probability must fail even the zero floor")
	}
}

func TestInjectAndResolve(t *testing.T) {
	buy, short := strategy.Inject(false, false, true, false)
	if !buy || short {
		t.Errorf("inject: got buy=%v short=%v", buy, short)
	}

	trace := types.SignalTrace{InjectedBuy: true, InjectedShort: true}
	strategy.Resolve(&trace)
	if trace.Buy || trace.Short || !trace.Conflicted {
		t.Errorf("conflict not cancelled: %+v", trace)
	}
	if !trace.InjectedBuy || !trace.InjectedShort {
		t.Error("pre-cancellation diagnostics must survive")
	}

	trace = types.SignalTrace{InjectedBuy: true}
	strategy.Resolve(&trace)
	if !trace.Buy || trace.Short || trace.Conflicted {
		t.Errorf("single-sided signal mangled: %+v", trace)
	}
}

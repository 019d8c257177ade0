// Package main provides the replay entry point for the decision engine:
// it loads a settings bag, builds a synthetic feature stream per
// instrument, and replays every instrument through the decision core in
// parallel.
package main

import (
	"flag"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/internal/events"
	"github.com/signalcraft/decision-engine/internal/metrics"
	"github.com/signalcraft/decision-engine/internal/replay"
	"github.com/signalcraft/decision-engine/pkg/types"
)

func main() {
	configPath := flag.String("config", "", "Settings file (YAML or JSON); empty uses defaults")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides settings")
	symbols := flag.String("symbols", "BTCUSDT,ETHUSDT", "Comma-separated instrument list")
	bars := flag.Int("bars", 500, "Synthetic bars per instrument")
	seed := flag.Int64("seed", 42, "Feed seed; identical seeds replay identically")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}

	logger := setupLogger(level)
	defer logger.Sync()

	logger.Info("starting decision engine replay",
		zap.String("mode", string(cfg.Engine.Mode)),
		zap.String("preset", string(cfg.Preset.Name)),
		zap.Int("bars", *bars),
		zap.Int64("seed", *seed),
	)

	m := metrics.New()
	bus := events.NewBus(logger)
	bus.Subscribe(events.EventTypeSignal, func(e events.Event) error {
		ev := e.(events.SignalEvent)
		logger.Info("signal",
			zap.String("symbol", ev.Symbol),
			zap.String("action", string(ev.Action)),
			zap.Int("bar", ev.BarIndex),
		)
		return nil
	})
	bus.Subscribe(events.EventTypeExit, func(e events.Event) error {
		ev := e.(events.ExitEvent)
		logger.Info("exit",
			zap.String("symbol", ev.Symbol),
			zap.String("action", string(ev.Action)),
			zap.String("reason", ev.Reason),
			zap.Int("bar", ev.BarIndex),
		)
		return nil
	})

	runner := replay.NewRunner(logger, &cfg, m, bus)
	fleet := replay.NewFleet(logger, &cfg, runner)

	series := make(map[string][]replay.BarInput)
	for i, symbol := range strings.Split(*symbols, ",") {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}
		series[symbol] = syntheticSeries(*bars, *seed+int64(i))
	}

	results, err := fleet.Run(series)
	if err != nil {
		logger.Fatal("replay failed", zap.Error(err))
	}

	for symbol, res := range results {
		logger.Info("summary",
			zap.String("symbol", symbol),
			zap.String("runId", res.RunID),
			zap.Int("entries", res.Entries),
			zap.Int("exits", res.Exits),
		)
	}
	published, errors := bus.Stats()
	logger.Info("bus stats", zap.Int64("published", published), zap.Int64("errors", errors))
}

// syntheticSeries builds a deterministic feature stream: a random walk
// with periodic structural flips, ChoCH events on the flips, and a
// forecast that loosely tracks direction. It only exists so the replay
// can run without a market-data collaborator.
func syntheticSeries(n int, seed int64) []replay.BarInput {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	price := 100.0
	bias := 1
	out := make([]replay.BarInput, 0, n)

	for i := 0; i < n; i++ {
		drift := 0.1 * float64(bias)
		move := drift + rng.NormFloat64()*0.6
		open := price
		price += move
		high := math.Max(open, price) + rng.Float64()*0.3
		low := math.Min(open, price) - rng.Float64()*0.3

		flip := i > 0 && i%60 == 0
		if flip {
			bias = -bias
		}

		probLong := 0.5 + 0.3*float64(bias)*rng.Float64()
		in := replay.BarInput{
			Bar: types.Bar{
				Timestamp: start.Add(time.Duration(i) * time.Hour),
				Open:      decimal.NewFromFloat(open),
				High:      decimal.NewFromFloat(high),
				Low:       decimal.NewFromFloat(low),
				Close:     decimal.NewFromFloat(price),
				Volume:    decimal.NewFromFloat(1000 + rng.Float64()*500),
			},
			Signals: types.BarSignals{
				Structure: types.StructureSignals{
					ChoCHLong:  flip && bias > 0,
					ChoCHShort: flip && bias < 0,
					StructBias: bias,
				},
				Triggers: types.TriggerSignals{
					HybridLongSetup:  bias > 0,
					HybridShortSetup: bias < 0,
					TriggerLong:      bias > 0 && rng.Float64() < 0.15,
					TriggerShort:     bias < 0 && rng.Float64() < 0.15,
				},
				Gates: types.GateSignals{
					MTFOK:         true,
					MacroBullOK:   bias > 0,
					MacroBearOK:   bias < 0,
					DrawdownOK:    true,
					VolumeOK:      rng.Float64() < 0.7,
					InSession:     true,
					ReliabilityOK: true,
					EvidenceOK:    true,
					EvalOK:        true,
					DecisionOK:    rng.Float64() < 0.8,
				},
				Risk: types.RiskSignals{
					ExitHit:    rng.Float64() < 0.03,
					ExitReason: types.ExitReasonSL,
				},
				Impulse:           math.Abs(move) > 1.2,
				RegimeCandidate:   candidateRegime(move),
				ShockIntensityPct: math.Abs(move) / open * 100,
			},
			Forecast: types.Forecast{
				Confidence: 0.4 + rng.Float64()*0.5,
				ProbLong:   probLong,
				ProbShort:  1 - probLong,
			},
		}
		out = append(out, in)
	}
	return out
}

func candidateRegime(move float64) types.RegimeState {
	switch {
	case math.Abs(move) > 1.5:
		return types.RegimeVolShock
	case math.Abs(move) > 0.8:
		return types.RegimeTrend
	case math.Abs(move) < 0.2:
		return types.RegimeRange
	default:
		return types.RegimeChop
	}
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

// Package replay drives decision engines over recorded bar series. One
// Runner handles a single instrument; a Fleet fans independent instruments
// out over a worker pool, which is safe because engines share no state.
package replay

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/internal/decision"
	"github.com/signalcraft/decision-engine/internal/events"
	"github.com/signalcraft/decision-engine/internal/metrics"
	"github.com/signalcraft/decision-engine/internal/workers"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// BarInput is one bar with its precomputed features and forecast.
type BarInput struct {
	Bar      types.Bar
	Signals  types.BarSignals
	Forecast types.Forecast
}

// Result summarizes one instrument replay.
type Result struct {
	RunID   string
	Symbol  string
	Results []*types.BarResult

	Entries int
	Exits   int
}

// Runner replays one instrument at a time.
type Runner struct {
	logger  *zap.Logger
	cfg     *config.Settings
	metrics *metrics.Metrics
	bus     *events.Bus
}

// NewRunner creates a runner. Metrics and bus may be nil when no
// collaborator consumes them.
func NewRunner(logger *zap.Logger, cfg *config.Settings, m *metrics.Metrics, bus *events.Bus) *Runner {
	return &Runner{logger: logger, cfg: cfg, metrics: m, bus: bus}
}

// Run feeds the series through a fresh engine, bar by bar. The replay is
// deterministic: identical inputs always produce an identical result
// sequence.
func (r *Runner) Run(symbol string, series []BarInput) (*Result, error) {
	eng, err := decision.New(r.logger.With(zap.String("symbol", symbol)), r.cfg)
	if err != nil {
		return nil, err
	}

	out := &Result{
		RunID:   uuid.NewString(),
		Symbol:  symbol,
		Results: make([]*types.BarResult, 0, len(series)),
	}

	prevRegime := types.RegimeOff
	for i, in := range series {
		res, err := eng.ProcessBar(in.Bar, in.Signals, in.Forecast)
		if err != nil {
			return nil, fmt.Errorf("replay %s bar %d: %w", symbol, i, err)
		}
		out.Results = append(out.Results, res)

		if r.metrics != nil {
			r.metrics.Observe(symbol, res, prevRegime)
		}
		r.publish(symbol, in, res, prevRegime)
		prevRegime = res.Regime.State

		switch res.Action {
		case types.ActionBuy, types.ActionShort:
			out.Entries++
		case types.ActionExit, types.ActionCover:
			out.Exits++
		}
	}

	r.logger.Info("replay finished",
		zap.String("symbol", symbol),
		zap.String("runId", out.RunID),
		zap.Int("bars", len(series)),
		zap.Int("entries", out.Entries),
		zap.Int("exits", out.Exits),
	)
	return out, nil
}

func (r *Runner) publish(symbol string, in BarInput, res *types.BarResult, prevRegime types.RegimeState) {
	if r.bus == nil {
		return
	}

	base := func(t events.EventType) events.BaseEvent {
		return events.BaseEvent{Type: t, Symbol: symbol, Timestamp: in.Bar.Timestamp}
	}

	switch res.Action {
	case types.ActionBuy, types.ActionShort:
		r.bus.Publish(events.SignalEvent{
			BaseEvent:  base(events.EventTypeSignal),
			Action:     res.Action,
			BarIndex:   res.BarIndex,
			Confidence: in.Forecast.Confidence,
		})
	case types.ActionExit, types.ActionCover:
		r.bus.Publish(events.ExitEvent{
			BaseEvent: base(events.EventTypeExit),
			Action:    res.Action,
			BarIndex:  res.BarIndex,
			Reason:    res.Exit.Reason,
		})
	}

	if res.Regime.State != prevRegime {
		r.bus.Publish(events.RegimeChangeEvent{
			BaseEvent: base(events.EventTypeRegimeChange),
			From:      prevRegime,
			To:        res.Regime.State,
			BarIndex:  res.BarIndex,
		})
	}
	if res.Signals.Conflicted {
		r.bus.Publish(events.ConflictEvent{
			BaseEvent: base(events.EventTypeConflict),
			BarIndex:  res.BarIndex,
		})
	}
}

// Fleet replays many instruments in parallel.
type Fleet struct {
	logger *zap.Logger
	cfg    *config.Settings
	runner *Runner
}

// NewFleet creates a fleet sharing one runner configuration.
func NewFleet(logger *zap.Logger, cfg *config.Settings, runner *Runner) *Fleet {
	return &Fleet{logger: logger, cfg: cfg, runner: runner}
}

// Run replays every instrument over the worker pool and returns results
// keyed by symbol. The first error wins; completed instruments are still
// returned.
func (f *Fleet) Run(series map[string][]BarInput) (map[string]*Result, error) {
	pool := workers.NewPool(f.logger, f.cfg.Replay.Workers, len(series))

	var mu sync.Mutex
	results := make(map[string]*Result, len(series))
	var firstErr error

	for symbol, bars := range series {
		symbol, bars := symbol, bars
		pool.Submit(workers.TaskFunc(func() error {
			res, err := f.runner.Run(symbol, bars)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return err
			}
			results[symbol] = res
			return nil
		}))
	}

	pool.Close()
	return results, firstErr
}

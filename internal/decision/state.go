package decision

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/signalcraft/decision-engine/pkg/types"
)

// EngineState is the mutable per-instrument state. It is owned exclusively
// by one Engine, created once per tradable instrument, mutated on every
// bar for the life of the run, and never implicitly reset.
type EngineState struct {
	Position types.Position
	// LastSignalBar is the index of the last qualifying signal bar, -1
	// before the first one.
	LastSignalBar int
	// BarsHeld counts completed bars since entry: 0 at the end of the
	// entry bar, incrementing while the position is held, 0 while flat.
	BarsHeld   int
	EntryPrice decimal.Decimal

	Regime types.RegimeSnapshot

	// One bar of memory for the strict alert delay.
	PrevBuyEvent   bool
	PrevShortEvent bool

	// BarIndex is the index the next bar will be assigned.
	BarIndex    int
	LastBarTime time.Time
}

// NewEngineState returns the initial state for a fresh instrument.
func NewEngineState() EngineState {
	return EngineState{
		Position:      types.PositionFlat,
		LastSignalBar: -1,
		Regime:        types.RegimeSnapshot{State: types.RegimeOff},
	}
}

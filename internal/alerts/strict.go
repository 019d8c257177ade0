// Package alerts maps internal engine events onto externally-visible
// alert conditions, applying the optional one-bar strict delay to entry
// alerts.
package alerts

import (
	"github.com/signalcraft/decision-engine/internal/config"
	"github.com/signalcraft/decision-engine/pkg/types"
)

// Input carries the per-bar inputs of the alert layer.
type Input struct {
	// DidBuy/DidShort/DidExit/DidCover are the internal events of this
	// bar; PrevBuy/PrevShort the one-bar memory of entry events.
	DidBuy, DidShort, DidExit, DidCover bool
	PrevBuy, PrevShort                  bool
	Signals                             *types.BarSignals
}

// Compute returns the alert conditions for one bar.
//
// With strict mode active (and the open reversal window closed), entry
// alerts fire one bar after the internal event and only when the
// confirmation flags hold on the delayed bar. Exit and cover alerts always
// fire on the same bar. With strict mode off, every alert equals its
// same-bar internal event.
func Compute(cfg *config.Settings, in Input) types.AlertFlags {
	strict := cfg.Alert.UseStrictMode && !in.Signals.Gates.OpenReversalWindow

	out := types.AlertFlags{
		StrictEnabled: strict,
		Exit:          in.DidExit,
		Cover:         in.DidCover,
	}
	if strict {
		out.Buy = in.PrevBuy && in.Signals.ConfirmLong
		out.Short = in.PrevShort && in.Signals.ConfirmShort
	} else {
		out.Buy = in.DidBuy
		out.Short = in.DidShort
	}
	return out
}

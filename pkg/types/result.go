package types

import "github.com/shopspring/decimal"

// Gates is the entry-guard evaluation for one bar.
type Gates struct {
	CooldownOK       bool `json:"cooldownOk"`
	DecisionFinal    bool `json:"decisionFinal"`
	AllowEntry       bool `json:"allowEntry"`
	AllowRescueLong  bool `json:"allowRescueLong"`
	AllowRescueShort bool `json:"allowRescueShort"`
	AllowRevBypass   bool `json:"allowRevBypass"`
	// EntryEligible is true when the position is flat and at least one
	// entry path is open.
	EntryEligible bool `json:"entryEligible"`
}

// EffectiveControls holds the tuned per-bar control values after preset,
// regime and confidence adjustments.
type EffectiveControls struct {
	CooldownBars        int     `json:"cooldownBars"`
	ChoCHProbFloor      float64 `json:"chochProbFloor"`
	AbstainOverrideConf float64 `json:"abstainOverrideConf"`
}

// RegimeSnapshot is the hysteresis-filtered regime state after this bar.
type RegimeSnapshot struct {
	State    RegimeState `json:"state"`
	HoldBars int         `json:"holdBars"`
}

// SignalTrace records every stage of signal generation for one bar.
type SignalTrace struct {
	// RawBuy/RawShort are the engine outputs before reversal injection.
	RawBuy   bool `json:"rawBuy"`
	RawShort bool `json:"rawShort"`
	// RevBuy/RevShort are the global reversal signals.
	RevBuy   bool `json:"revBuy"`
	RevShort bool `json:"revShort"`
	// InjectedBuy/InjectedShort are the post-injection values retained
	// as diagnostics when conflict resolution cancels them.
	InjectedBuy   bool `json:"injectedBuy"`
	InjectedShort bool `json:"injectedShort"`
	// Buy/Short are the final signals after conflict resolution.
	Buy        bool `json:"buy"`
	Short      bool `json:"short"`
	Conflicted bool `json:"conflicted"`
}

// ExitDecision is the exit evaluation for one bar.
type ExitDecision struct {
	Triggered bool   `json:"triggered"`
	Reason    string `json:"reason,omitempty"`
	RiskHit   bool   `json:"riskHit"`
	StructHit bool   `json:"structHit"`
	StaleHit  bool   `json:"staleHit"`
}

// AlertFlags are the externally-alertable conditions after strict-delay
// processing. These, not the internal event flags, are what alert-dispatch
// collaborators must act on.
type AlertFlags struct {
	StrictEnabled bool `json:"strictEnabled"`
	Buy           bool `json:"buy"`
	Short         bool `json:"short"`
	Exit          bool `json:"exit"`
	Cover         bool `json:"cover"`
}

// BarResult is the sole contract surface toward label-rendering,
// alert-dispatch and logging collaborators. It exposes the action taken
// plus every intermediate diagnostic needed to test the gating layers.
type BarResult struct {
	BarIndex       int             `json:"barIndex"`
	Action         Action          `json:"action"`
	PositionBefore Position        `json:"positionBefore"`
	PositionAfter  Position        `json:"positionAfter"`
	BarsHeld       int             `json:"barsHeld"`
	EntryPrice     decimal.Decimal `json:"entryPrice"`

	Gates    Gates             `json:"gates"`
	Signals  SignalTrace       `json:"signals"`
	Exit     ExitDecision      `json:"exit"`
	Controls EffectiveControls `json:"controls"`
	Regime   RegimeSnapshot    `json:"regime"`
	Alerts   AlertFlags        `json:"alerts"`
}

// DidBuy reports whether a long entry was executed on this bar.
func (r *BarResult) DidBuy() bool { return r.Action == ActionBuy }

// DidShort reports whether a short entry was executed on this bar.
func (r *BarResult) DidShort() bool { return r.Action == ActionShort }

// DidExit reports whether a long position was closed on this bar.
func (r *BarResult) DidExit() bool { return r.Action == ActionExit }

// DidCover reports whether a short position was closed on this bar.
func (r *BarResult) DidCover() bool { return r.Action == ActionCover }

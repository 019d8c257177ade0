// Package types provides shared type definitions for the decision engine.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents the side of the currently held position.
type Position int

const (
	PositionShort Position = -1
	PositionFlat  Position = 0
	PositionLong  Position = 1
)

// String returns a human-readable position name.
func (p Position) String() string {
	switch p {
	case PositionLong:
		return "long"
	case PositionShort:
		return "short"
	default:
		return "flat"
	}
}

// Action represents the state transition taken on a bar.
type Action string

const (
	ActionNone  Action = "none"
	ActionBuy   Action = "buy"
	ActionShort Action = "short"
	ActionExit  Action = "exit"
	ActionCover Action = "cover"
)

// EngineMode selects one of the four entry-trigger engines.
type EngineMode string

const (
	EngineHybrid        EngineMode = "hybrid"
	EngineBreakout      EngineMode = "breakout"
	EngineTrendPullback EngineMode = "trend_pullback"
	EngineLoose         EngineMode = "loose"
)

// Preset names a cooldown tuning preset.
type Preset string

const (
	PresetManual   Preset = "manual"
	PresetScalp    Preset = "scalp"
	PresetIntraday Preset = "intraday"
	PresetSwing    Preset = "swing"
)

// RegimeState represents a market regime classification.
type RegimeState string

const (
	RegimeOff      RegimeState = "off"
	RegimeTrend    RegimeState = "trend"
	RegimeRange    RegimeState = "range"
	RegimeChop     RegimeState = "chop"
	RegimeVolShock RegimeState = "vol_shock"
)

// Exit reason codes carried on BarResult. Risk reasons (SL/TP/trail) come
// from the feature layer verbatim; ChoCH and Stalemate are assigned here.
const (
	ExitReasonSL        = "SL"
	ExitReasonTP        = "TP"
	ExitReasonChoCH     = "ChoCH"
	ExitReasonStalemate = "Stalemate"
)

// Bar represents a single confirmed candlestick.
type Bar struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// StructureSignals carries the structural features for one bar.
type StructureSignals struct {
	ChoCHLong    bool `json:"chochLong"`
	ChoCHShort   bool `json:"chochShort"`
	BullishBreak bool `json:"bullishBreak"`
	BearishBreak bool `json:"bearishBreak"`
	// StructBias is the prevailing structural state: +1 bullish,
	// -1 bearish, 0 neutral.
	StructBias int `json:"structBias"`
}

// TriggerSignals carries the per-engine trigger features for one bar.
type TriggerSignals struct {
	HybridLongSetup  bool `json:"hybridLongSetup"`
	HybridShortSetup bool `json:"hybridShortSetup"`
	TriggerLong      bool `json:"triggerLong"`
	TriggerShort     bool `json:"triggerShort"`
	TrendUp          bool `json:"trendUp"`
	TrendDown        bool `json:"trendDown"`
	BreakoutLong     bool `json:"breakoutLong"`
	BreakoutShort    bool `json:"breakoutShort"`
	TrendFlipLong    bool `json:"trendFlipLong"`
	TrendFlipShort   bool `json:"trendFlipShort"`
	ReclaimLong      bool `json:"reclaimLong"`
	ReclaimShort     bool `json:"reclaimShort"`
	EMACrossLong     bool `json:"emaCrossLong"`
	EMACrossShort    bool `json:"emaCrossShort"`
}

// GateSignals carries the precomputed gate features for one bar.
type GateSignals struct {
	MTFOK              bool `json:"mtfOk"`
	MacroBullOK        bool `json:"macroBullOk"`
	MacroBearOK        bool `json:"macroBearOk"`
	DrawdownOK         bool `json:"drawdownOk"`
	VolumeOK           bool `json:"volumeOk"`
	InSession          bool `json:"inSession"`
	NearClose          bool `json:"nearClose"`
	ReliabilityOK      bool `json:"reliabilityOk"`
	EvidenceOK         bool `json:"evidenceOk"`
	EvalOK             bool `json:"evalOk"`
	AbstainGate        bool `json:"abstainGate"`
	DecisionOK         bool `json:"decisionOk"`
	OpenReversalWindow bool `json:"openReversalWindow"`
}

// RiskSignals carries the risk-exit and staleness features for one bar.
type RiskSignals struct {
	ExitHit    bool   `json:"exitHit"`
	ExitReason string `json:"exitReason"`
	Stale      bool   `json:"stale"`
}

// BarSignals is the complete per-bar feature set supplied by the
// feature-computation collaborator. All fields are already confirmed for
// the bar being processed; the core never looks ahead.
type BarSignals struct {
	Structure StructureSignals `json:"structure"`
	Triggers  TriggerSignals   `json:"triggers"`
	Gates     GateSignals      `json:"gates"`
	Risk      RiskSignals      `json:"risk"`
	Impulse   bool             `json:"impulse"`

	// Regime feed. RegimeCandidate may be RegimeOff when the upstream
	// classifier produced nothing for this bar.
	RegimeCandidate   RegimeState `json:"regimeCandidate"`
	ShockIntensityPct float64     `json:"shockIntensityPct"`

	// Auxiliary confirmation flags evaluated on the delayed bar by the
	// strict alert layer.
	ConfirmLong  bool `json:"confirmLong"`
	ConfirmShort bool `json:"confirmShort"`
}

// Forecast carries the forecast-module outputs for one bar. NaN marks a
// missing value and fails every gate it participates in.
type Forecast struct {
	Confidence float64 `json:"confidence"`
	ProbLong   float64 `json:"probLong"`
	ProbShort  float64 `json:"probShort"`
}

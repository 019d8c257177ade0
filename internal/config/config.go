// Package config provides the validated, immutable settings bag for one
// engine run. Range validation happens here, at construction time; the
// decision core treats a Settings value it receives as trusted and never
// re-checks it.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/signalcraft/decision-engine/pkg/types"
)

// EntrySettings gates the entry-evaluation block.
type EntrySettings struct {
	// CooldownBars is the base minimum bar spacing after a qualifying
	// signal. Preset, regime and confidence tuning derive the effective
	// value from it.
	CooldownBars int `mapstructure:"cooldown_bars" validate:"min=0,max=500"`

	// MinTrust is the confidence floor of the base directional gate.
	MinTrust float64 `mapstructure:"min_trust" validate:"min=0,max=1"`

	// UseEffectiveAbstainOverride lets a high-confidence bar override an
	// abstaining decision flag.
	UseEffectiveAbstainOverride bool    `mapstructure:"use_effective_abstain_override"`
	AbstainOverrideConf         float64 `mapstructure:"abstain_override_conf" validate:"min=0,max=1"`
}

// EngineSettings selects and parameterizes the signal engine.
type EngineSettings struct {
	Mode types.EngineMode `mapstructure:"mode" validate:"oneof=hybrid breakout trend_pullback loose"`

	// ChoCHProbFloor is the base probability floor applied by the ChoCH
	// filter when an entry opposes structure or coincides with a ChoCH
	// event. Regime tuning shifts it within [0.34, 0.95].
	ChoCHProbFloor float64 `mapstructure:"choch_prob_floor" validate:"min=0,max=1"`

	// RequireChoCHVolume additionally demands volume confirmation inside
	// the ChoCH filter.
	RequireChoCHVolume bool `mapstructure:"require_choch_volume"`
}

// ReversalSettings controls the global reversal signal and its bypasses.
type ReversalSettings struct {
	// AllowNeuralReversals enables both the global reversal signal and
	// the ChoCH entry bypass.
	AllowNeuralReversals bool `mapstructure:"allow_neural_reversals"`

	// RevMinProb is the directional probability the reversal must carry
	// unless bypassed by the open window or an impulse bar.
	RevMinProb float64 `mapstructure:"rev_min_prob" validate:"min=0,max=1"`
}

// ExitSettings parameterizes the exit evaluator.
type ExitSettings struct {
	// GraceBars is the minimum holding period before a structural-break
	// exit is honored. ChoCH exits use min(2, GraceBars). Risk and stale
	// exits are never graced.
	GraceBars int `mapstructure:"grace_bars" validate:"min=0,max=500"`

	// ConfTP suppresses a TP risk exit while confidence stays at or
	// above it, letting a high-confidence winner run. A value of exactly
	// 1.0 makes TP exits unreachable unless confidence reaches 1.0; that
	// is intended threshold semantics, not a bug.
	ConfTP float64 `mapstructure:"conf_tp" validate:"min=0,max=1"`

	// ConfChoCH is the opposing-direction probability floor a structural
	// exit from a long must clear.
	ConfChoCH float64 `mapstructure:"conf_choch" validate:"min=0,max=1"`
}

// RegimeSettings parameterizes the hysteresis classifier and auto-tuning.
type RegimeSettings struct {
	Enabled  bool `mapstructure:"enabled"`
	AutoTune bool `mapstructure:"auto_tune"`

	// MinHoldBars is the hysteresis hold before a non-shock state change
	// is accepted.
	MinHoldBars int `mapstructure:"min_hold_bars" validate:"min=0,max=500"`

	// ShockThresholdPct declares VOL_SHOCK; the state releases only once
	// observed intensity drops below ShockThresholdPct-ShockReleaseDelta.
	ShockThresholdPct float64 `mapstructure:"shock_threshold_pct" validate:"min=0"`
	ShockReleaseDelta float64 `mapstructure:"shock_release_delta" validate:"min=0"`
}

// PresetSettings maps trading presets onto cooldown overrides.
type PresetSettings struct {
	Name        types.Preset `mapstructure:"name" validate:"oneof=manual scalp intraday swing"`
	UseCooldown bool         `mapstructure:"use_cooldown"`

	ScalpCooldown    int `mapstructure:"scalp_cooldown" validate:"min=0,max=500"`
	IntradayCooldown int `mapstructure:"intraday_cooldown" validate:"min=0,max=500"`
	SwingCooldown    int `mapstructure:"swing_cooldown" validate:"min=0,max=500"`
}

// AlertSettings parameterizes the strict alert layer.
type AlertSettings struct {
	UseStrictMode bool `mapstructure:"use_strict_mode"`
}

// ReplaySettings parameterizes the replay runner, not the core.
type ReplaySettings struct {
	Workers    int `mapstructure:"workers" validate:"min=1,max=256"`
	BufferSize int `mapstructure:"buffer_size" validate:"min=1"`
}

// Settings is the full configuration bag for one run. It is constructed
// once, validated once, and never mutated afterwards.
type Settings struct {
	Symbol   string `mapstructure:"symbol"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	Entry    EntrySettings    `mapstructure:"entry"`
	Engine   EngineSettings   `mapstructure:"engine"`
	Reversal ReversalSettings `mapstructure:"reversal"`
	Exit     ExitSettings     `mapstructure:"exit"`
	Regime   RegimeSettings   `mapstructure:"regime"`
	Preset   PresetSettings   `mapstructure:"preset"`
	Alert    AlertSettings    `mapstructure:"alert"`
	Replay   ReplaySettings   `mapstructure:"replay"`
}

// DefaultSettings returns the reference configuration.
func DefaultSettings() Settings {
	return Settings{
		Symbol:   "BTCUSDT",
		LogLevel: "info",
		Entry: EntrySettings{
			CooldownBars:                5,
			MinTrust:                    0.55,
			UseEffectiveAbstainOverride: true,
			AbstainOverrideConf:         0.70,
		},
		Engine: EngineSettings{
			Mode:               types.EngineHybrid,
			ChoCHProbFloor:     0.55,
			RequireChoCHVolume: false,
		},
		Reversal: ReversalSettings{
			AllowNeuralReversals: true,
			RevMinProb:           0.60,
		},
		Exit: ExitSettings{
			GraceBars: 5,
			ConfTP:    1.0,
			ConfChoCH: 0.50,
		},
		Regime: RegimeSettings{
			Enabled:           true,
			AutoTune:          true,
			MinHoldBars:       2,
			ShockThresholdPct: 4.0,
			ShockReleaseDelta: 1.0,
		},
		Preset: PresetSettings{
			Name:             types.PresetManual,
			UseCooldown:      false,
			ScalpCooldown:    2,
			IntradayCooldown: 4,
			SwingCooldown:    8,
		},
		Alert:  AlertSettings{UseStrictMode: false},
		Replay: ReplaySettings{Workers: 4, BufferSize: 1024},
	}
}

var validate = validator.New()

// Validate checks every range constraint on the bag.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}
	return nil
}

// Load reads settings from the given file path (YAML or JSON), overlays
// them on the defaults, and validates the result. An empty path returns
// the validated defaults.
func Load(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, s.Validate()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return s, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

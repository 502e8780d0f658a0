// Package config loads, validates and converts the colorizer settings.
package config

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("rainbow.config")

// Config holds every user-facing setting. The same schema is read from the
// settings file and from LSP client settings.
type Config struct {
	ColorMode                string            `mapstructure:"color_mode" yaml:"color_mode"`
	ForceUniqueOpeningColor  bool              `mapstructure:"force_unique_opening_color" yaml:"force_unique_opening_color"`
	ForceIterationColorCycle bool              `mapstructure:"force_iteration_color_cycle" yaml:"force_iteration_color_cycle"`
	ContextualParsing        bool              `mapstructure:"contextual_parsing" yaml:"contextual_parsing"`
	Timeout                  int               `mapstructure:"timeout" yaml:"timeout"`             // milliseconds
	ScopeTimeout             int               `mapstructure:"scope_timeout" yaml:"scope_timeout"` // milliseconds
	Consecutive              ConsecutiveConfig `mapstructure:"consecutive" yaml:"consecutive"`
	Independent              []PairConfig      `mapstructure:"independent" yaml:"independent"`
	Scope                    ScopeConfig       `mapstructure:"scope" yaml:"scope"`
	Languages                []LanguageConfig  `mapstructure:"languages" yaml:"languages,omitempty"`
}

// ConsecutiveConfig lists the bracket pairs sharing one color cycle.
type ConsecutiveConfig struct {
	Pairs       []string `mapstructure:"pairs" yaml:"pairs"` // two runes each, e.g. "()"
	Colors      []string `mapstructure:"colors" yaml:"colors"`
	OrphanColor string   `mapstructure:"orphan_color" yaml:"orphan_color"`
}

// PairConfig is one bracket pair with its own color cycle.
type PairConfig struct {
	Pair        string   `mapstructure:"pair" yaml:"pair"`
	Colors      []string `mapstructure:"colors" yaml:"colors"`
	OrphanColor string   `mapstructure:"orphan_color" yaml:"orphan_color"`
}

type ScopeConfig struct {
	HighlightActiveScope   bool   `mapstructure:"highlight_active_scope" yaml:"highlight_active_scope"`
	ShowInGutter           bool   `mapstructure:"show_in_gutter" yaml:"show_in_gutter"`
	ShowInRuler            bool   `mapstructure:"show_in_ruler" yaml:"show_in_ruler"`
	ShowHorizontalLine     bool   `mapstructure:"show_horizontal_line" yaml:"show_horizontal_line"`
	ShowVerticalLine       bool   `mapstructure:"show_vertical_line" yaml:"show_vertical_line"`
	HorizontalLinePosition string `mapstructure:"horizontal_line_position" yaml:"horizontal_line_position"` // "above", "below" or "both"
}

// LanguageConfig adds a language or replaces a built-in one of the same name.
type LanguageConfig struct {
	Name    string               `mapstructure:"name" yaml:"name"`
	Aliases []string             `mapstructure:"aliases" yaml:"aliases,omitempty"`
	Scopes  []ScopePatternConfig `mapstructure:"scopes" yaml:"scopes"`
}

type ScopePatternConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Opener   string `mapstructure:"opener" yaml:"opener"`
	Closer   string `mapstructure:"closer" yaml:"closer,omitempty"` // empty: ends with the line
	Escape   string `mapstructure:"escape" yaml:"escape,omitempty"`
	Nestable bool   `mapstructure:"nestable" yaml:"nestable,omitempty"`

	MustMatchAtOffset         []OffsetConfig `mapstructure:"must_match_at_offset" yaml:"must_match_at_offset,omitempty"`
	MustNotMatchAtOffset      []OffsetConfig `mapstructure:"must_not_match_at_offset" yaml:"must_not_match_at_offset,omitempty"`
	CloseMustMatchAtOffset    []OffsetConfig `mapstructure:"close_must_match_at_offset" yaml:"close_must_match_at_offset,omitempty"`
	CloseMustNotMatchAtOffset []OffsetConfig `mapstructure:"close_must_not_match_at_offset" yaml:"close_must_not_match_at_offset,omitempty"`
}

type OffsetConfig struct {
	Offset int    `mapstructure:"offset" yaml:"offset"`
	Text   string `mapstructure:"text" yaml:"text"`
}

// Defaults returns the configuration used when nothing is configured.
func Defaults() Config {
	return Config{
		ColorMode:         "consecutive",
		ContextualParsing: true,
		Timeout:           200,
		ScopeTimeout:      100,
		Consecutive: ConsecutiveConfig{
			Pairs:       []string{"()", "[]", "{}"},
			Colors:      []string{"Gold", "Orchid", "LightSkyBlue"},
			OrphanColor: "Red",
		},
		Independent: []PairConfig{
			{Pair: "()", Colors: []string{"Gold", "Orchid", "LightSkyBlue"}, OrphanColor: "Red"},
			{Pair: "[]", Colors: []string{"Gold", "Orchid", "LightSkyBlue"}, OrphanColor: "Red"},
			{Pair: "{}", Colors: []string{"Gold", "Orchid", "LightSkyBlue"}, OrphanColor: "Red"},
		},
		Scope: ScopeConfig{
			HighlightActiveScope:   true,
			ShowInRuler:            true,
			ShowHorizontalLine:     true,
			ShowVerticalLine:       true,
			HorizontalLinePosition: "both",
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LocalFile is looked up in the working directory before the user config.
const LocalFile = ".rainbow.yaml"

// Loader reads the settings file and merges client settings over it. The
// client settings survive reloads of the file.
type Loader struct {
	path      string
	overrides map[string]any
	used      string
}

// NewLoader returns a loader for path. An empty path searches LocalFile
// and then ~/.config/rainbow/config.yaml; a missing file is not an error
// unless path was given explicitly.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// SetOverrides replaces the client settings. Both {"rainbow": {...}} and
// the bare settings object are accepted; anything else clears them.
func (l *Loader) SetOverrides(settings any) {
	m, ok := settings.(map[string]any)
	if !ok {
		l.overrides = nil
		return
	}
	if inner, ok := m["rainbow"].(map[string]any); ok {
		m = inner
	}
	l.overrides = m
}

// ConfigFile is the settings file read by the last Load, if any.
func (l *Loader) ConfigFile() string {
	return l.used
}

// Load reads the configuration and validates it. The returned Config is
// usable for display even when validation fails.
func (l *Loader) Load() (Config, error) {
	v := viper.New()
	registerDefaults(v)
	v.SetConfigType("yaml")

	explicit := l.path != ""
	switch {
	case explicit:
		v.SetConfigFile(l.path)
	case fileExists(LocalFile):
		v.SetConfigFile(LocalFile)
	default:
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "rainbow"))
		}
		v.SetConfigName("config")
	}

	l.used = ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Defaults(), &Error{Field: "file", Message: err.Error()}
		}
		log.Debugf("no settings file, using defaults")
	} else {
		l.used = v.ConfigFileUsed()
		log.Infof("read settings from %s", l.used)
	}

	if len(l.overrides) > 0 {
		if err := v.MergeConfigMap(l.overrides); err != nil {
			return Defaults(), &Error{Field: "settings", Message: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Defaults(), &Error{Field: "settings", Message: err.Error()}
	}
	return cfg, Validate(cfg)
}

func registerDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("color_mode", d.ColorMode)
	v.SetDefault("force_unique_opening_color", d.ForceUniqueOpeningColor)
	v.SetDefault("force_iteration_color_cycle", d.ForceIterationColorCycle)
	v.SetDefault("contextual_parsing", d.ContextualParsing)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("scope_timeout", d.ScopeTimeout)
	v.SetDefault("consecutive.pairs", d.Consecutive.Pairs)
	v.SetDefault("consecutive.colors", d.Consecutive.Colors)
	v.SetDefault("consecutive.orphan_color", d.Consecutive.OrphanColor)
	v.SetDefault("independent", d.Independent)
	v.SetDefault("scope.highlight_active_scope", d.Scope.HighlightActiveScope)
	v.SetDefault("scope.show_in_gutter", d.Scope.ShowInGutter)
	v.SetDefault("scope.show_in_ruler", d.Scope.ShowInRuler)
	v.SetDefault("scope.show_horizontal_line", d.Scope.ShowHorizontalLine)
	v.SetDefault("scope.show_vertical_line", d.Scope.ShowVerticalLine)
	v.SetDefault("scope.horizontal_line_position", d.Scope.HorizontalLinePosition)
}

// Marshal renders c as YAML in the settings file format.
func Marshal(c Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

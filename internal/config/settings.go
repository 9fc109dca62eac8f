// Package config loads tiler's rule settings and environment options.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/mj1618/window-tiler/internal/model"
)

// DefaultInterval is used for rules that do not set an update rate.
const DefaultInterval = 400 * time.Millisecond

// Settings is the decoded settings file.
type Settings struct {
	Rules []model.LayoutRule
	// Path is the file the settings were read from.
	Path string
	// Defaults is true when no settings file existed.
	Defaults bool
}

// fileRule is the on-disk shape of a rule.
type fileRule struct {
	Process        string           `mapstructure:"process"`
	TitlePattern   string           `mapstructure:"title_pattern"`
	CaptureGroup   int              `mapstructure:"capture_group"`
	Size           model.Size       `mapstructure:"size"`
	HorizontalOnly bool             `mapstructure:"horizontal_only"`
	UpdateRate     model.UpdateRate `mapstructure:"update_rate"`
	AutoRun        bool             `mapstructure:"autorun"`
}

func (f fileRule) toRule() (model.LayoutRule, error) {
	interval := DefaultInterval
	if f.UpdateRate != (model.UpdateRate{}) {
		d, err := f.UpdateRate.Duration()
		if err != nil {
			return model.LayoutRule{}, err
		}
		interval = d
	}
	return model.LayoutRule{
		Process:        f.Process,
		TitlePattern:   f.TitlePattern,
		CaptureGroup:   f.CaptureGroup,
		Size:           f.Size,
		HorizontalOnly: f.HorizontalOnly,
		Interval:       interval,
		AutoRun:        f.AutoRun,
	}, nil
}

// DefaultRules are used when there is no settings file: the MEmu and
// LDPlayer emulator layouts.
func DefaultRules() []model.LayoutRule {
	emulator := func(process, pattern string) model.LayoutRule {
		return model.LayoutRule{
			Process:        process,
			TitlePattern:   pattern,
			CaptureGroup:   1,
			Size:           model.Size{Width: 480, Height: 816},
			HorizontalOnly: true,
			Interval:       DefaultInterval,
			AutoRun:        true,
		}
	}
	return []model.LayoutRule{
		emulator("Memu", `\((\d*)_\w*\)`),
		emulator("dnplayer", `(\d*)_\w*_MOMO`),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/tiler/settings.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "tiler", "settings.yaml")
}

// newViper reads only the file. Environment settings belong to Options.
func newViper(path string) *viper.Viper {
	if path == "" {
		path = DefaultPath()
	}
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	return v
}

// LoadSettings reads the settings file at path (DefaultPath if empty). A
// missing file, or one without a rules key, yields DefaultRules. Rule
// contents are not validated here; that happens when a rule starts.
func LoadSettings(path string) (Settings, error) {
	v := newViper(path)
	s := Settings{Path: v.ConfigFileUsed()}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			s.Rules = DefaultRules()
			s.Defaults = true
			return s, nil
		}
		return Settings{}, fmt.Errorf("read settings %s: %w", s.Path, err)
	}
	if !v.IsSet("rules") {
		s.Rules = DefaultRules()
		s.Defaults = true
		return s, nil
	}

	rules, err := decodeRules(v)
	if err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", s.Path, err)
	}
	s.Rules = rules
	return s, nil
}

func decodeRules(v *viper.Viper) ([]model.LayoutRule, error) {
	var raw []fileRule
	if err := v.UnmarshalKey("rules", &raw); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	rules := make([]model.LayoutRule, 0, len(raw))
	for i, f := range raw {
		r, err := f.toRule()
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, f.Process, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

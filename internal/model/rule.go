package model

import (
	"fmt"
	"strings"
	"time"
)

// Size is a window width and height in pixels.
type Size struct {
	Width  int `yaml:"width"  json:"width"  mapstructure:"width"`
	Height int `yaml:"height" json:"height" mapstructure:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// RuleKey identifies a rule for "is it active" purposes. Size, interval and
// the other settings are deliberately not part of it.
type RuleKey struct {
	Process      string
	TitlePattern string
}

func (k RuleKey) String() string {
	return k.Process + " /" + k.TitlePattern + "/"
}

// LayoutRule is a single tracked window configuration.
type LayoutRule struct {
	Process        string        `yaml:"process"         json:"process"`
	TitlePattern   string        `yaml:"title_pattern"   json:"title_pattern"`
	CaptureGroup   int           `yaml:"capture_group"   json:"capture_group"`
	Size           Size          `yaml:"size"            json:"size"`
	HorizontalOnly bool          `yaml:"horizontal_only" json:"horizontal_only"`
	Interval       time.Duration `yaml:"interval"        json:"interval"`
	AutoRun        bool          `yaml:"autorun"         json:"autorun"`
}

// Key returns the rule identity.
func (r LayoutRule) Key() RuleKey {
	return RuleKey{Process: r.Process, TitlePattern: r.TitlePattern}
}

// Eligible reports whether a window with the given bounds may be resized or
// tiled by this rule. Horizontal-only rules touch portrait windows only.
func (r LayoutRule) Eligible(b Bounds) bool {
	return !r.HorizontalOnly || b.Portrait()
}

// Validate checks the parts of the rule that do not depend on the pattern
// engine. Pattern and capture group checks live in the locator package.
func (r LayoutRule) Validate() error {
	if strings.TrimSpace(r.Process) == "" {
		return fmt.Errorf("process name is empty")
	}
	if r.CaptureGroup < 0 {
		return fmt.Errorf("capture group %d is negative", r.CaptureGroup)
	}
	if r.Size.Width <= 0 || r.Size.Height <= 0 {
		return fmt.Errorf("invalid size %s", r.Size)
	}
	if r.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", r.Interval)
	}
	return nil
}

// RateUnits is the unit of an UpdateRate.
type RateUnits string

const (
	RateMilliseconds RateUnits = "milliseconds"
	RateSeconds      RateUnits = "seconds"
	RateMinutes      RateUnits = "minutes"
)

// UpdateRate is the settings-file form of a re-assertion interval.
type UpdateRate struct {
	Units RateUnits `yaml:"units" json:"units" mapstructure:"units"`
	Value int64     `yaml:"value" json:"value" mapstructure:"value"`
}

// Duration converts the rate to a time.Duration.
func (u UpdateRate) Duration() (time.Duration, error) {
	switch RateUnits(strings.ToLower(string(u.Units))) {
	case RateMilliseconds, "ms":
		return time.Duration(u.Value) * time.Millisecond, nil
	case RateSeconds, "s":
		return time.Duration(u.Value) * time.Second, nil
	case RateMinutes, "m":
		return time.Duration(u.Value) * time.Minute, nil
	default:
		return 0, fmt.Errorf("unknown rate units %q (expected milliseconds, seconds, or minutes)", u.Units)
	}
}

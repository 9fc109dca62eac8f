package output

import (
	"github.com/mj1618/window-tiler/internal/model"
)

// MatchResult is the output of the `list` command.
type MatchResult struct {
	Process string                `yaml:"process"           json:"process"`
	Pattern string                `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Group   int                   `yaml:"group"             json:"group"`
	TS      int64                 `yaml:"ts"                json:"ts"`
	Windows []model.MatchedWindow `yaml:"windows"           json:"windows"`
}

// RuleInfo describes one configured rule for the `rules` command.
type RuleInfo struct {
	Rule   model.LayoutRule `yaml:"rule"             json:"rule"`
	Groups []int            `yaml:"groups,omitempty" json:"groups,omitempty"`
	Valid  bool             `yaml:"valid"            json:"valid"`
	Error  string           `yaml:"error,omitempty"  json:"error,omitempty"`
}

// RulesResult is the output of the `rules` command.
type RulesResult struct {
	Path     string     `yaml:"path"               json:"path"`
	Defaults bool       `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Rules    []RuleInfo `yaml:"rules"              json:"rules"`
}

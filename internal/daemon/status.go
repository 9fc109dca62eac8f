package daemon

import (
	"go.uber.org/zap"

	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/tiler"
)

// Status is what Show prints.
type Status struct {
	Active   []tiler.RuleStatus `yaml:"active"             json:"active"`
	Inactive []model.LayoutRule `yaml:"inactive,omitempty" json:"inactive,omitempty"`
}

// logNotifier reports rule failures on the log, which is the only user
// facing channel a headless daemon has.
type logNotifier struct {
	log *zap.Logger
}

func (n logNotifier) StartFailed(rule model.LayoutRule, err error) {
	n.log.Error("rule could not be started",
		zap.String("process", rule.Process),
		zap.String("pattern", rule.TitlePattern),
		zap.Error(err))
}

func (n logNotifier) RuleStopped(rule model.LayoutRule, err error) {
	n.log.Error("rule stopped after a failed pass",
		zap.String("process", rule.Process),
		zap.String("pattern", rule.TitlePattern),
		zap.Error(err))
}

package tiler

import (
	"go.uber.org/zap"

	"github.com/mj1618/window-tiler/internal/model"
)

// Notifier receives user-visible rule events.
type Notifier interface {
	// StartFailed reports a rule that could not be started.
	StartFailed(rule model.LayoutRule, err error)
	// RuleStopped reports a running rule whose timer stopped after a failed
	// enforcement pass.
	RuleStopped(rule model.LayoutRule, err error)
}

type nopNotifier struct{}

func (nopNotifier) StartFailed(model.LayoutRule, error) {}
func (nopNotifier) RuleStopped(model.LayoutRule, error) {}

// RuleStatus is the observable state of one active rule.
type RuleStatus struct {
	Rule  model.LayoutRule `yaml:"rule"  json:"rule"`
	State string           `yaml:"state" json:"state"`
}

// RulePlan is the planned tile pass of one rule.
type RulePlan struct {
	Process      string            `yaml:"process"         json:"process"`
	TitlePattern string            `yaml:"title_pattern"   json:"title_pattern"`
	Placements   []model.Placement `yaml:"placements"      json:"placements"`
	Error        string            `yaml:"error,omitempty" json:"error,omitempty"`
}

// ApplyResult summarises what Apply changed.
type ApplyResult struct {
	Started []model.RuleKey
	Updated []model.RuleKey
	Stopped []model.RuleKey
	Failed  []model.RuleKey
}

// Coordinator holds the running workers in registration order.
type Coordinator struct {
	deps     Deps
	notifier Notifier
	log      *zap.Logger
	workers  []*Worker
}

// NewCoordinator returns an empty coordinator. A nil notifier discards
// notifications.
func NewCoordinator(deps Deps, notifier Notifier) *Coordinator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{deps: deps, notifier: notifier, log: log.Named("coordinator")}
}

// IsActive reports whether a worker for the rule's key exists.
func (c *Coordinator) IsActive(rule model.LayoutRule) bool {
	return c.index(rule.Key()) >= 0
}

// Start creates a worker for rule. It returns false without error when the
// rule is already active, and false with the cause when the worker could
// not be constructed; in that case the notifier is told as well.
func (c *Coordinator) Start(rule model.LayoutRule) (bool, error) {
	if c.IsActive(rule) {
		return false, nil
	}
	w, err := NewWorker(rule, c.deps, c.workerFailed)
	if err != nil {
		c.log.Warn("rule failed to start", zap.Stringer("rule", rule.Key()), zap.Error(err))
		c.notifier.StartFailed(rule, err)
		return false, err
	}
	c.workers = append(c.workers, w)
	return true, nil
}

// Stop stops and removes the rule's worker. It returns false if the rule
// was not active.
func (c *Coordinator) Stop(rule model.LayoutRule) bool {
	i := c.index(rule.Key())
	if i < 0 {
		return false
	}
	w := c.workers[i]
	c.workers = append(c.workers[:i], c.workers[i+1:]...)
	w.Stop()
	return true
}

// StopAll stops every worker.
func (c *Coordinator) StopAll() {
	for _, w := range c.workers {
		w.Stop()
	}
	c.workers = nil
}

// TileAll tiles every active rule left to right starting at x=0, each rule
// continuing where the previous one ended. A rule whose windows cannot be
// enumerated is skipped. It returns the final x.
func (c *Coordinator) TileAll() int {
	xStart := 0
	for _, w := range c.workers {
		next, err := w.Tile(xStart)
		if err != nil {
			c.log.Warn("tile pass skipped rule", zap.Stringer("rule", w.rule.Key()), zap.Error(err))
			continue
		}
		xStart = next
	}
	c.log.Info("tiled all rules", zap.Int("rules", len(c.workers)), zap.Int("width", xStart))
	return xStart
}

// PlanAll is TileAll without moving any window.
func (c *Coordinator) PlanAll() []RulePlan {
	xStart := 0
	plans := make([]RulePlan, 0, len(c.workers))
	for _, w := range c.workers {
		plan := RulePlan{Process: w.rule.Process, TitlePattern: w.rule.TitlePattern}
		placements, next, err := w.Plan(xStart)
		if err != nil {
			plan.Error = err.Error()
		} else {
			plan.Placements = placements
			xStart = next
		}
		plans = append(plans, plan)
	}
	return plans
}

// Status lists the active rules in registration order.
func (c *Coordinator) Status() []RuleStatus {
	out := make([]RuleStatus, 0, len(c.workers))
	for _, w := range c.workers {
		out = append(out, RuleStatus{Rule: w.rule, State: w.state.String()})
	}
	return out
}

// Apply reconciles the active set with a new rule list: active rules that
// are no longer listed are stopped, listed active rules are updated in
// place, and listed inactive rules with AutoRun are started. Rules that are
// listed without AutoRun and are not active are left alone.
func (c *Coordinator) Apply(rules []model.LayoutRule) ApplyResult {
	var res ApplyResult

	wanted := make(map[model.RuleKey]model.LayoutRule, len(rules))
	for _, r := range rules {
		wanted[r.Key()] = r
	}

	for _, w := range append([]*Worker(nil), c.workers...) {
		if _, ok := wanted[w.rule.Key()]; !ok {
			c.Stop(w.rule)
			res.Stopped = append(res.Stopped, w.rule.Key())
		}
	}

	for _, r := range rules {
		i := c.index(r.Key())
		if i >= 0 {
			w := c.workers[i]
			if w.rule == r {
				continue
			}
			if err := w.Update(r); err != nil {
				c.log.Warn("rule update rejected", zap.Stringer("rule", r.Key()), zap.Error(err))
				c.notifier.StartFailed(r, err)
				res.Failed = append(res.Failed, r.Key())
				continue
			}
			res.Updated = append(res.Updated, r.Key())
			continue
		}
		if !r.AutoRun {
			continue
		}
		started, err := c.Start(r)
		switch {
		case err != nil:
			res.Failed = append(res.Failed, r.Key())
		case started:
			res.Started = append(res.Started, r.Key())
		}
	}
	return res
}

// workerFailed removes a worker whose tick failed so that the rule reads
// as inactive and can be started again.
func (c *Coordinator) workerFailed(w *Worker, err error) {
	for i, cur := range c.workers {
		if cur == w {
			c.workers = append(c.workers[:i], c.workers[i+1:]...)
			break
		}
	}
	c.notifier.RuleStopped(w.rule, err)
}

func (c *Coordinator) index(key model.RuleKey) int {
	for i, w := range c.workers {
		if w.rule.Key() == key {
			return i
		}
	}
	return -1
}

package tiler

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/window-tiler/internal/locator"
	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/platform"
	"github.com/mj1618/window-tiler/internal/runloop"
)

// ErrInvalidRule marks configuration errors: a rule that cannot start.
var ErrInvalidRule = errors.New("invalid layout rule")

// State is the lifecycle state of a Worker.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Deps are the collaborators shared by all workers.
type Deps struct {
	Locator      *locator.Locator
	Mover        platform.WindowMover
	Loop         *runloop.Loop
	Log          *zap.Logger
	MatchTimeout time.Duration
}

// Worker enforces one LayoutRule.
type Worker struct {
	rule      model.LayoutRule
	pattern   *locator.Pattern
	deps      Deps
	log       *zap.Logger
	timer     *runloop.Timer
	state     State
	onFailure func(*Worker, error)
}

// NewWorker validates rule, runs one enforcement pass and starts the
// re-assertion timer. If validation or the first pass fails, the error
// wraps ErrInvalidRule and no timer is started. onFailure, if non-nil, is
// called on the loop after a later pass fails and the worker has stopped.
func NewWorker(rule model.LayoutRule, deps Deps, onFailure func(*Worker, error)) (*Worker, error) {
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidRule, rule.Key(), err)
	}
	pattern, err := locator.Compile(rule.TitlePattern, rule.CaptureGroup, deps.MatchTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidRule, rule.Key(), err)
	}

	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	w := &Worker{
		rule:      rule,
		pattern:   pattern,
		deps:      deps,
		log:       log.Named("worker").With(zap.String("process", rule.Process), zap.String("pattern", rule.TitlePattern)),
		state:     StateIdle,
		onFailure: onFailure,
	}

	if _, err := w.Enforce(); err != nil {
		return nil, fmt.Errorf("%w %s: initial pass: %w", ErrInvalidRule, rule.Key(), err)
	}
	w.state = StateRunning
	w.schedule()
	w.log.Info("rule started", zap.Stringer("size", rule.Size), zap.Duration("interval", rule.Interval))
	return w, nil
}

// Rule returns the rule the worker currently enforces.
func (w *Worker) Rule() model.LayoutRule { return w.rule }

// State returns the lifecycle state.
func (w *Worker) State() State { return w.state }

// Running reports whether the timer is still active.
func (w *Worker) Running() bool { return w.state == StateRunning }

// Enforce resizes every eligible matching window whose size differs from
// the rule's, keeping its top-left corner. It returns the number of windows
// resized. Windows that vanish before they can be moved are skipped.
func (w *Worker) Enforce() (int, error) {
	matches, err := w.deps.Locator.Find(w.rule.Process, w.pattern)
	if err != nil {
		return 0, err
	}

	resized := 0
	for _, m := range matches {
		if !w.rule.Eligible(m.Bounds) || m.Bounds.SizeEquals(w.rule.Size) {
			continue
		}
		target := model.Bounds{X: m.Bounds.X, Y: m.Bounds.Y, Width: w.rule.Size.Width, Height: w.rule.Size.Height}
		if err := w.deps.Mover.SetBounds(m.Handle, target); err != nil {
			w.moveFailed(m.Handle, err)
			continue
		}
		resized++
	}
	if resized > 0 {
		w.log.Debug("windows resized", zap.Int("count", resized))
	}
	return resized, nil
}

// Plan computes where Tile would place each window, starting at xStart,
// without moving anything. It returns the placements and the next xStart.
func (w *Worker) Plan(xStart int) ([]model.Placement, int, error) {
	ordered, err := w.tileOrder()
	if err != nil {
		return nil, xStart, err
	}
	placements, next := placeAll(w.rule, ordered, xStart)
	return placements, next, nil
}

// Tile moves the eligible matching windows to y=0, side by side from
// xStart, ordered by capture value. Each moved window advances x by the
// width it had before the move. It returns the next xStart.
func (w *Worker) Tile(xStart int) (int, error) {
	ordered, err := w.tileOrder()
	if err != nil {
		return xStart, err
	}
	for _, m := range ordered {
		if err := w.deps.Mover.SetBounds(m.Handle, w.tileBounds(xStart)); err != nil {
			w.moveFailed(m.Handle, err)
			continue
		}
		xStart += m.Bounds.Width
	}
	return xStart, nil
}

// Update applies a changed rule with the same key to the running worker.
// An interval change takes effect from the next tick.
func (w *Worker) Update(rule model.LayoutRule) error {
	if rule.Key() != w.rule.Key() {
		return fmt.Errorf("%w: cannot update %s with %s", ErrInvalidRule, w.rule.Key(), rule.Key())
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrInvalidRule, rule.Key(), err)
	}
	pattern := w.pattern
	if rule.CaptureGroup != w.rule.CaptureGroup {
		p, err := w.pattern.WithGroup(rule.CaptureGroup)
		if err != nil {
			return fmt.Errorf("%w %s: %w", ErrInvalidRule, rule.Key(), err)
		}
		pattern = p
	}

	intervalChanged := rule.Interval != w.rule.Interval
	w.rule = rule
	w.pattern = pattern
	if intervalChanged && w.state == StateRunning {
		w.timer.Stop()
		w.schedule()
	}
	w.log.Info("rule updated", zap.Stringer("size", rule.Size), zap.Duration("interval", rule.Interval))
	return nil
}

// Stop cancels future ticks. Window positions are left as they are.
func (w *Worker) Stop() {
	if w.state == StateStopped {
		return
	}
	w.state = StateStopped
	w.timer.Stop()
	w.log.Info("rule stopped")
}

func (w *Worker) schedule() {
	w.timer = w.deps.Loop.After(w.rule.Interval, w.tick)
}

func (w *Worker) tick() {
	if w.state != StateRunning {
		return
	}
	if err := w.safeEnforce(); err != nil {
		w.state = StateStopped
		w.log.Warn("enforcement pass failed, rule stopped", zap.Error(err))
		if w.onFailure != nil {
			w.onFailure(w, err)
		}
		return
	}
	w.schedule()
}

func (w *Worker) safeEnforce() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enforcement pass panicked: %v", r)
		}
	}()
	_, err = w.Enforce()
	return err
}

func (w *Worker) tileOrder() ([]model.MatchedWindow, error) {
	matches, err := w.deps.Locator.Find(w.rule.Process, w.pattern)
	if err != nil {
		return nil, err
	}
	return tileOrder(w.rule, matches), nil
}

func (w *Worker) tileBounds(x int) model.Bounds {
	return tileBounds(w.rule, x)
}

func (w *Worker) moveFailed(handle model.WindowID, err error) {
	if errors.Is(err, platform.ErrWindowGone) {
		w.log.Debug("window vanished before move", zap.Uint64("handle", uint64(handle)))
		return
	}
	w.log.Warn("move failed", zap.Uint64("handle", uint64(handle)), zap.Error(err))
}

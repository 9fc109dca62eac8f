package tiler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/window-tiler/internal/model"
)

func newCoordinator(h *harness, n Notifier) *Coordinator {
	c := NewCoordinator(h.deps, n)
	h.t.Cleanup(func() { h.on(c.StopAll) })
	return c
}

func momoRule(size model.Size) model.LayoutRule {
	return model.LayoutRule{
		Process:      "dnplayer",
		TitlePattern: `(\d*)_\w*_MOMO`,
		CaptureGroup: 1,
		Size:         size,
		Interval:     time.Hour,
		AutoRun:      true,
	}
}

func TestCoordinator_StartStop(t *testing.T) {
	h := newHarness(t)
	c := newCoordinator(h, nil)
	rule := memuRule(model.Size{Width: 100, Height: 200})

	var started, again, active bool
	var err1, err2 error
	h.on(func() {
		started, err1 = c.Start(rule)
		dup := rule
		dup.Size = model.Size{Width: 1, Height: 1}
		again, err2 = c.Start(dup)
		active = c.IsActive(rule)
	})
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, started)
	assert.False(t, again, "second start of the same key is a no-op")
	assert.True(t, active)

	var statuses []RuleStatus
	h.on(func() { statuses = c.Status() })
	require.Len(t, statuses, 1)
	assert.Equal(t, model.Size{Width: 100, Height: 200}, statuses[0].Rule.Size)
	assert.Equal(t, "running", statuses[0].State)

	var stopped, stoppedAgain bool
	h.on(func() {
		stopped = c.Stop(rule)
		stoppedAgain = c.Stop(rule)
		active = c.IsActive(rule)
	})
	assert.True(t, stopped)
	assert.False(t, stoppedAgain, "stop on an inactive rule returns false")
	assert.False(t, active)
}

func TestCoordinator_StartFailureNotifies(t *testing.T) {
	h := newHarness(t)
	n := &recordingNotifier{}
	c := newCoordinator(h, n)

	rule := memuRule(model.Size{Width: 100, Height: 200})
	rule.TitlePattern = `([`

	var started, active bool
	var err error
	h.on(func() {
		started, err = c.Start(rule)
		active = c.IsActive(rule)
	})
	assert.False(t, started)
	assert.ErrorIs(t, err, ErrInvalidRule)
	assert.False(t, active)

	events := n.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "start_failed", events[0].kind)
	assert.Equal(t, rule.Key(), events[0].rule.Key())
}

func TestCoordinator_TileAllChainsRules(t *testing.T) {
	h := newHarness(t)
	portrait := model.Bounds{Width: 100, Height: 200}
	h.backend.
		Add("Memu", 1, 1, "MEmu (2_a)", portrait).
		Add("Memu", 2, 2, "MEmu (1_b)", portrait).
		Add("dnplayer", 3, 3, "0_x_MOMO", portrait)

	c := newCoordinator(h, nil)
	var width int
	h.on(func() {
		_, _ = c.Start(memuRule(model.Size{Width: 100, Height: 200}))
		_, _ = c.Start(momoRule(model.Size{Width: 100, Height: 200}))
		width = c.TileAll()
	})

	assert.Equal(t, 300, width)
	assert.Equal(t, 0, h.backend.Bounds(2).X)
	assert.Equal(t, 100, h.backend.Bounds(1).X)
	assert.Equal(t, 200, h.backend.Bounds(3).X)
}

func TestCoordinator_TileAllSkipsFailingRule(t *testing.T) {
	h := newHarness(t)
	h.backend.Add("Memu", 1, 1, "MEmu (1_a)", model.Bounds{Width: 100, Height: 200})

	c := newCoordinator(h, nil)
	h.on(func() { _, _ = c.Start(memuRule(model.Size{Width: 100, Height: 200})) })

	h.backend.FailListing(errors.New("gone"))
	var width int
	h.on(func() { width = c.TileAll() })
	assert.Equal(t, 0, width)
}

func TestCoordinator_PlanAll(t *testing.T) {
	h := newHarness(t)
	portrait := model.Bounds{X: 40, Y: 40, Width: 100, Height: 200}
	h.backend.
		Add("Memu", 1, 1, "MEmu (1_a)", portrait).
		Add("dnplayer", 2, 2, "7_x_MOMO", portrait)

	c := newCoordinator(h, nil)
	var plans []RulePlan
	h.on(func() {
		_, _ = c.Start(memuRule(model.Size{Width: 100, Height: 200}))
		_, _ = c.Start(momoRule(model.Size{Width: 100, Height: 200}))
		plans = c.PlanAll()
	})

	require.Len(t, plans, 2)
	require.Len(t, plans[1].Placements, 1)
	assert.Equal(t, 100, plans[1].Placements[0].To.X)
	assert.Equal(t, "7", plans[1].Placements[0].Capture)
	assert.Empty(t, h.backend.Moves())
}

func TestCoordinator_TickFailureDeactivates(t *testing.T) {
	h := newHarness(t)
	h.backend.Add("Memu", 1, 1, "MEmu (1_a)", model.Bounds{Width: 100, Height: 200})

	n := &recordingNotifier{}
	c := newCoordinator(h, n)
	rule := memuRule(model.Size{Width: 100, Height: 200})
	rule.Interval = 5 * time.Millisecond
	h.on(func() { _, _ = c.Start(rule) })

	h.backend.FailListing(errors.New("enumeration broke"))
	require.Eventually(t, func() bool {
		var active bool
		h.on(func() { active = c.IsActive(rule) })
		return !active
	}, 2*time.Second, 5*time.Millisecond)

	events := n.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "stopped", events[0].kind)

	// Once the OS recovers the rule can be started again.
	h.backend.FailListing(nil)
	var started bool
	h.on(func() { started, _ = c.Start(rule) })
	assert.True(t, started)
}

func TestCoordinator_Apply(t *testing.T) {
	h := newHarness(t)
	h.backend.Add("Memu", 1, 1, "MEmu (1_a)", model.Bounds{Width: 100, Height: 200})

	c := newCoordinator(h, nil)
	memu := memuRule(model.Size{Width: 100, Height: 200})
	momo := momoRule(model.Size{Width: 100, Height: 200})
	manual := momo
	manual.TitlePattern = `manual`
	manual.CaptureGroup = 0
	manual.AutoRun = false

	var res ApplyResult
	h.on(func() { res = c.Apply([]model.LayoutRule{memu, momo, manual}) })
	assert.ElementsMatch(t, []model.RuleKey{memu.Key(), momo.Key()}, res.Started)
	assert.Empty(t, res.Stopped)

	resized := memu
	resized.Size = model.Size{Width: 120, Height: 240}
	h.on(func() { res = c.Apply([]model.LayoutRule{resized}) })
	assert.Equal(t, []model.RuleKey{momo.Key()}, res.Stopped)
	assert.Equal(t, []model.RuleKey{memu.Key()}, res.Updated)
	assert.Empty(t, res.Started)

	var statuses []RuleStatus
	h.on(func() { statuses = c.Status() })
	require.Len(t, statuses, 1)
	assert.Equal(t, resized.Size, statuses[0].Rule.Size)

	// Unchanged rules are neither updated nor restarted.
	h.on(func() { res = c.Apply([]model.LayoutRule{resized}) })
	assert.Empty(t, res.Updated)
	assert.Empty(t, res.Started)
	assert.Empty(t, res.Stopped)
}

func TestCoordinator_ApplyReportsFailures(t *testing.T) {
	h := newHarness(t)
	n := &recordingNotifier{}
	c := newCoordinator(h, n)

	bad := memuRule(model.Size{Width: 100, Height: 200})
	bad.CaptureGroup = 9

	var res ApplyResult
	h.on(func() { res = c.Apply([]model.LayoutRule{bad}) })
	assert.Equal(t, []model.RuleKey{bad.Key()}, res.Failed)
	assert.Len(t, n.snapshot(), 1)
}

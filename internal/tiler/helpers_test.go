package tiler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mj1618/window-tiler/internal/locator"
	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/platform/platformtest"
	"github.com/mj1618/window-tiler/internal/runloop"
)

const memuPattern = `\((\d*)_\w*\)`

type harness struct {
	t       *testing.T
	loop    *runloop.Loop
	backend *platformtest.Backend
	deps    Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	loop := runloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})

	backend := platformtest.New()
	return &harness{
		t:       t,
		loop:    loop,
		backend: backend,
		deps: Deps{
			Locator: locator.New(backend, nil),
			Mover:   backend,
			Loop:    loop,
		},
	}
}

// on runs fn on the loop and waits for it.
func (h *harness) on(fn func()) {
	h.t.Helper()
	require.NoError(h.t, h.loop.Do(context.Background(), fn))
}

func memuRule(size model.Size) model.LayoutRule {
	return model.LayoutRule{
		Process:      "Memu",
		TitlePattern: memuPattern,
		CaptureGroup: 1,
		Size:         size,
		Interval:     time.Hour,
		AutoRun:      true,
	}
}

type event struct {
	kind string
	rule model.LayoutRule
	err  error
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) StartFailed(rule model.LayoutRule, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{"start_failed", rule, err})
}

func (n *recordingNotifier) RuleStopped(rule model.LayoutRule, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{"stopped", rule, err})
}

func (n *recordingNotifier) snapshot() []event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]event(nil), n.events...)
}

// startWorker constructs a worker on the loop and stops it at cleanup.
func (h *harness) startWorker(rule model.LayoutRule, onFailure func(*Worker, error)) *Worker {
	h.t.Helper()
	var w *Worker
	var err error
	h.on(func() { w, err = NewWorker(rule, h.deps, onFailure) })
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = h.loop.Do(context.Background(), w.Stop) })
	return w
}

func (h *harness) tile(w *Worker, xStart int) int {
	h.t.Helper()
	var next int
	var err error
	h.on(func() { next, err = w.Tile(xStart) })
	require.NoError(h.t, err)
	return next
}

func (h *harness) enforce(w *Worker) int {
	h.t.Helper()
	var n int
	var err error
	h.on(func() { n, err = w.Enforce() })
	require.NoError(h.t, err)
	return n
}

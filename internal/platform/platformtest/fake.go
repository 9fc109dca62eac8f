// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"fmt"
	"sync"

	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/platform"
)

// Move records one SetBounds call.
type Move struct {
	Handle model.WindowID
	Bounds model.Bounds
}

// Backend is a fake window system. Moves update the stored bounds so that
// later enumerations observe them, like a real window manager would.
type Backend struct {
	mu      sync.Mutex
	windows []model.ProcessWindow
	gone    map[model.WindowID]bool
	listErr error
	moves   []Move
}

var _ platform.Backend = (*Backend)(nil)

// New returns an empty fake backend.
func New() *Backend {
	return &Backend{gone: make(map[model.WindowID]bool)}
}

// Add registers a process with a main window.
func (b *Backend) Add(process string, pid int, handle model.WindowID, title string, bounds model.Bounds) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = append(b.windows, model.ProcessWindow{
		PID: pid, Process: process, Handle: handle, Title: title, Bounds: bounds,
	})
	return b
}

// AddWindowless registers a process that has no main window.
func (b *Backend) AddWindowless(process string, pid int) *Backend {
	return b.Add(process, pid, 0, "", model.Bounds{})
}

// Vanish makes handle fail SetBounds with platform.ErrWindowGone while it
// is still reported by enumeration.
func (b *Backend) Vanish(handle model.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gone[handle] = true
}

// SetBoundsExternally changes a window as if the user had resized it.
func (b *Backend) SetBoundsExternally(handle model.WindowID, bounds model.Bounds) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.windows {
		if b.windows[i].Handle == handle {
			b.windows[i].Bounds = bounds
		}
	}
}

// FailListing makes ProcessWindows return err (nil clears it).
func (b *Backend) FailListing(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listErr = err
}

// Moves returns a copy of the recorded SetBounds calls.
func (b *Backend) Moves() []Move {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Move(nil), b.moves...)
}

// ResetMoves clears the recorded calls.
func (b *Backend) ResetMoves() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moves = nil
}

// Bounds returns the current bounds of handle.
func (b *Backend) Bounds(handle model.WindowID) model.Bounds {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range b.windows {
		if w.Handle == handle {
			return w.Bounds
		}
	}
	return model.Bounds{}
}

func (b *Backend) ProcessWindows(processName string) ([]model.ProcessWindow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	var out []model.ProcessWindow
	for _, w := range b.windows {
		if platform.MatchesProcess(w.Process, processName) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (b *Backend) SetBounds(handle model.WindowID, bounds model.Bounds) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gone[handle] {
		return fmt.Errorf("window %d: %w", handle, platform.ErrWindowGone)
	}
	b.moves = append(b.moves, Move{Handle: handle, Bounds: bounds})
	for i := range b.windows {
		if b.windows[i].Handle == handle {
			b.windows[i].Bounds = bounds
		}
	}
	return nil
}

package platform

import "github.com/mj1618/window-tiler/internal/model"

// WindowLister enumerates running processes and their main windows.
type WindowLister interface {
	// ProcessWindows returns one entry per running process whose name matches
	// processName (case-insensitive). A process without a main window is
	// reported with a zero Handle and an empty Title.
	ProcessWindows(processName string) ([]model.ProcessWindow, error)
}

// WindowMover repositions top-level windows.
type WindowMover interface {
	// SetBounds moves and resizes a window without changing its z-order.
	// It returns ErrWindowGone when the handle no longer refers to a window.
	SetBounds(handle model.WindowID, bounds model.Bounds) error
}

// Backend is the full set of window operations the tiler needs.
type Backend interface {
	WindowLister
	WindowMover
}

package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// Provider bundles the window backend for the current OS.
type Provider struct {
	Windows Backend

	// Close releases the display connection, if the backend holds one.
	Close func() error
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("tiler is not supported on %s/%s; supported: linux (X11), windows", runtime.GOOS, runtime.GOARCH)

// ErrWindowGone is returned by WindowMover when the window vanished between
// enumeration and the move.
var ErrWindowGone = errors.New("window no longer exists")

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/x11/init.go and internal/platform/win32/init.go.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}

// Shutdown closes the provider's backend connection if it has one.
func (p *Provider) Shutdown() error {
	if p == nil || p.Close == nil {
		return nil
	}
	return p.Close()
}

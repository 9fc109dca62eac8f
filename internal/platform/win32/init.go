//go:build windows

package win32

import "github.com/mj1618/window-tiler/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{Windows: NewBackend()}, nil
	}
}

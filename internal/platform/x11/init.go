//go:build linux

package x11

import "github.com/mj1618/window-tiler/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		backend, err := NewBackend()
		if err != nil {
			return nil, err
		}
		return &platform.Provider{
			Windows: backend,
			Close:   backend.Close,
		}, nil
	}
}

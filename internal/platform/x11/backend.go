//go:build linux

package x11

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/prometheus/procfs"

	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/platform"
)

// Backend implements platform.Backend on top of an X11 connection.
type Backend struct {
	xu *xgbutil.XUtil
	fs procfs.FS
}

// NewBackend connects to the X server named by $DISPLAY.
func NewBackend() (*Backend, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("open procfs: %w", err)
	}
	return &Backend{xu: xu, fs: fs}, nil
}

// Close closes the X connection.
func (b *Backend) Close() error {
	b.xu.Conn().Close()
	return nil
}

func (b *Backend) ProcessWindows(processName string) ([]model.ProcessWindow, error) {
	procs, err := b.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var result []model.ProcessWindow
	for _, p := range procs {
		name, ok := processNameMatches(p, processName)
		if !ok {
			continue
		}
		result = append(result, model.ProcessWindow{PID: p.PID, Process: name})
	}
	if len(result) == 0 {
		return nil, nil
	}

	mainWindows, err := b.mainWindowsByPID()
	if err != nil {
		return nil, err
	}

	for i := range result {
		win, ok := mainWindows[result[i].PID]
		if !ok {
			continue
		}
		bounds, err := b.bounds(win)
		if err != nil {
			// Window closed since the client list was read.
			continue
		}
		result[i].Handle = model.WindowID(win)
		result[i].Title = b.title(win)
		result[i].Bounds = bounds
	}
	return result, nil
}

// SetBounds places the window frame at bounds. Bounds are measured on the
// frame (see bounds), so the requested client size is reduced by the
// decorations the window manager currently draws.
func (b *Backend) SetBounds(handle model.WindowID, bounds model.Bounds) error {
	win := xwindow.New(b.xu, xproto.Window(handle))
	client, err := win.Geometry()
	if err != nil {
		return fmt.Errorf("window %d: %w", handle, platform.ErrWindowGone)
	}
	frame, err := win.DecorGeometry()
	if err != nil {
		return fmt.Errorf("window %d: %w", handle, platform.ErrWindowGone)
	}
	size := clientSize(
		model.Size{Width: bounds.Width, Height: bounds.Height},
		model.Bounds{Width: frame.Width(), Height: frame.Height()},
		model.Bounds{Width: client.Width(), Height: client.Height()},
	)
	if err := ewmh.MoveresizeWindow(b.xu, win.Id, bounds.X, bounds.Y, size.Width, size.Height); err != nil {
		return fmt.Errorf("move window %d: %w", handle, err)
	}
	return nil
}

// mainWindowsByPID maps each PID to its first managed client window.
func (b *Backend) mainWindowsByPID() (map[int]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(b.xu)
	if err != nil {
		return nil, fmt.Errorf("read _NET_CLIENT_LIST: %w", err)
	}
	out := make(map[int]xproto.Window, len(clients))
	for _, win := range clients {
		pid, err := ewmh.WmPidGet(b.xu, win)
		if err != nil || pid == 0 {
			continue
		}
		if _, seen := out[int(pid)]; !seen {
			out[int(pid)] = win
		}
	}
	return out, nil
}

func (b *Backend) title(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(b.xu, win); err == nil && strings.TrimSpace(title) != "" {
		return title
	}
	if title, err := icccm.WmNameGet(b.xu, win); err == nil {
		return title
	}
	return ""
}

// bounds measures the frame, decorations included.
func (b *Backend) bounds(win xproto.Window) (model.Bounds, error) {
	rect, err := xwindow.New(b.xu, win).DecorGeometry()
	if err != nil {
		return model.Bounds{}, err
	}
	return model.Bounds{X: rect.X(), Y: rect.Y(), Width: rect.Width(), Height: rect.Height()}, nil
}

// processNameMatches checks both comm (truncated to 15 bytes by the kernel)
// and the executable basename.
func processNameMatches(p procfs.Proc, want string) (string, bool) {
	if comm, err := p.Comm(); err == nil && platform.MatchesProcess(comm, want) {
		return comm, true
	}
	if exe, err := p.Executable(); err == nil && exe != "" {
		base := filepath.Base(exe)
		if platform.MatchesProcess(base, want) {
			return base, true
		}
	}
	return "", false
}

//go:build windows

package win32

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/mj1618/window-tiler/internal/model"
	"github.com/mj1618/window-tiler/internal/platform"
)

const (
	gwOwner = 4

	swpNoZOrder   = 0x0004
	swpShowWindow = 0x0040
)

var (
	user32            = windows.NewLazySystemDLL("user32.dll")
	procGetWindow     = user32.NewProc("GetWindow")
	procGetWindowRect = user32.NewProc("GetWindowRect")
	procGetWindowText = user32.NewProc("GetWindowTextW")
	procSetWindowPos  = user32.NewProc("SetWindowPos")
)

type rect struct {
	Left, Top, Right, Bottom int32
}

// Backend implements platform.Backend with user32 calls.
type Backend struct{}

// NewBackend returns a Windows backend. It holds no OS resources.
func NewBackend() *Backend {
	return &Backend{}
}

func (b *Backend) ProcessWindows(processName string) ([]model.ProcessWindow, error) {
	procs, err := processesByName(processName)
	if err != nil {
		return nil, err
	}
	if len(procs) == 0 {
		return nil, nil
	}

	mainWindows, err := mainWindowsByPID()
	if err != nil {
		return nil, err
	}

	for i := range procs {
		hwnd, ok := mainWindows[uint32(procs[i].PID)]
		if !ok {
			continue
		}
		bounds, err := windowRect(hwnd)
		if err != nil {
			continue
		}
		procs[i].Handle = model.WindowID(hwnd)
		procs[i].Title = windowText(hwnd)
		procs[i].Bounds = bounds
	}
	return procs, nil
}

func (b *Backend) SetBounds(handle model.WindowID, bounds model.Bounds) error {
	hwnd := windows.HWND(handle)
	if !windows.IsWindow(hwnd) {
		return fmt.Errorf("window %#x: %w", handle, platform.ErrWindowGone)
	}
	ret, _, err := procSetWindowPos.Call(
		uintptr(hwnd), 0,
		uintptr(int32(bounds.X)), uintptr(int32(bounds.Y)),
		uintptr(int32(bounds.Width)), uintptr(int32(bounds.Height)),
		swpNoZOrder|swpShowWindow,
	)
	if ret == 0 {
		if !windows.IsWindow(hwnd) {
			return fmt.Errorf("window %#x: %w", handle, platform.ErrWindowGone)
		}
		return fmt.Errorf("SetWindowPos %#x: %w", handle, err)
	}
	return nil
}

func processesByName(name string) ([]model.ProcessWindow, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("process snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Process32First(snap, &entry); err != nil {
		return nil, fmt.Errorf("process snapshot: %w", err)
	}

	var out []model.ProcessWindow
	for {
		exe := windows.UTF16ToString(entry.ExeFile[:])
		if platform.MatchesProcess(exe, name) {
			out = append(out, model.ProcessWindow{PID: int(entry.ProcessID), Process: exe})
		}
		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}
	return out, nil
}

// enumState collects EnumWindows results. EnumWindows callbacks are a
// limited resource, so one callback is shared and calls are serialized.
var (
	enumMu       sync.Mutex
	enumFound    map[uint32]windows.HWND
	enumCallback = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		if !windows.IsWindowVisible(hwnd) {
			return 1
		}
		if owner, _, _ := procGetWindow.Call(uintptr(hwnd), gwOwner); owner != 0 {
			return 1
		}
		var pid uint32
		if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil || pid == 0 {
			return 1
		}
		if _, seen := enumFound[pid]; !seen {
			enumFound[pid] = hwnd
		}
		return 1
	})
)

// mainWindowsByPID returns the first visible unowned top-level window of
// each process, which is what Windows tools conventionally treat as the
// process' main window.
func mainWindowsByPID() (map[uint32]windows.HWND, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumFound = make(map[uint32]windows.HWND)
	if err := windows.EnumWindows(enumCallback, nil); err != nil {
		return nil, fmt.Errorf("enumerate windows: %w", err)
	}
	found := enumFound
	enumFound = nil
	return found, nil
}

func windowText(hwnd windows.HWND) string {
	buf := make([]uint16, 512)
	n, _, _ := procGetWindowText.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func windowRect(hwnd windows.HWND) (model.Bounds, error) {
	var r rect
	ret, _, err := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return model.Bounds{}, fmt.Errorf("GetWindowRect %#x: %w", hwnd, err)
	}
	return model.Bounds{
		X:      int(r.Left),
		Y:      int(r.Top),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}, nil
}

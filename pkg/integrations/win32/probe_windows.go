//go:build windows

package win32

import (
	"path/filepath"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/actionsum/activitymon/pkg/window"
)

var (
	modUser32   = windows.NewLazySystemDLL("user32.dll")
	modKernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetWindowTextW   = modUser32.NewProc("GetWindowTextW")
	procGetLastInputInfo = modUser32.NewProc("GetLastInputInfo")
	procGetTickCount     = modKernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

// Probe reads the foreground window through user32/kernel32.
type Probe struct{}

// NewProbe creates a Win32 probe.
func NewProbe() *Probe {
	return &Probe{}
}

// Platform returns "win32".
func (p *Probe) Platform() string {
	return "win32"
}

// ActiveWindow fails only when there is no foreground window. Title and
// executable name degrade to sentinels.
func (p *Probe) ActiveWindow() (window.Snapshot, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return window.Snapshot{}, window.NewProbeError(window.NoForegroundWindow, "win32.ActiveWindow", nil)
	}

	return window.Snapshot{
		AppName:     window.OrSentinel(processName(hwnd), window.UnknownApplication),
		WindowTitle: window.OrSentinel(windowTitle(hwnd), window.UnknownWindow),
	}, nil
}

func windowTitle(hwnd windows.HWND) string {
	buf := make([]uint16, titleCapacity)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return decodeTitle(buf, int(n))
}

func processName(hwnd windows.HWND) string {
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil || pid == 0 {
		return ""
	}

	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	size := uint32(windows.MAX_PATH)
	buf := make([]uint16, size)
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return filepath.Base(windows.UTF16ToString(buf[:size]))
}

// IdleDuration returns the time since the last keyboard or mouse input.
func (p *Probe) IdleDuration() (time.Duration, error) {
	info := lastInputInfo{}
	info.cbSize = uint32(unsafe.Sizeof(info))

	ret, _, callErr := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return 0, window.NewProbeError(window.APIFailure, "win32.IdleDuration",
			errors.Wrap(callErr, "GetLastInputInfo"))
	}

	now, _, _ := procGetTickCount.Call()
	return idleFromTicks(uint32(now), info.dwTime), nil
}

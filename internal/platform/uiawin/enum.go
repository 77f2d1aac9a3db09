//go:build windows

package uiawin

import (
	"path/filepath"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/mj1618/uitree/internal/model"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetSystemMetrics         = user32.NewProc("GetSystemMetrics")
	procGetClassNameW            = user32.NewProc("GetClassNameW")
)

// Virtual-screen metrics (SM_*VIRTUALSCREEN).
const (
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
)

// browserProcesses are executables whose windows host a web document and
// are eligible for DOM-mode capture.
var browserProcesses = map[string]bool{
	"chrome.exe":   true,
	"msedge.exe":   true,
	"firefox.exe":  true,
	"brave.exe":    true,
	"opera.exe":    true,
	"vivaldi.exe":  true,
	"iexplore.exe": true,
	"arc.exe":      true,
}

type winRect struct {
	Left, Top, Right, Bottom int32
}

// ListWindows enumerates visible titled top-level windows, front to back.
func (c *conn) ListWindows() ([]model.Window, error) {
	var windowsOut []model.Window
	foreground, _, _ := procGetForegroundWindow.Call()

	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		visible, _, _ := procIsWindowVisible.Call(hwnd)
		if visible == 0 {
			return 1 // continue enumeration
		}

		title := windowText(hwnd)
		if title == "" {
			// Untitled shell windows still matter when they are the shell
			// itself (taskbar, desktop); everything else is noise.
			if display := model.CorrectWindowName(className(hwnd)); display == className(hwnd) {
				return 1
			}
			title = model.CorrectWindowName(className(hwnd))
		}

		var rect winRect
		procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect)))

		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
		proc := processName(pid)

		windowsOut = append(windowsOut, model.Window{
			Handle:  hwnd,
			Title:   model.CorrectWindowName(title),
			Process: proc,
			PID:     int(pid),
			Bounds: model.BoundingBox{
				Left:   int(rect.Left),
				Top:    int(rect.Top),
				Right:  int(rect.Right),
				Bottom: int(rect.Bottom),
			},
			Focused: hwnd == foreground,
			Browser: browserProcesses[strings.ToLower(proc)],
		})
		return 1
	})

	ret, _, err := procEnumWindows.Call(cb, 0)
	if ret == 0 && err != windows.ERROR_SUCCESS {
		return nil, err
	}
	return windowsOut, nil
}

// ScreenBounds returns the virtual screen rectangle spanning all monitors.
func (c *conn) ScreenBounds() model.BoundingBox {
	x, _, _ := procGetSystemMetrics.Call(smXVirtualScreen)
	y, _, _ := procGetSystemMetrics.Call(smYVirtualScreen)
	w, _, _ := procGetSystemMetrics.Call(smCXVirtualScreen)
	h, _, _ := procGetSystemMetrics.Call(smCYVirtualScreen)
	return model.BoundingBox{
		Left:   int(int32(x)),
		Top:    int(int32(y)),
		Right:  int(int32(x)) + int(int32(w)),
		Bottom: int(int32(y)) + int(int32(h)),
	}
}

func windowText(hwnd uintptr) string {
	var buf [512]uint16
	n, _, _ := procGetWindowTextW.Call(hwnd,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}

func className(hwnd uintptr) string {
	var buf [256]uint16
	n, _, _ := procGetClassNameW.Call(hwnd,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}

// processName resolves a PID to its executable base name, or "".
func processName(pid uint32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return filepath.Base(windows.UTF16ToString(buf[:size]))
}

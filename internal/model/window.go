package model

// Window identifies one top-level window to capture. Windows are produced by
// the platform's window enumeration and treated as read-only input by the
// capture engine.
type Window struct {
	Handle  uintptr     `yaml:"handle"            json:"handle"`
	Title   string      `yaml:"title"             json:"title"`
	Process string      `yaml:"process,omitempty" json:"process,omitempty"`
	PID     int         `yaml:"pid,omitempty"     json:"pid,omitempty"`
	Bounds  BoundingBox `yaml:"bounds"            json:"bounds"`
	Focused bool        `yaml:"focused,omitempty" json:"focused,omitempty"`
	// Browser is true when the owning process is a known web browser; such
	// windows are eligible for DOM-mode capture.
	Browser bool `yaml:"browser,omitempty" json:"browser,omitempty"`
}

// shellWindowNames maps internal window class names to the display names
// users actually recognize.
var shellWindowNames = map[string]string{
	"Progman":                 "Desktop",
	"Shell_TrayWnd":           "Taskbar",
	"Shell_SecondaryTrayWnd":  "Taskbar",
	"Microsoft.UI.Content.PopupWindowSiteBridge": "Context Menu",
}

// CorrectWindowName normalizes shell-internal window names.
func CorrectWindowName(name string) string {
	if display, ok := shellWindowNames[name]; ok {
		return display
	}
	return name
}

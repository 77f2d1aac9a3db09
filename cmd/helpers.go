package cmd

import (
	"fmt"
	"strings"

	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/platform"
)

// listWindows enumerates windows on a short-lived connection owned by the
// calling goroutine.
func listWindows() ([]model.Window, error) {
	conn, err := platform.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Release()
	return conn.ListWindows()
}

// selectWindows applies the common --window/--process/--pid scoping flags
// to an enumerated window list, preserving enumeration order.
func selectWindows(windows []model.Window, title, process string, pid int) ([]model.Window, error) {
	if title == "" && process == "" && pid == 0 {
		return windows, nil
	}
	var kept []model.Window
	titleLower := strings.ToLower(title)
	for _, w := range windows {
		if title != "" && !strings.Contains(strings.ToLower(w.Title), titleLower) {
			continue
		}
		if process != "" && !strings.EqualFold(w.Process, process) {
			continue
		}
		if pid != 0 && w.PID != pid {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no windows match the given filters")
	}
	return kept, nil
}

package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/mj1618/uitree/internal/model"
)

// PrintAgent renders a TreeState as the compact sectioned listing agents
// paste into prompts. Non-TreeState values fall back to YAML.
func PrintAgent(v interface{}) error {
	state, ok := v.(*model.TreeState)
	if !ok {
		return PrintYAML(v)
	}
	_, err := os.Stdout.WriteString(RenderAgent(state))
	return err
}

// RenderAgent builds the agent-format text for a snapshot: one line per
// element, grouped by tag, with the id and center point an action needs.
func RenderAgent(state *model.TreeState) string {
	var b strings.Builder

	writeSection(&b, "Interactive Elements", state.Interactive(), func(el model.Element) string {
		line := fmt.Sprintf("[%d] %s %q window=%q center=(%d,%d)",
			el.ID, el.ControlType, el.Name, el.WindowName, el.Point.X, el.Point.Y)
		if el.Value != "" {
			line += fmt.Sprintf(" value=%q", el.Value)
		}
		if el.Shortcut != "" {
			line += fmt.Sprintf(" shortcut=%q", el.Shortcut)
		}
		if el.Focused {
			line += " focused"
		}
		return line
	})

	writeSection(&b, "Scrollable Elements", state.Scrollable(), func(el model.Element) string {
		line := fmt.Sprintf("[%d] %s %q window=%q center=(%d,%d)",
			el.ID, el.ControlType, el.Name, el.WindowName, el.Point.X, el.Point.Y)
		if s := el.Scroll; s != nil {
			if s.Vertical {
				line += fmt.Sprintf(" v=%.0f%%", s.VerticalPercent)
			}
			if s.Horizontal {
				line += fmt.Sprintf(" h=%.0f%%", s.HorizontalPercent)
			}
		}
		return line
	})

	writeSection(&b, "Informative Elements", state.Informative(), func(el model.Element) string {
		text := el.Name
		if text == "" {
			text = el.Value
		}
		return fmt.Sprintf("[%d] %s %q window=%q", el.ID, el.ControlType, text, el.WindowName)
	})

	if len(state.Errors) > 0 {
		b.WriteString("Window Errors:\n")
		for _, we := range state.Errors {
			fmt.Fprintf(&b, "- %q: %s\n", we.Title, we.Err)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "generation: %d\n", state.Generation)
	return b.String()
}

func writeSection(b *strings.Builder, title string, elements []model.Element, line func(model.Element) string) {
	if len(elements) == 0 {
		return
	}
	b.WriteString(title + ":\n")
	for _, el := range elements {
		b.WriteString(line(el) + "\n")
	}
	b.WriteString("\n")
}

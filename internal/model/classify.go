package model

// Control type names follow the UI Automation convention ("ButtonControl",
// "EditControl", ...). The sets below drive classification.

// InteractiveControlTypes are control types an agent can usefully act on.
var InteractiveControlTypes = map[string]bool{
	"ButtonControl":      true,
	"ListItemControl":    true,
	"MenuItemControl":    true,
	"EditControl":        true,
	"CheckBoxControl":    true,
	"RadioButtonControl": true,
	"ComboBoxControl":    true,
	"HyperlinkControl":   true,
	"SplitButtonControl": true,
	"TabItemControl":     true,
	"TreeItemControl":    true,
	"DataItemControl":    true,
	"HeaderItemControl":  true,
	"SliderControl":      true,
	"SpinnerControl":     true,
	"ScrollBarControl":   true,
}

// DocumentControlTypes host web or rich-text content. In DOM mode they are
// treated like interactive types for form controls.
var DocumentControlTypes = map[string]bool{
	"DocumentControl": true,
}

// InformativeControlTypes carry text an agent may want to read but not act on.
var InformativeControlTypes = map[string]bool{
	"TextControl":      true,
	"ImageControl":     true,
	"StatusBarControl": true,
}

// StructuralControlTypes are containers that are walked for descendants but
// are only interesting themselves when they scroll.
var StructuralControlTypes = map[string]bool{
	"PaneControl":   true,
	"GroupControl":  true,
	"CustomControl": true,
}

// Patterns are the capability flags of a raw node, resolved at most once per
// node during a traversal.
type Patterns struct {
	// Scrollable is true when the node exposes a scroll pattern with a
	// non-trivial scrollable range on at least one axis.
	Scrollable bool
	// KeyboardFocusable mirrors the provider's focusability flag.
	KeyboardFocusable bool
	// Toggleable is true when the node exposes a toggle pattern.
	Toggleable bool
	// HasValue is true when the node exposes a value pattern with a
	// non-empty value.
	HasValue bool
	// Named is true when the node carries a non-empty accessible name.
	Named bool
}

// Classify maps a node's control type and capability flags to a tag. It is a
// pure function: identical inputs always yield the same tag.
//
// Priority order:
//  1. A node with a non-trivial scrollable range is scrollable, even when it
//     would otherwise be interactive.
//  2. A control of an interactive type that is enabled and on screen is
//     interactive. Disabled or offscreen controls never are.
//  3. Anything with a name or value is informative.
//  4. Everything else is ignored (but still traversed for descendants).
func Classify(controlType string, p Patterns, enabled, offscreen bool) Tag {
	if p.Scrollable {
		return TagScrollable
	}
	if InteractiveControlTypes[controlType] && enabled && !offscreen {
		return TagInteractive
	}
	if p.Named || p.HasValue {
		return TagInformative
	}
	return TagIgnored
}

package model

// Tag classifies what an element is good for.
type Tag string

const (
	TagInteractive Tag = "interactive"
	TagScrollable  Tag = "scrollable"
	TagInformative Tag = "informative"
	// TagIgnored marks elements that are traversed for descendants but never
	// appear in a TreeState (containers, panes, separators).
	TagIgnored Tag = "ignored"
)

// BoundingBox is a screen-space rectangle in absolute coordinates.
type BoundingBox struct {
	Left   int `yaml:"l" json:"l"`
	Top    int `yaml:"t" json:"t"`
	Right  int `yaml:"r" json:"r"`
	Bottom int `yaml:"b" json:"b"`
}

// Width returns the box width in pixels.
func (b BoundingBox) Width() int { return b.Right - b.Left }

// Height returns the box height in pixels.
func (b BoundingBox) Height() int { return b.Bottom - b.Top }

// Empty reports whether the box has no visible area.
func (b BoundingBox) Empty() bool { return b.Right <= b.Left || b.Bottom <= b.Top }

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Center {
	return Center{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// Intersect clips b against other, returning the zero box when the two do
// not overlap.
func (b BoundingBox) Intersect(other BoundingBox) BoundingBox {
	out := BoundingBox{
		Left:   max(b.Left, other.Left),
		Top:    max(b.Top, other.Top),
		Right:  min(b.Right, other.Right),
		Bottom: min(b.Bottom, other.Bottom),
	}
	if out.Empty() {
		return BoundingBox{}
	}
	return out
}

// Center is a clickable point inside an element.
type Center struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Element is one classified node of a captured accessibility tree. IDs are
// sequential within a single TreeState and carry no identity across
// captures.
type Element struct {
	ID          int         `yaml:"i"             json:"i"`
	WindowName  string      `yaml:"w,omitempty"   json:"w,omitempty"`
	ControlType string      `yaml:"ct"            json:"ct"`
	Name        string      `yaml:"n,omitempty"   json:"n,omitempty"`
	Tag         Tag         `yaml:"tag"           json:"tag"`
	Bounds      BoundingBox `yaml:"box"           json:"box"`
	Point       Center      `yaml:"pt"            json:"pt"`
	Value       string      `yaml:"v,omitempty"   json:"v,omitempty"`
	Shortcut    string      `yaml:"sc,omitempty"  json:"sc,omitempty"`
	Focused     bool        `yaml:"f,omitempty"   json:"f,omitempty"`
	// Truncated marks a node sitting on the max-depth boundary whose
	// descendants were not walked.
	Truncated bool `yaml:"trunc,omitempty" json:"trunc,omitempty"`
	// Scroll is set only for TagScrollable elements.
	Scroll *ScrollInfo `yaml:"scroll,omitempty" json:"scroll,omitempty"`
}

// ScrollInfo reports the scroll position of a scrollable element. Percent
// values are 0-100; -1 means the axis is scrollable but its position is
// unknown.
type ScrollInfo struct {
	Horizontal        bool    `yaml:"h"    json:"h"`
	HorizontalPercent float64 `yaml:"hpct" json:"hpct"`
	Vertical          bool    `yaml:"v"    json:"v"`
	VerticalPercent   float64 `yaml:"vpct" json:"vpct"`
}

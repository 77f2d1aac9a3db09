package model

import "strings"

// Filter narrows a snapshot's element list. Zero values mean "no filter".
type Filter struct {
	Tags    []Tag  // keep only these tags
	Window  string // case-insensitive substring match on window name
	Text    string // case-insensitive substring match on name or value
	Control string // exact control type match
}

// Apply returns the elements matching every set criterion, preserving
// snapshot order. The input is never modified.
func (f Filter) Apply(elements []Element) []Element {
	if len(f.Tags) == 0 && f.Window == "" && f.Text == "" && f.Control == "" {
		return elements
	}

	tagSet := make(map[Tag]bool, len(f.Tags))
	for _, t := range f.Tags {
		tagSet[t] = true
	}
	windowLower := strings.ToLower(f.Window)
	textLower := strings.ToLower(f.Text)

	var out []Element
	for _, el := range elements {
		if len(tagSet) > 0 && !tagSet[el.Tag] {
			continue
		}
		if windowLower != "" && !strings.Contains(strings.ToLower(el.WindowName), windowLower) {
			continue
		}
		if f.Control != "" && el.ControlType != f.Control {
			continue
		}
		if textLower != "" && !elementMatchesText(el, textLower) {
			continue
		}
		out = append(out, el)
	}
	return out
}

func elementMatchesText(el Element, textLower string) bool {
	return strings.Contains(strings.ToLower(el.Name), textLower) ||
		strings.Contains(strings.ToLower(el.Value), textLower)
}

// ParseTags converts a comma-separated tag list ("interactive,scrollable")
// into tags, skipping empty entries. Unknown names pass through so the
// filter simply matches nothing for them.
func ParseTags(s string) []Tag {
	if s == "" {
		return nil
	}
	var tags []Tag
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part != "" {
			tags = append(tags, Tag(part))
		}
	}
	return tags
}

package model

// WindowError records a per-window capture failure. Ordinary platform
// flakiness never fails a capture; it is reported here instead.
type WindowError struct {
	Handle uintptr `yaml:"handle"          json:"handle"`
	Title  string  `yaml:"title,omitempty" json:"title,omitempty"`
	Err    string  `yaml:"error"           json:"error"`
}

// TreeState is an immutable snapshot of the classified elements of one or
// more windows. Elements are ordered by the caller-supplied window order,
// pre-order within each window. A new capture always produces a new
// TreeState; nothing mutates one after construction.
type TreeState struct {
	Generation int64         `yaml:"gen"              json:"gen"`
	Elements   []Element     `yaml:"elements"         json:"elements"`
	Errors     []WindowError `yaml:"errors,omitempty" json:"errors,omitempty"`
}

// Interactive returns the elements tagged interactive, in snapshot order.
func (s *TreeState) Interactive() []Element {
	return s.byTag(TagInteractive)
}

// Scrollable returns the elements tagged scrollable, in snapshot order.
func (s *TreeState) Scrollable() []Element {
	return s.byTag(TagScrollable)
}

// Informative returns the elements tagged informative, in snapshot order.
func (s *TreeState) Informative() []Element {
	return s.byTag(TagInformative)
}

func (s *TreeState) byTag(tag Tag) []Element {
	var out []Element
	for _, el := range s.Elements {
		if el.Tag == tag {
			out = append(out, el)
		}
	}
	return out
}

// ElementByID returns the element with the given snapshot-local ID.
func (s *TreeState) ElementByID(id int) *Element {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return &s.Elements[i]
		}
	}
	return nil
}

package model

import (
	"crypto/sha256"
	"fmt"
)

// Change describes one element whose mutable properties differ between two
// snapshots. Changes maps a short property key to [old, new].
type Change struct {
	ID      int                  `yaml:"i"                json:"i"`
	Control string               `yaml:"ct,omitempty"     json:"ct,omitempty"`
	Name    string               `yaml:"n,omitempty"      json:"n,omitempty"`
	Changes map[string][2]string `yaml:"changes"          json:"changes"`
}

// TreeDiff is the result of comparing two snapshots by content hash.
type TreeDiff struct {
	Added          []Element `yaml:"added,omitempty"   json:"added,omitempty"`
	Removed        []Element `yaml:"removed,omitempty" json:"removed,omitempty"`
	Changed        []Change  `yaml:"changed,omitempty" json:"changed,omitempty"`
	UnchangedCount int       `yaml:"unchanged_count"   json:"unchanged_count"`
}

// ElementHash computes a stable identity hash from an element's semantic
// content. Sequential IDs are generation-local, so cross-capture matching
// has to key on content instead.
func ElementHash(el Element) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", el.WindowName, el.ControlType, el.Name, el.Tag)
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// DiffStates compares two element lists using content hashing for identity,
// tolerating the ID shifts a fresh capture introduces.
func DiffStates(prev, curr []Element) TreeDiff {
	prevByHash := make(map[string]Element, len(prev))
	for _, el := range prev {
		prevByHash[ElementHash(el)] = el
	}
	currByHash := make(map[string]Element, len(curr))
	for _, el := range curr {
		currByHash[ElementHash(el)] = el
	}

	var diff TreeDiff
	for _, el := range curr {
		prevEl, existed := prevByHash[ElementHash(el)]
		if !existed {
			diff.Added = append(diff.Added, el)
			continue
		}
		changes := diffProperties(prevEl, el)
		if len(changes) > 0 {
			diff.Changed = append(diff.Changed, Change{
				ID:      el.ID,
				Control: el.ControlType,
				Name:    el.Name,
				Changes: changes,
			})
		} else {
			diff.UnchangedCount++
		}
	}
	for _, el := range prev {
		if _, exists := currByHash[ElementHash(el)]; !exists {
			diff.Removed = append(diff.Removed, el)
		}
	}
	return diff
}

// diffProperties compares the mutable properties of two hash-matched
// elements: value, bounds, and focus. Name, control type, window, and tag
// are part of the hash and cannot differ here.
func diffProperties(prev, curr Element) map[string][2]string {
	diffs := make(map[string][2]string)
	if prev.Value != curr.Value {
		diffs["v"] = [2]string{prev.Value, curr.Value}
	}
	if prev.Bounds != curr.Bounds {
		diffs["box"] = [2]string{
			fmt.Sprintf("%v", prev.Bounds),
			fmt.Sprintf("%v", curr.Bounds),
		}
	}
	if prev.Focused != curr.Focused {
		diffs["f"] = [2]string{
			fmt.Sprintf("%v", prev.Focused),
			fmt.Sprintf("%v", curr.Focused),
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return diffs
}

package model

import "testing"

func sampleElements() []Element {
	return []Element{
		{ID: 1, WindowName: "Notepad", ControlType: "ButtonControl", Name: "Save", Tag: TagInteractive},
		{ID: 2, WindowName: "Notepad", ControlType: "EditControl", Name: "", Value: "hello world", Tag: TagInteractive},
		{ID: 3, WindowName: "Notepad", ControlType: "TextControl", Name: "Ln 1, Col 1", Tag: TagInformative},
		{ID: 4, WindowName: "Settings", ControlType: "ListControl", Name: "Options", Tag: TagScrollable},
	}
}

func TestFilterApply_NoFilters(t *testing.T) {
	elements := sampleElements()
	result := Filter{}.Apply(elements)
	if len(result) != len(elements) {
		t.Errorf("expected %d elements, got %d", len(elements), len(result))
	}
}

func TestFilterApply_Tags(t *testing.T) {
	result := Filter{Tags: []Tag{TagInteractive}}.Apply(sampleElements())
	if len(result) != 2 {
		t.Fatalf("expected 2 interactive elements, got %d", len(result))
	}
	if result[0].ID != 1 || result[1].ID != 2 {
		t.Errorf("order not preserved: %d, %d", result[0].ID, result[1].ID)
	}
}

func TestFilterApply_Window(t *testing.T) {
	result := Filter{Window: "settings"}.Apply(sampleElements())
	if len(result) != 1 || result[0].ID != 4 {
		t.Errorf("expected element 4 only, got %v", result)
	}
}

func TestFilterApply_TextMatchesNameAndValue(t *testing.T) {
	result := Filter{Text: "HELLO"}.Apply(sampleElements())
	if len(result) != 1 || result[0].ID != 2 {
		t.Errorf("expected value match on element 2, got %v", result)
	}
	result = Filter{Text: "save"}.Apply(sampleElements())
	if len(result) != 1 || result[0].ID != 1 {
		t.Errorf("expected name match on element 1, got %v", result)
	}
}

func TestFilterApply_Control(t *testing.T) {
	result := Filter{Control: "TextControl"}.Apply(sampleElements())
	if len(result) != 1 || result[0].ID != 3 {
		t.Errorf("expected element 3 only, got %v", result)
	}
}

func TestFilterApply_Combined(t *testing.T) {
	result := Filter{Tags: []Tag{TagInteractive}, Window: "Notepad", Text: "save"}.Apply(sampleElements())
	if len(result) != 1 || result[0].ID != 1 {
		t.Errorf("expected element 1 only, got %v", result)
	}
}

func TestParseTags(t *testing.T) {
	tags := ParseTags("interactive, Scrollable,,")
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0] != TagInteractive || tags[1] != TagScrollable {
		t.Errorf("unexpected tags: %v", tags)
	}
	if ParseTags("") != nil {
		t.Error("empty input should yield nil")
	}
}

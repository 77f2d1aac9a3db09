package capture

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/platform/fake"
)

func dialogTree() *fake.Node {
	return &fake.Node{
		ControlType: "PaneControl",
		Bounds:      model.BoundingBox{Left: 0, Top: 0, Right: 800, Bottom: 600},
		Children: []*fake.Node{
			{ControlType: "ButtonControl", Name: "OK",
				Bounds: model.BoundingBox{Left: 10, Top: 10, Right: 110, Bottom: 40}},
			{ControlType: "ButtonControl", Name: "Cancel", Disabled: true,
				Bounds: model.BoundingBox{Left: 10, Top: 50, Right: 110, Bottom: 80}},
			{ControlType: "TextControl", Name: "Status",
				Bounds: model.BoundingBox{Left: 10, Top: 90, Right: 200, Bottom: 110}},
			{ControlType: "GroupControl",
				Bounds: model.BoundingBox{Left: 0, Top: 120, Right: 800, Bottom: 600},
				Children: []*fake.Node{
					{ControlType: "EditControl", Value: "draft",
						Bounds: model.BoundingBox{Left: 10, Top: 130, Right: 300, Bottom: 160}},
				}},
		},
	}
}

func captureOne(t *testing.T, b *fake.Backend, win model.Window, opts Options) []model.Element {
	t.Helper()
	conn, err := b.NewConn()
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	defer conn.Release()
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	elements, err := walkWindow(context.Background(), conn, win, opts, zap.NewNop())
	if err != nil {
		t.Fatalf("walk window: %v", err)
	}
	return elements
}

func TestWalkWindow_ClassifiesDialog(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "Save As"}
	b.AddWindow(win, dialogTree())

	elements := captureOne(t, b, win, Options{})

	byName := map[string]model.Element{}
	for _, el := range elements {
		byName[el.Name] = el
	}
	if byName["OK"].Tag != model.TagInteractive {
		t.Errorf("enabled OK button: expected interactive, got %s", byName["OK"].Tag)
	}
	if byName["Cancel"].Tag != model.TagInformative {
		t.Errorf("disabled Cancel button: expected informative, got %s", byName["Cancel"].Tag)
	}
	if byName["Status"].Tag != model.TagInformative {
		t.Errorf("status text: expected informative, got %s", byName["Status"].Tag)
	}
	// The anonymous group is traversed but not reported; its edit child is.
	for _, el := range elements {
		if el.ControlType == "GroupControl" {
			t.Error("anonymous group must not appear in output")
		}
	}
	found := false
	for _, el := range elements {
		if el.ControlType == "EditControl" && el.Value == "draft" {
			found = true
			if el.Tag != model.TagInteractive {
				t.Errorf("edit with value: expected interactive, got %s", el.Tag)
			}
		}
	}
	if !found {
		t.Error("edit inside the group was not reported")
	}
}

func TestWalkWindow_PreOrder(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "Save As"}
	b.AddWindow(win, dialogTree())

	elements := captureOne(t, b, win, Options{})

	var names []string
	for _, el := range elements {
		names = append(names, firstNonEmpty(el.Name, el.Value))
	}
	want := []string{"OK", "Cancel", "Status", "draft"}
	if len(names) != len(want) {
		t.Fatalf("expected %d elements, got %d: %v", len(want), len(names), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestWalkWindow_WindowNameFromRoot(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "fallback"}
	tree := dialogTree()
	tree.Name = "Progman"
	b.AddWindow(win, tree)

	elements := captureOne(t, b, win, Options{})
	if len(elements) == 0 {
		t.Fatal("expected elements")
	}
	if elements[0].WindowName != "Desktop" {
		t.Errorf("expected corrected window name Desktop, got %q", elements[0].WindowName)
	}
}

func TestWalkWindow_ScrollableList(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "Mail"}
	b.AddWindow(win, &fake.Node{
		ControlType: "PaneControl",
		Bounds:      model.BoundingBox{Left: 0, Top: 0, Right: 800, Bottom: 600},
		Children: []*fake.Node{
			{ControlType: "ListControl", AutomationID: "MessageList",
				Bounds: model.BoundingBox{Left: 0, Top: 0, Right: 400, Bottom: 600},
				Scroll: &model.ScrollInfo{Vertical: true, VerticalPercent: 40}},
		},
	})

	elements := captureOne(t, b, win, Options{})
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	el := elements[0]
	if el.Tag != model.TagScrollable {
		t.Fatalf("expected scrollable, got %s", el.Tag)
	}
	if el.Name != "MessageList" {
		t.Errorf("anonymous scroll container should take its automation id, got %q", el.Name)
	}
	if el.Scroll == nil || !el.Scroll.Vertical || el.Scroll.VerticalPercent != 40 {
		t.Errorf("unexpected scroll state: %+v", el.Scroll)
	}
}

func TestWalkWindow_BatchedFetchSkipsScrollQueries(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "Mail"}
	list := &fake.Node{ControlType: "ListControl",
		Bounds: model.BoundingBox{Left: 0, Top: 0, Right: 400, Bottom: 600},
		Scroll: &model.ScrollInfo{Vertical: true}}
	b.AddWindow(win, &fake.Node{
		ControlType: "PaneControl",
		Bounds:      model.BoundingBox{Left: 0, Top: 0, Right: 800, Bottom: 600},
		Children:    []*fake.Node{list},
	})

	captureOne(t, b, win, Options{})
	if b.SubtreeCalls != 1 {
		t.Errorf("expected 1 subtree fetch, got %d", b.SubtreeCalls)
	}
	if b.ChildCalls != 0 {
		t.Errorf("batched walk must not fetch children individually, got %d calls", b.ChildCalls)
	}
	if b.ScrollCalls[list] != 0 {
		t.Errorf("batched walk must not query the scroll pattern, got %d calls", b.ScrollCalls[list])
	}
}

func TestWalkWindow_PerNodeFallback(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "Mail"}
	list := &fake.Node{ControlType: "ListControl", AutomationID: "MessageList",
		Bounds: model.BoundingBox{Left: 0, Top: 0, Right: 400, Bottom: 600},
		Scroll: &model.ScrollInfo{Vertical: true, VerticalPercent: 40}}
	b.AddWindow(win, &fake.Node{
		ControlType: "PaneControl",
		Bounds:      model.BoundingBox{Left: 0, Top: 0, Right: 800, Bottom: 600},
		Children:    []*fake.Node{list},
	})
	b.RejectSubtree[win.Handle] = true

	elements := captureOne(t, b, win, Options{})

	if b.SubtreeCalls != 0 {
		t.Errorf("rejected subtree must not count as a batched fetch, got %d", b.SubtreeCalls)
	}
	if b.ChildCalls == 0 {
		t.Error("fallback walk should fetch children per node")
	}
	// Scroll pattern queried exactly once for the node, memoized after.
	if got := b.ScrollCalls[list]; got != 1 {
		t.Errorf("expected exactly 1 scroll query, got %d", got)
	}
	if len(elements) != 1 || elements[0].Tag != model.TagScrollable {
		t.Fatalf("fallback walk produced wrong elements: %v", elements)
	}
	if elements[0].Scroll == nil || elements[0].Scroll.VerticalPercent != 40 {
		t.Errorf("unexpected scroll state: %+v", elements[0].Scroll)
	}
}

func TestWalkWindow_StaleRetriesThenSucceeds(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "App"}
	b.AddWindow(win, &fake.Node{
		ControlType:  "PaneControl",
		Bounds:       model.BoundingBox{Left: 0, Top: 0, Right: 800, Bottom: 600},
		StaleFetches: 2,
		Children: []*fake.Node{
			{ControlType: "ButtonControl", Name: "OK",
				Bounds: model.BoundingBox{Left: 10, Top: 10, Right: 110, Bottom: 40}},
		},
	})
	b.RejectSubtree[win.Handle] = true

	elements := captureOne(t, b, win, Options{})
	if len(elements) != 1 || elements[0].Name != "OK" {
		t.Errorf("expected OK after retries, got %v", elements)
	}
}

func TestWalkWindow_StaleBeyondRetriesSkipsSubtree(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "App"}
	b.AddWindow(win, &fake.Node{
		ControlType: "PaneControl",
		Bounds:      model.BoundingBox{Left: 0, Top: 0, Right: 800, Bottom: 600},
		Children: []*fake.Node{
			{ControlType: "GroupControl", Name: "Flaky", StaleFetches: 3,
				Bounds: model.BoundingBox{Left: 0, Top: 0, Right: 400, Bottom: 600},
				Children: []*fake.Node{
					{ControlType: "ButtonControl", Name: "Hidden",
						Bounds: model.BoundingBox{Left: 10, Top: 10, Right: 110, Bottom: 40}},
				}},
			{ControlType: "ButtonControl", Name: "Visible",
				Bounds: model.BoundingBox{Left: 410, Top: 10, Right: 510, Bottom: 40}},
		},
	})
	b.RejectSubtree[win.Handle] = true

	elements := captureOne(t, b, win, Options{})

	for _, el := range elements {
		if el.Name == "Hidden" {
			t.Error("children behind a persistently stale node must be skipped")
		}
	}
	found := false
	for _, el := range elements {
		if el.Name == "Visible" {
			found = true
		}
	}
	if !found {
		t.Error("a stale subtree must not stop the rest of the walk")
	}
}

func TestWalkWindow_DepthBoundary(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "Deep"}
	b.AddWindow(win, &fake.Node{
		ControlType: "PaneControl",
		Bounds:      model.BoundingBox{Left: 0, Top: 0, Right: 800, Bottom: 600},
		Children: []*fake.Node{
			{ControlType: "GroupControl", Name: "Level1",
				Bounds: model.BoundingBox{Left: 0, Top: 0, Right: 800, Bottom: 600},
				Children: []*fake.Node{
					{ControlType: "PaneControl",
						Bounds: model.BoundingBox{Left: 0, Top: 0, Right: 800, Bottom: 600},
						Children: []*fake.Node{
							{ControlType: "ButtonControl", Name: "TooDeep",
								Bounds: model.BoundingBox{Left: 10, Top: 10, Right: 110, Bottom: 40}},
						}},
				}},
		},
	})
	// Per-node so the depth bound is enforced by the walker, not the fetch.
	b.RejectSubtree[win.Handle] = true

	elements := captureOne(t, b, win, Options{MaxDepth: 2})

	var boundary *model.Element
	for i := range elements {
		if elements[i].Name == "TooDeep" {
			t.Error("node past the depth bound must not appear")
		}
		if elements[i].Truncated {
			boundary = &elements[i]
		}
	}
	if boundary == nil {
		t.Fatal("expected a truncation marker on the boundary node")
	}
	if boundary.ControlType != "PaneControl" {
		t.Errorf("expected the depth-2 pane as boundary, got %s", boundary.ControlType)
	}
	// A boundary node that would be ignored is surfaced so the truncation
	// is visible in the snapshot.
	if boundary.Tag != model.TagInformative {
		t.Errorf("expected boundary pane reported informative, got %s", boundary.Tag)
	}
	if b.ChildCalls > 2 {
		t.Errorf("walker fetched children past the bound: %d calls", b.ChildCalls)
	}
}

func TestWalkWindow_ClipsToWindowBounds(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "App"}
	b.AddWindow(win, &fake.Node{
		ControlType: "PaneControl",
		Bounds:      model.BoundingBox{Left: 0, Top: 0, Right: 400, Bottom: 300},
		Children: []*fake.Node{
			{ControlType: "ButtonControl", Name: "Overhang",
				Bounds: model.BoundingBox{Left: 350, Top: 10, Right: 500, Bottom: 40}},
			{ControlType: "ButtonControl", Name: "Outside",
				Bounds: model.BoundingBox{Left: 600, Top: 10, Right: 700, Bottom: 40}},
		},
	})

	elements := captureOne(t, b, win, Options{})
	if len(elements) != 1 {
		t.Fatalf("expected only the overhanging button, got %v", elements)
	}
	el := elements[0]
	if el.Bounds.Right != 400 {
		t.Errorf("expected bounds clipped to window edge, got %v", el.Bounds)
	}
	if el.Point.X >= 400 {
		t.Errorf("center must lie inside the clipped box, got %v", el.Point)
	}
}

func TestWalkWindow_DOMMode(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "Browser", Browser: true}
	b.AddWindow(win, &fake.Node{
		ControlType: "PaneControl",
		Bounds:      model.BoundingBox{Left: 0, Top: 0, Right: 1200, Bottom: 800},
		Children: []*fake.Node{
			{ControlType: "ToolBarControl", Name: "Navigation",
				Bounds: model.BoundingBox{Left: 0, Top: 0, Right: 1200, Bottom: 60},
				Children: []*fake.Node{
					{ControlType: "ButtonControl", Name: "Back",
						Bounds: model.BoundingBox{Left: 0, Top: 0, Right: 40, Bottom: 40}},
				}},
			{ControlType: "DocumentControl", AutomationID: "RootWebArea",
				Bounds: model.BoundingBox{Left: 0, Top: 60, Right: 1200, Bottom: 800},
				Scroll: &model.ScrollInfo{Vertical: true, VerticalPercent: 0},
				Children: []*fake.Node{
					{ControlType: "HyperlinkControl", Name: "Read more",
						Bounds: model.BoundingBox{Left: 20, Top: 100, Right: 200, Bottom: 120}},
				}},
		},
	})

	elements := captureOne(t, b, win, Options{DOMMode: true})

	for _, el := range elements {
		if el.Name == "Back" {
			t.Error("browser chrome must not appear in DOM mode")
		}
	}
	if len(elements) == 0 || elements[0].Name != "DOM" {
		t.Fatalf("expected the document scroll element first, got %v", elements)
	}
	found := false
	for _, el := range elements {
		if el.Name == "Read more" && el.Tag == model.TagInteractive {
			found = true
		}
	}
	if !found {
		t.Error("page content inside the document was not reported")
	}
}

func TestWalkWindow_DOMModeIgnoredForNonBrowser(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "Save As"}
	b.AddWindow(win, dialogTree())

	elements := captureOne(t, b, win, Options{DOMMode: true})
	if len(elements) != 4 {
		t.Errorf("DOM mode on a non-browser window should capture normally, got %d elements", len(elements))
	}
}

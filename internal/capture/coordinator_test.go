package capture

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/platform/fake"
)

func buttonTree(names ...string) *fake.Node {
	root := &fake.Node{
		ControlType: "PaneControl",
		Bounds:      model.BoundingBox{Left: 0, Top: 0, Right: 800, Bottom: 600},
	}
	for i, name := range names {
		root.Children = append(root.Children, &fake.Node{
			ControlType: "ButtonControl",
			Name:        name,
			Bounds:      model.BoundingBox{Left: 10, Top: 10 + 40*i, Right: 110, Bottom: 40 + 40*i},
		})
	}
	return root
}

func TestCapture_EmptyWindowList(t *testing.T) {
	b := fake.NewBackend()
	coord := NewCoordinator(b.NewConn, nil, nil)
	_, err := coord.Capture(context.Background(), nil, Options{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCapture_WindowOrderAndIDs(t *testing.T) {
	b := fake.NewBackend()
	first := model.Window{Handle: 1, Title: "First"}
	second := model.Window{Handle: 2, Title: "Second"}
	third := model.Window{Handle: 3, Title: "Third"}
	b.AddWindow(first, buttonTree("A1", "A2"))
	b.AddWindow(second, buttonTree("B1"))
	b.AddWindow(third, buttonTree("C1", "C2", "C3"))

	coord := NewCoordinator(b.NewConn, nil, nil)
	state, err := coord.Capture(context.Background(), []model.Window{first, second, third}, Options{})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	want := []string{"A1", "A2", "B1", "C1", "C2", "C3"}
	if len(state.Elements) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(state.Elements))
	}
	for i, el := range state.Elements {
		if el.Name != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], el.Name)
		}
		if el.ID != i+1 {
			t.Errorf("position %d: expected id %d, got %d", i, i+1, el.ID)
		}
	}
}

func TestCapture_OrderStableAcrossRuns(t *testing.T) {
	b := fake.NewBackend()
	windows := make([]model.Window, 6)
	for i := range windows {
		windows[i] = model.Window{Handle: uintptr(i + 1), Title: "W"}
		b.AddWindow(windows[i], buttonTree(string(rune('A'+i))))
	}

	coord := NewCoordinator(b.NewConn, nil, nil)
	var first []string
	for run := 0; run < 5; run++ {
		state, err := coord.Capture(context.Background(), windows, Options{})
		if err != nil {
			t.Fatalf("capture: %v", err)
		}
		var names []string
		for _, el := range state.Elements {
			names = append(names, el.Name)
		}
		if run == 0 {
			first = names
			continue
		}
		for i := range first {
			if names[i] != first[i] {
				t.Fatalf("run %d changed element order: %v vs %v", run, names, first)
			}
		}
	}
}

func TestCapture_PerWindowFailure(t *testing.T) {
	b := fake.NewBackend()
	good := model.Window{Handle: 1, Title: "Good"}
	bad := model.Window{Handle: 2, Title: "Bad"}
	alsoGood := model.Window{Handle: 3, Title: "AlsoGood"}
	b.AddWindow(good, buttonTree("G"))
	b.AddWindow(bad, buttonTree("X"))
	b.AddWindow(alsoGood, buttonTree("H"))
	b.FailWindows[bad.Handle] = errors.New("window destroyed")

	coord := NewCoordinator(b.NewConn, nil, nil)
	state, err := coord.Capture(context.Background(), []model.Window{good, bad, alsoGood}, Options{})
	if err != nil {
		t.Fatalf("a failing window must not fail the capture: %v", err)
	}

	if len(state.Elements) != 2 {
		t.Errorf("expected fragments from the healthy windows, got %v", state.Elements)
	}
	if state.Elements[0].Name != "G" || state.Elements[1].Name != "H" {
		t.Errorf("unexpected elements: %v", state.Elements)
	}
	if len(state.Errors) != 1 {
		t.Fatalf("expected 1 window error, got %d", len(state.Errors))
	}
	we := state.Errors[0]
	if we.Handle != bad.Handle || we.Title != "Bad" {
		t.Errorf("error record points at the wrong window: %+v", we)
	}
	if !strings.Contains(we.Err, "window destroyed") {
		t.Errorf("error record lost the cause: %q", we.Err)
	}
}

func TestCapture_ConnectFailure(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "App"}
	b.AddWindow(win, buttonTree("A"))
	b.FailConnect = errors.New("provider down")

	coord := NewCoordinator(b.NewConn, nil, nil)
	state, err := coord.Capture(context.Background(), []model.Window{win}, Options{})
	if err != nil {
		t.Fatalf("connection failure is per-window: %v", err)
	}
	if len(state.Errors) != 1 {
		t.Fatalf("expected 1 window error, got %d", len(state.Errors))
	}
	if !strings.Contains(state.Errors[0].Err, "connection unavailable") {
		t.Errorf("expected a connection error record, got %q", state.Errors[0].Err)
	}
}

func TestCapture_TimeoutReturnsPartialResults(t *testing.T) {
	if runtime.NumCPU() < 2 {
		t.Skip("needs at least two parallel workers")
	}
	b := fake.NewBackend()
	fast := model.Window{Handle: 1, Title: "Fast"}
	slow := model.Window{Handle: 2, Title: "Slow"}
	b.AddWindow(fast, buttonTree("F"))
	b.AddWindow(slow, buttonTree("S"))
	b.Delay[slow.Handle] = 2 * time.Second

	coord := NewCoordinator(b.NewConn, nil, nil)
	start := time.Now()
	state, err := coord.Capture(context.Background(), []model.Window{fast, slow},
		Options{Timeout: 150 * time.Millisecond})
	if err != nil {
		t.Fatalf("timeout must yield partial results, not an error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("capture did not honor its deadline")
	}

	if len(state.Elements) != 1 || state.Elements[0].Name != "F" {
		t.Errorf("expected the fast window's fragment, got %v", state.Elements)
	}
	if len(state.Errors) != 1 {
		t.Fatalf("expected 1 timeout record, got %d", len(state.Errors))
	}
	we := state.Errors[0]
	if we.Handle != slow.Handle {
		t.Errorf("timeout record points at the wrong window: %+v", we)
	}
	if !strings.Contains(we.Err, "timed out") {
		t.Errorf("expected a timeout error record, got %q", we.Err)
	}
}

func TestCapture_StampsGenerationAndPublishes(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "App"}
	b.AddWindow(win, buttonTree("A"))

	gen := &Generation{}
	gen.Bump()
	gen.Bump()
	coord := NewCoordinator(b.NewConn, gen, nil)

	if coord.Latest() != nil {
		t.Error("Latest must be nil before the first capture")
	}
	state, err := coord.Capture(context.Background(), []model.Window{win}, Options{})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if state.Generation != 2 {
		t.Errorf("expected generation 2, got %d", state.Generation)
	}
	if coord.Latest() != state {
		t.Error("Latest must return the published snapshot")
	}
}

func TestCapture_StateIsFreshPerCall(t *testing.T) {
	b := fake.NewBackend()
	win := model.Window{Handle: 1, Title: "App"}
	b.AddWindow(win, buttonTree("A"))

	coord := NewCoordinator(b.NewConn, nil, nil)
	first, err := coord.Capture(context.Background(), []model.Window{win}, Options{})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	second, err := coord.Capture(context.Background(), []model.Window{win}, Options{})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if first == second {
		t.Error("each capture must produce a new snapshot")
	}
}

func TestCapture_EachWorkerGetsOwnConnection(t *testing.T) {
	b := fake.NewBackend()
	windows := make([]model.Window, 4)
	for i := range windows {
		windows[i] = model.Window{Handle: uintptr(i + 1), Title: "W"}
		b.AddWindow(windows[i], buttonTree("X"))
	}

	coord := NewCoordinator(b.NewConn, nil, nil)
	if _, err := coord.Capture(context.Background(), windows, Options{}); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if b.ConnCount != len(windows) {
		t.Errorf("expected %d connections, got %d", len(windows), b.ConnCount)
	}
}

// Package fake provides an in-memory accessibility backend for tests.
// Trees are scripted as Node literals; the backend converts them to
// platform.RawNode values exactly the way a real provider would, including
// batched-subtree versus per-node fetch behavior and stale-element faults.
package fake

import (
	"fmt"
	"sync"
	"time"

	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/platform"
)

// Node scripts one element of a fake accessibility tree.
type Node struct {
	ControlType  string
	Name         string
	Value        string
	AutomationID string
	Shortcut     string
	Bounds       model.BoundingBox
	Disabled     bool
	Offscreen    bool
	Focused      bool
	Focusable    bool
	// Scroll makes the node report a scroll pattern with this state.
	Scroll *model.ScrollInfo
	// StaleFetches makes the first N FetchChildren calls on this node fail
	// with platform.ErrElementStale.
	StaleFetches int
	Children     []*Node
}

// Backend holds the scripted windows and trees shared by all Conns it hands
// out. Counters let tests assert on fetch behavior.
type Backend struct {
	Windows []model.Window
	Trees   map[uintptr]*Node
	// RejectSubtree forces per-node fallback for these windows.
	RejectSubtree map[uintptr]bool
	// FailWindows makes WindowRoot and FetchSubtree fail for these windows.
	FailWindows map[uintptr]error
	// FailConnect makes NewConn itself fail.
	FailConnect error
	// Delay stalls subtree fetches for these windows, simulating a slow
	// cross-process provider.
	Delay  map[uintptr]time.Duration
	Screen model.BoundingBox

	mu           sync.Mutex
	SubtreeCalls int
	ChildCalls   int
	ScrollCalls  map[*Node]int
	ConnCount    int
	staleLeft    map[*Node]int
}

// NewBackend returns a Backend with an HD screen and empty script maps.
func NewBackend() *Backend {
	return &Backend{
		Trees:         map[uintptr]*Node{},
		Delay:         map[uintptr]time.Duration{},
		RejectSubtree: map[uintptr]bool{},
		FailWindows:   map[uintptr]error{},
		Screen:        model.BoundingBox{Right: 1920, Bottom: 1080},
		ScrollCalls:   map[*Node]int{},
		staleLeft:     map[*Node]int{},
	}
}

// AddWindow scripts a window and its element tree.
func (b *Backend) AddWindow(w model.Window, tree *Node) {
	b.Windows = append(b.Windows, w)
	b.Trees[w.Handle] = tree
}

// NewConn implements the platform.NewConnFunc signature.
func (b *Backend) NewConn() (platform.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailConnect != nil {
		return nil, fmt.Errorf("fake backend: %w", b.FailConnect)
	}
	b.ConnCount++
	return &conn{backend: b}, nil
}

type conn struct {
	backend  *Backend
	released bool
}

func (c *conn) ListWindows() ([]model.Window, error) {
	out := make([]model.Window, len(c.backend.Windows))
	copy(out, c.backend.Windows)
	return out, nil
}

func (c *conn) WindowRoot(handle uintptr) (*platform.RawNode, error) {
	b := c.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.FailWindows[handle]; err != nil {
		return nil, err
	}
	root, ok := b.Trees[handle]
	if !ok {
		return nil, fmt.Errorf("window %#x: %w", handle, platform.ErrElementStale)
	}
	return convert(root, false), nil
}

func (c *conn) FetchSubtree(handle uintptr, maxDepth int) (*platform.RawNode, error) {
	b := c.backend
	if d := b.Delay[handle]; d > 0 {
		time.Sleep(d)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.FailWindows[handle]; err != nil {
		return nil, err
	}
	if b.RejectSubtree[handle] {
		return nil, fmt.Errorf("window %#x: subtree cache request rejected", handle)
	}
	root, ok := b.Trees[handle]
	if !ok {
		return nil, fmt.Errorf("window %#x: %w", handle, platform.ErrElementStale)
	}
	b.SubtreeCalls++
	return convertSubtree(root, maxDepth, 0), nil
}

func (c *conn) FetchChildren(n *platform.RawNode) ([]*platform.RawNode, error) {
	b := c.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ChildCalls++

	node, ok := n.Ref.(*Node)
	if !ok {
		return nil, fmt.Errorf("fetch children: node has no live reference")
	}
	if left, seen := b.staleLeft[node]; seen {
		if left > 0 {
			b.staleLeft[node] = left - 1
			return nil, fmt.Errorf("fetch children %q: %w", node.Name, platform.ErrElementStale)
		}
	} else if node.StaleFetches > 0 {
		b.staleLeft[node] = node.StaleFetches - 1
		return nil, fmt.Errorf("fetch children %q: %w", node.Name, platform.ErrElementStale)
	}

	out := make([]*platform.RawNode, len(node.Children))
	for i, child := range node.Children {
		out[i] = convert(child, false)
	}
	return out, nil
}

func (c *conn) ResolveScroll(n *platform.RawNode) (*model.ScrollInfo, error) {
	b := c.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	node, ok := n.Ref.(*Node)
	if !ok {
		return nil, fmt.Errorf("resolve scroll: node has no live reference")
	}
	b.ScrollCalls[node]++
	if node.Scroll == nil {
		return nil, nil
	}
	info := *node.Scroll
	return &info, nil
}

func (c *conn) ScreenBounds() model.BoundingBox { return c.backend.Screen }

func (c *conn) Release() { c.released = true }

// convert maps one scripted node to a RawNode. Subtree conversion includes
// the resolved scroll state, matching a batched fetch; per-node conversion
// leaves scroll unresolved so the walker has to ask.
func convert(n *Node, batched bool) *platform.RawNode {
	raw := &platform.RawNode{
		Ref:               n,
		ControlType:       n.ControlType,
		LocalizedType:     n.ControlType,
		Name:              n.Name,
		AutomationID:      n.AutomationID,
		Value:             n.Value,
		Shortcut:          n.Shortcut,
		Bounds:            n.Bounds,
		IsControl:         true,
		IsEnabled:         !n.Disabled,
		IsOffscreen:       n.Offscreen,
		HasFocus:          n.Focused,
		KeyboardFocusable: n.Focusable,
		HasScrollPattern:  n.Scroll != nil,
	}
	if batched && n.Scroll != nil {
		info := *n.Scroll
		raw.SetScroll(&info)
	}
	return raw
}

func convertSubtree(n *Node, maxDepth, depth int) *platform.RawNode {
	raw := convert(n, true)
	raw.ChildrenFetched = true
	if maxDepth > 0 && depth >= maxDepth {
		return raw
	}
	for _, child := range n.Children {
		raw.Children = append(raw.Children, convertSubtree(child, maxDepth, depth+1))
	}
	return raw
}

package platform

import "github.com/mj1618/uitree/internal/model"

// RawNode is a transient per-fetch descriptor of one accessibility element.
// It lives only within a single capture of a single window and must never be
// referenced from any goroutine other than the one whose Conn produced it.
// Only the plain values it carries (strings, ints, rects) may leave a worker.
type RawNode struct {
	// Ref is an opaque provider reference owned by the Conn that produced
	// this node. It is nil when the node came from a batched subtree fetch.
	Ref any

	ControlType   string
	LocalizedType string
	Name          string
	AutomationID  string
	Value         string
	Shortcut      string
	Bounds        model.BoundingBox

	IsControl         bool
	IsEnabled         bool
	IsOffscreen       bool
	HasFocus          bool
	KeyboardFocusable bool
	Toggleable        bool

	// HasScrollPattern means the provider advertises the scroll pattern;
	// whether the range is non-trivial requires a ScrollInfo resolution.
	HasScrollPattern bool

	// Scroll caches the resolved scroll pattern state. Populated by the
	// subtree batch when available, otherwise filled lazily at most once
	// per traversal.
	Scroll         *model.ScrollInfo
	scrollResolved bool

	// Children are present after a subtree fetch (ChildrenFetched true) and
	// fetched lazily per node under the fallback strategy.
	Children        []*RawNode
	ChildrenFetched bool
}

// ScrollResolved reports whether the scroll pattern has already been queried
// for this node during the current traversal.
func (n *RawNode) ScrollResolved() bool { return n.scrollResolved }

// SetScroll records a resolved scroll pattern result so it is never queried
// again for this node.
func (n *RawNode) SetScroll(info *model.ScrollInfo) {
	n.Scroll = info
	n.scrollResolved = true
}

// Conn is a live connection to the OS accessibility provider. A Conn is
// valid only on the goroutine that acquired it: implementations lock their
// OS thread and initialize the provider there. Any other goroutine must
// acquire its own Conn. Conns are never shared, so they need no locking.
type Conn interface {
	// ListWindows enumerates the top-level windows currently on screen.
	ListWindows() ([]model.Window, error)

	// WindowRoot returns the root element of one window without fetching
	// descendants. Used under the per-node fallback strategy.
	WindowRoot(handle uintptr) (*RawNode, error)

	// FetchSubtree performs one batched fetch of the whole window subtree
	// with the fixed property set, down to maxDepth levels. Providers may
	// reject large subtrees; callers fall back to WindowRoot plus
	// FetchChildren for that window only.
	FetchSubtree(handle uintptr, maxDepth int) (*RawNode, error)

	// FetchChildren fetches the direct children of a node produced by this
	// Conn. Returns ErrElementStale (wrapped) when the node vanished.
	FetchChildren(n *RawNode) ([]*RawNode, error)

	// ResolveScroll queries the scroll pattern of a node produced by this
	// Conn. Returns nil when the node is not scrollable.
	ResolveScroll(n *RawNode) (*model.ScrollInfo, error)

	// ScreenBounds returns the virtual screen rectangle used for clamping
	// element bounds.
	ScreenBounds() model.BoundingBox

	// Release tears the connection down. It uninitializes the provider only
	// if this Conn's acquisition initialized it on this thread.
	Release()
}

package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/platform"
)

// documentRootAutomationID is the automation id browsers assign to the root
// of their accessibility DOM projection.
const documentRootAutomationID = "RootWebArea"

// walker traverses one window's element hierarchy on a single goroutine
// using a connection that goroutine owns. Nothing in a walker is shared.
type walker struct {
	conn   platform.Conn
	opts   Options
	log    *zap.Logger
	screen model.BoundingBox

	windowName string
	windowBox  model.BoundingBox
	// domMode restricts output to the document subtree of a browser window.
	domMode bool
}

type stackItem struct {
	node  *platform.RawNode
	depth int
}

// walkWindow captures one window's fragment. The returned elements carry
// only plain values; no provider reference ever leaves this function.
func walkWindow(ctx context.Context, conn platform.Conn, win model.Window, opts Options, log *zap.Logger) ([]model.Element, error) {
	w := &walker{
		conn:    conn,
		opts:    opts,
		log:     log,
		screen:  conn.ScreenBounds(),
		domMode: opts.DOMMode && win.Browser,
	}

	// Preferred strategy: one batched fetch covering the whole subtree and
	// the fixed property set. Falls back to per-node fetches when the
	// provider rejects the request; the downgrade is local to this window.
	root, err := conn.FetchSubtree(win.Handle, opts.MaxDepth)
	if err != nil {
		log.Debug("subtree fetch rejected, using per-node fallback",
			zap.Uintptr("handle", win.Handle), zap.Error(err))
		root, err = conn.WindowRoot(win.Handle)
		if err != nil {
			return nil, fmt.Errorf("window root: %w", err)
		}
	}

	w.windowName = model.CorrectWindowName(firstNonEmpty(strings.TrimSpace(root.Name), win.Title))
	w.windowBox = root.Bounds.Intersect(w.screen)

	var out []model.Element

	if w.domMode {
		dom, err := w.findDocumentRoot(ctx, root)
		if err != nil {
			return nil, err
		}
		if dom == nil {
			// Browser window with no document yet; nothing to report.
			return nil, nil
		}
		// The document element itself is reported as a scroll node so
		// callers can page through the page content.
		w.windowBox = dom.Bounds.Intersect(w.screen)
		if docEl := w.documentScrollElement(dom); docEl != nil {
			out = append(out, *docEl)
		}
		root = dom
	}

	elems, err := w.walk(ctx, root)
	if err != nil {
		return nil, err
	}
	return append(out, elems...), nil
}

// walk runs the iterative pre-order traversal. An explicit stack with a
// depth counter replaces call-stack recursion so pathologically deep trees
// terminate instead of exhausting the stack.
func (w *walker) walk(ctx context.Context, root *platform.RawNode) ([]model.Element, error) {
	var out []model.Element
	stack := []stackItem{{node: root, depth: 0}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, depth := item.node, item.depth

		if depth >= w.opts.MaxDepth {
			// Boundary node: recorded with a truncation marker, descendants
			// dropped. Truncation is not an error.
			out = append(out, w.boundaryElement(node))
			continue
		}

		patterns := w.resolvePatterns(node)
		tag := model.Classify(node.ControlType, patterns, node.IsEnabled, node.IsOffscreen)
		if el, ok := w.buildElement(node, tag, false); ok {
			out = append(out, el)
		}

		children, err := w.children(node)
		if err != nil {
			// Stale beyond retries: skip this subtree, keep walking the rest.
			w.log.Debug("skipping stale subtree",
				zap.String("window", w.windowName),
				zap.String("name", node.Name), zap.Error(err))
			continue
		}
		// Reverse push so pop order yields pre-order traversal.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, stackItem{node: children[i], depth: depth + 1})
		}
	}
	return out, nil
}

// children returns a node's children from the batched subtree when present,
// falling back to a live fetch with bounded stale retries.
func (w *walker) children(node *platform.RawNode) ([]*platform.RawNode, error) {
	if node.ChildrenFetched {
		return node.Children, nil
	}
	var lastErr error
	for attempt := 1; attempt <= staleRetries; attempt++ {
		children, err := w.conn.FetchChildren(node)
		if err == nil {
			return children, nil
		}
		lastErr = err
		if !errors.Is(err, platform.ErrElementStale) {
			return nil, err
		}
	}
	return nil, lastErr
}

// resolvePatterns derives classification flags from a node, querying the
// scroll pattern at most once per node per traversal. Batched fetches carry
// the resolved state already; the fallback path asks the provider once and
// memoizes the answer on the node.
func (w *walker) resolvePatterns(node *platform.RawNode) model.Patterns {
	p := model.Patterns{
		KeyboardFocusable: node.KeyboardFocusable,
		Toggleable:        node.Toggleable,
		Named:             strings.TrimSpace(node.Name) != "",
		HasValue:          strings.TrimSpace(node.Value) != "",
	}
	if node.HasScrollPattern {
		if !node.ScrollResolved() {
			info, err := w.conn.ResolveScroll(node)
			if err != nil {
				w.log.Debug("scroll pattern query failed",
					zap.String("name", node.Name), zap.Error(err))
				info = nil
			}
			node.SetScroll(info)
		}
		if s := node.Scroll; s != nil {
			p.Scrollable = s.Vertical || s.Horizontal
		}
	}
	return p
}

// buildElement converts a classified node into an output element. Ignored
// nodes and nodes without visible area produce nothing unless boundary is
// set.
func (w *walker) buildElement(node *platform.RawNode, tag model.Tag, boundary bool) (model.Element, bool) {
	box := node.Bounds.Intersect(w.windowBox)
	if !boundary {
		if tag == model.TagIgnored {
			return model.Element{}, false
		}
		if box.Empty() {
			return model.Element{}, false
		}
	}
	if boundary && tag == model.TagIgnored {
		tag = model.TagInformative
	}

	name := strings.TrimSpace(node.Name)
	if tag == model.TagScrollable && name == "" {
		// Scroll containers are often anonymous; fall back to whatever
		// identity the provider gives us.
		name = firstNonEmpty(node.AutomationID, capitalize(node.LocalizedType))
	}

	el := model.Element{
		WindowName:  w.windowName,
		ControlType: node.ControlType,
		Name:        name,
		Tag:         tag,
		Bounds:      box,
		Point:       box.Center(),
		Value:       strings.TrimSpace(node.Value),
		Shortcut:    node.Shortcut,
		Focused:     node.HasFocus,
		Truncated:   boundary,
	}
	if tag == model.TagScrollable && node.Scroll != nil {
		info := *node.Scroll
		el.Scroll = &info
	}
	return el, true
}

// boundaryElement records a node sitting on the max-depth boundary. The
// node itself is kept; only its descendants are dropped.
func (w *walker) boundaryElement(node *platform.RawNode) model.Element {
	patterns := w.resolvePatterns(node)
	tag := model.Classify(node.ControlType, patterns, node.IsEnabled, node.IsOffscreen)
	el, _ := w.buildElement(node, tag, true)
	return el
}

// findDocumentRoot locates the browser document content element by its
// automation id, searching breadth-first so the shallow chrome layers are
// scanned before deep menu subtrees.
func (w *walker) findDocumentRoot(ctx context.Context, root *platform.RawNode) (*platform.RawNode, error) {
	queue := []stackItem{{node: root, depth: 0}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := queue[0]
		queue = queue[1:]
		if item.node.AutomationID == documentRootAutomationID {
			return item.node, nil
		}
		if item.depth >= w.opts.MaxDepth {
			continue
		}
		children, err := w.children(item.node)
		if err != nil {
			continue
		}
		for _, child := range children {
			queue = append(queue, stackItem{node: child, depth: item.depth + 1})
		}
	}
	return nil, nil
}

// documentScrollElement reports the document's own scroll position, giving
// callers a handle on the page as a whole.
func (w *walker) documentScrollElement(dom *platform.RawNode) *model.Element {
	if !dom.HasScrollPattern {
		return nil
	}
	if !dom.ScrollResolved() {
		info, err := w.conn.ResolveScroll(dom)
		if err != nil {
			info = nil
		}
		dom.SetScroll(info)
	}
	if dom.Scroll == nil {
		return nil
	}
	box := dom.Bounds.Intersect(w.screen)
	info := *dom.Scroll
	return &model.Element{
		WindowName:  w.windowName,
		ControlType: "DocumentControl",
		Name:        "DOM",
		Tag:         model.TagScrollable,
		Bounds:      box,
		Point:       box.Center(),
		Scroll:      &info,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

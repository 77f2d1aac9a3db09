//go:build windows

package uiawin

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-ole/go-ole"

	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/platform"
)

// COM hresults this package has to recognize.
const (
	hrSFalse              = 0x00000001 // already initialized on this thread
	hrRPCChangedMode      = 0x80010106 // initialized elsewhere with another model
	hrElementNotAvailable = 0x80040201 // UIA_E_ELEMENTNOTAVAILABLE
)

// available is the shared first-use capability probe: the first connection
// records whether the UIA provider can be constructed at all, so later
// failures report the root cause instead of a generic COM error. sync.Once
// is the double-checked construct-on-first-use primitive here; the
// connection objects themselves are thread-local and need no locking.
var available struct {
	once sync.Once
	err  error
}

// conn implements platform.Conn on one locked OS thread.
type conn struct {
	auto *iUIAutomation

	// uninitOnRelease is true only when this conn's acquisition initialized
	// COM on this thread. A thread that already held an apartment with a
	// different concurrency model must not be torn down by us.
	uninitOnRelease bool

	// Per-conn cache requests for the fallback strategy, built once.
	childrenReq *iUIAutomationCacheRequest

	// Every element this conn materialized, released together.
	elements []*iUIAutomationElement
}

// NewConn acquires a UIA connection bound to the calling goroutine. The
// goroutine is locked to its OS thread for the life of the connection.
func NewConn() (platform.Conn, error) {
	runtime.LockOSThread()

	c := &conn{}
	if err := c.initCOM(); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w: %v", platform.ErrConnectionUnavailable, err)
	}

	unknown, err := ole.CreateInstance(clsidCUIAutomation, iidIUIAutomation)
	available.once.Do(func() { available.err = err })
	if err != nil {
		if available.err != nil && !errors.Is(err, available.err) {
			err = fmt.Errorf("%v (first acquisition failed with: %v)", err, available.err)
		}
		c.teardownCOM()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w: create UIAutomation: %v", platform.ErrConnectionUnavailable, err)
	}
	c.auto = (*iUIAutomation)(unsafe.Pointer(unknown))
	return c, nil
}

func (c *conn) initCOM() error {
	err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED)
	switch {
	case err == nil:
		c.uninitOnRelease = true
	case hresult(err) == hrSFalse:
		// Already initialized on this thread; CoInitializeEx still demands
		// a matching CoUninitialize.
		c.uninitOnRelease = true
	case hresult(err) == hrRPCChangedMode:
		c.uninitOnRelease = false
	default:
		return err
	}
	return nil
}

func (c *conn) teardownCOM() {
	if c.uninitOnRelease {
		ole.CoUninitialize()
	}
}

// Release frees every COM object this conn materialized and unwinds the
// thread state its acquisition set up.
func (c *conn) Release() {
	for _, el := range c.elements {
		el.Release()
	}
	c.elements = nil
	if c.childrenReq != nil {
		c.childrenReq.Release()
		c.childrenReq = nil
	}
	if c.auto != nil {
		c.auto.Release()
		c.auto = nil
	}
	c.teardownCOM()
	runtime.UnlockOSThread()
}

func (c *conn) track(el *iUIAutomationElement) *iUIAutomationElement {
	c.elements = append(c.elements, el)
	return el
}

// FetchSubtree performs the batched fetch: one cache request covering the
// whole window subtree and the fixed property set, one cross-process call.
// maxDepth is advisory; UIA subtree caching has no depth knob, so depth
// bounding happens in the walker.
func (c *conn) FetchSubtree(handle uintptr, maxDepth int) (*platform.RawNode, error) {
	req, err := c.auto.CreateCacheRequest()
	if err != nil {
		return nil, err
	}
	defer req.Release()
	for _, prop := range subtreeProperties {
		if err := req.AddProperty(prop); err != nil {
			return nil, err
		}
	}
	if err := req.AddPattern(patternScroll); err != nil {
		return nil, err
	}
	if err := req.SetTreeScope(treeScopeSubtree); err != nil {
		return nil, err
	}

	root, err := c.auto.ElementFromHandleBuildCache(handle, req)
	if err != nil {
		return nil, staleOr(err)
	}
	return c.convertCached(c.track(root)), nil
}

// convertCached maps a cached element subtree to RawNodes without any
// further cross-process calls.
func (c *conn) convertCached(el *iUIAutomationElement) *platform.RawNode {
	raw := c.rawFromProps(el, true)
	raw.ChildrenFetched = true

	arr, err := el.GetCachedChildren()
	if err != nil || arr == nil {
		return raw
	}
	defer arr.Release()
	n, err := arr.Length()
	if err != nil {
		return raw
	}
	for i := 0; i < n; i++ {
		child, err := arr.Element(i)
		if err != nil {
			continue
		}
		raw.Children = append(raw.Children, c.convertCached(c.track(child)))
	}
	return raw
}

// WindowRoot fetches one window's root element with live properties, used
// when the subtree batch was rejected.
func (c *conn) WindowRoot(handle uintptr) (*platform.RawNode, error) {
	el, err := c.auto.ElementFromHandle(handle)
	if err != nil {
		return nil, staleOr(err)
	}
	return c.rawFromProps(c.track(el), false), nil
}

// FetchChildren issues one element+children cache request for a node on the
// fallback path.
func (c *conn) FetchChildren(n *platform.RawNode) ([]*platform.RawNode, error) {
	el, ok := n.Ref.(*iUIAutomationElement)
	if !ok || el == nil {
		return nil, fmt.Errorf("fetch children: node has no live element")
	}
	req, err := c.childrenRequest()
	if err != nil {
		return nil, err
	}
	updated, err := el.BuildUpdatedCache(req)
	if err != nil {
		return nil, staleOr(err)
	}
	c.track(updated)

	arr, err := updated.GetCachedChildren()
	if err != nil {
		return nil, staleOr(err)
	}
	if arr == nil {
		return nil, nil
	}
	defer arr.Release()

	count, err := arr.Length()
	if err != nil {
		return nil, err
	}
	children := make([]*platform.RawNode, 0, count)
	for i := 0; i < count; i++ {
		child, err := arr.Element(i)
		if err != nil {
			continue
		}
		children = append(children, c.rawFromProps(c.track(child), true))
	}
	return children, nil
}

func (c *conn) childrenRequest() (*iUIAutomationCacheRequest, error) {
	if c.childrenReq != nil {
		return c.childrenReq, nil
	}
	req, err := c.auto.CreateCacheRequest()
	if err != nil {
		return nil, err
	}
	for _, prop := range subtreeProperties {
		if err := req.AddProperty(prop); err != nil {
			req.Release()
			return nil, err
		}
	}
	if err := req.SetTreeScope(treeScopeElement | treeScopeChildren); err != nil {
		req.Release()
		return nil, err
	}
	c.childrenReq = req
	return req, nil
}

// ResolveScroll queries the live scroll pattern, used when the batched
// cache did not carry the scroll properties.
func (c *conn) ResolveScroll(n *platform.RawNode) (*model.ScrollInfo, error) {
	el, ok := n.Ref.(*iUIAutomationElement)
	if !ok || el == nil {
		return nil, fmt.Errorf("resolve scroll: node has no live element")
	}
	unk, err := el.GetCurrentPattern(patternScroll)
	if err != nil {
		return nil, staleOr(err)
	}
	if unk == nil {
		return nil, nil
	}
	pattern := (*iUIAutomationScrollPattern)(unsafe.Pointer(unk))
	defer pattern.Release()

	info := &model.ScrollInfo{
		Horizontal: pattern.horizontallyScrollable(),
		Vertical:   pattern.verticallyScrollable(),
	}
	if info.Horizontal {
		info.HorizontalPercent = pattern.horizontalPercent()
	}
	if info.Vertical {
		info.VerticalPercent = pattern.verticalPercent()
	}
	if !info.Horizontal && !info.Vertical {
		return nil, nil
	}
	return info, nil
}

// rawFromProps reads the fixed property set from an element. cached selects
// the cached getters; the live getters are the last-resort path.
func (c *conn) rawFromProps(el *iUIAutomationElement, cached bool) *platform.RawNode {
	get := el.GetCurrentPropertyValue
	if cached {
		get = el.GetCachedPropertyValue
	}
	str := func(prop int) string {
		v, err := get(prop)
		if err != nil {
			return ""
		}
		return variantString(v)
	}
	flag := func(prop int) bool {
		v, err := get(prop)
		if err != nil {
			return false
		}
		return variantBool(v)
	}
	num := func(prop int) float64 {
		v, err := get(prop)
		if err != nil {
			return 0
		}
		return variantFloat(v)
	}

	raw := &platform.RawNode{
		Ref:               el,
		Name:              str(propName),
		AutomationID:      str(propAutomationID),
		Shortcut:          str(propAcceleratorKey),
		LocalizedType:     str(propLocalizedType),
		IsControl:         flag(propIsControlElement),
		IsEnabled:         flag(propIsEnabled),
		IsOffscreen:       flag(propIsOffscreen),
		HasFocus:          flag(propHasKeyboardFocus),
		KeyboardFocusable: flag(propIsKeyboardFocusabl),
		Toggleable:        flag(propIsToggleAvailable),
		HasScrollPattern:  flag(propIsScrollAvailable),
	}
	if v, err := get(propControlType); err == nil {
		raw.ControlType = controlTypeName(variantInt(v))
	}
	if flag(propIsValueAvailable) {
		raw.Value = str(propValueValue)
	}
	if v, err := get(propBoundingRectangle); err == nil {
		left, top, width, height := variantRect(v)
		raw.Bounds = model.BoundingBox{
			Left:   int(left),
			Top:    int(top),
			Right:  int(left + width),
			Bottom: int(top + height),
		}
	}
	// Batched fetches carry the scroll state; resolve it here so the walker
	// never issues a live pattern call for cached nodes.
	if cached && raw.HasScrollPattern {
		info := &model.ScrollInfo{
			Horizontal: flag(propScrollHScrollable),
			Vertical:   flag(propScrollVScrollable),
		}
		if info.Horizontal {
			info.HorizontalPercent = num(propScrollHPercent)
		}
		if info.Vertical {
			info.VerticalPercent = num(propScrollVPercent)
		}
		if info.Horizontal || info.Vertical {
			raw.SetScroll(info)
		} else {
			raw.SetScroll(nil)
		}
	}
	return raw
}

// hresult extracts the COM error code from a go-ole error, or 0.
func hresult(err error) uintptr {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		return oleErr.Code()
	}
	return 0
}

// staleOr maps UIA_E_ELEMENTNOTAVAILABLE onto the portable stale sentinel.
func staleOr(err error) error {
	if hresult(err) == hrElementNotAvailable {
		return fmt.Errorf("%w: %v", platform.ErrElementStale, err)
	}
	return err
}

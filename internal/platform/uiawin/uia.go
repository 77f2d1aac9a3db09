//go:build windows

package uiawin

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
)

// COM identifiers for the UI Automation client.
var (
	clsidCUIAutomation = ole.NewGUID("{ff48dba4-60ef-4201-aa87-54103eef594e}")
	iidIUIAutomation   = ole.NewGUID("{30cbe57d-d9d0-452a-ab13-7ac5ac4825ee}")
)

// UIA property ids (UIAutomationClient.h).
const (
	propBoundingRectangle  = 30001
	propControlType        = 30003
	propLocalizedType      = 30004
	propName               = 30005
	propAcceleratorKey     = 30006
	propHasKeyboardFocus   = 30008
	propIsKeyboardFocusabl = 30009
	propIsEnabled          = 30010
	propAutomationID       = 30011
	propIsControlElement   = 30016
	propIsOffscreen        = 30022
	propIsScrollAvailable  = 30034
	propIsToggleAvailable  = 30041
	propIsValueAvailable   = 30043
	propValueValue         = 30045
	propScrollHPercent     = 30053
	propScrollVPercent     = 30055
	propScrollHScrollable  = 30057
	propScrollVScrollable  = 30058
)

// patternScroll is the ScrollPattern id.
const patternScroll = 10004

// Tree scopes for cache requests.
const (
	treeScopeElement  = 1
	treeScopeChildren = 2
	treeScopeSubtree  = 7
)

// subtreeProperties is the fixed property set of the batched fetch. Every
// value the walker needs is cached in one cross-process round trip.
var subtreeProperties = []int{
	propBoundingRectangle,
	propControlType,
	propLocalizedType,
	propName,
	propAcceleratorKey,
	propHasKeyboardFocus,
	propIsKeyboardFocusabl,
	propIsEnabled,
	propAutomationID,
	propIsControlElement,
	propIsOffscreen,
	propIsScrollAvailable,
	propIsToggleAvailable,
	propIsValueAvailable,
	propValueValue,
	propScrollHPercent,
	propScrollVPercent,
	propScrollHScrollable,
	propScrollVScrollable,
}

// controlTypeNames maps UIA control type ids to their conventional names.
var controlTypeNames = map[int]string{
	50000: "ButtonControl",
	50001: "CalendarControl",
	50002: "CheckBoxControl",
	50003: "ComboBoxControl",
	50004: "EditControl",
	50005: "HyperlinkControl",
	50006: "ImageControl",
	50007: "ListItemControl",
	50008: "ListControl",
	50009: "MenuControl",
	50010: "MenuBarControl",
	50011: "MenuItemControl",
	50012: "ProgressBarControl",
	50013: "RadioButtonControl",
	50014: "ScrollBarControl",
	50015: "SliderControl",
	50016: "SpinnerControl",
	50017: "StatusBarControl",
	50018: "TabControl",
	50019: "TabItemControl",
	50020: "TextControl",
	50021: "ToolBarControl",
	50022: "ToolTipControl",
	50023: "TreeControl",
	50024: "TreeItemControl",
	50025: "CustomControl",
	50026: "GroupControl",
	50027: "ThumbControl",
	50028: "DataGridControl",
	50029: "DataItemControl",
	50030: "DocumentControl",
	50031: "SplitButtonControl",
	50032: "WindowControl",
	50033: "PaneControl",
	50034: "HeaderControl",
	50035: "HeaderItemControl",
	50036: "TableControl",
	50037: "TitleBarControl",
	50038: "SeparatorControl",
}

func controlTypeName(id int) string {
	if name, ok := controlTypeNames[id]; ok {
		return name
	}
	return "CustomControl"
}

// Raw vtable bindings for the UIA interfaces. Only the slots this package
// calls are named; the layouts follow UIAutomationClient.h.

type iUIAutomation struct {
	vtbl *iUIAutomationVtbl
}

type iUIAutomationVtbl struct {
	queryInterface              uintptr
	addRef                      uintptr
	release                     uintptr
	compareElements             uintptr
	compareRuntimeIds           uintptr
	getRootElement              uintptr
	elementFromHandle           uintptr
	elementFromPoint            uintptr
	getFocusedElement           uintptr
	getRootElementBuildCache    uintptr
	elementFromHandleBuildCache uintptr
	elementFromPointBuildCache  uintptr
	getFocusedElementBuildCache uintptr
	createTreeWalker            uintptr
	getControlViewWalker        uintptr
	getContentViewWalker        uintptr
	getRawViewWalker            uintptr
	getRawViewCondition         uintptr
	getControlViewCondition     uintptr
	getContentViewCondition     uintptr
	createCacheRequest          uintptr
	createTrueCondition         uintptr
}

func (a *iUIAutomation) Release() {
	syscall.SyscallN(a.vtbl.release, uintptr(unsafe.Pointer(a)))
}

func (a *iUIAutomation) CreateCacheRequest() (*iUIAutomationCacheRequest, error) {
	var req *iUIAutomationCacheRequest
	hr, _, _ := syscall.SyscallN(a.vtbl.createCacheRequest,
		uintptr(unsafe.Pointer(a)), uintptr(unsafe.Pointer(&req)))
	if int32(hr) < 0 || req == nil {
		return nil, fmt.Errorf("CreateCacheRequest: %w", ole.NewError(hr))
	}
	return req, nil
}

func (a *iUIAutomation) ElementFromHandle(hwnd uintptr) (*iUIAutomationElement, error) {
	var el *iUIAutomationElement
	hr, _, _ := syscall.SyscallN(a.vtbl.elementFromHandle,
		uintptr(unsafe.Pointer(a)), hwnd, uintptr(unsafe.Pointer(&el)))
	if int32(hr) < 0 || el == nil {
		return nil, fmt.Errorf("ElementFromHandle(%#x): %w", hwnd, ole.NewError(hr))
	}
	return el, nil
}

func (a *iUIAutomation) ElementFromHandleBuildCache(hwnd uintptr, req *iUIAutomationCacheRequest) (*iUIAutomationElement, error) {
	var el *iUIAutomationElement
	hr, _, _ := syscall.SyscallN(a.vtbl.elementFromHandleBuildCache,
		uintptr(unsafe.Pointer(a)), hwnd,
		uintptr(unsafe.Pointer(req)), uintptr(unsafe.Pointer(&el)))
	if int32(hr) < 0 || el == nil {
		return nil, fmt.Errorf("ElementFromHandleBuildCache(%#x): %w", hwnd, ole.NewError(hr))
	}
	return el, nil
}

type iUIAutomationCacheRequest struct {
	vtbl *iUIAutomationCacheRequestVtbl
}

type iUIAutomationCacheRequestVtbl struct {
	queryInterface           uintptr
	addRef                   uintptr
	release                  uintptr
	addProperty              uintptr
	addPattern               uintptr
	clone                    uintptr
	getTreeScope             uintptr
	putTreeScope             uintptr
	getTreeFilter            uintptr
	putTreeFilter            uintptr
	getAutomationElementMode uintptr
	putAutomationElementMode uintptr
}

func (r *iUIAutomationCacheRequest) Release() {
	syscall.SyscallN(r.vtbl.release, uintptr(unsafe.Pointer(r)))
}

func (r *iUIAutomationCacheRequest) AddProperty(prop int) error {
	hr, _, _ := syscall.SyscallN(r.vtbl.addProperty,
		uintptr(unsafe.Pointer(r)), uintptr(prop))
	if int32(hr) < 0 {
		return fmt.Errorf("AddProperty(%d): %w", prop, ole.NewError(hr))
	}
	return nil
}

func (r *iUIAutomationCacheRequest) AddPattern(pattern int) error {
	hr, _, _ := syscall.SyscallN(r.vtbl.addPattern,
		uintptr(unsafe.Pointer(r)), uintptr(pattern))
	if int32(hr) < 0 {
		return fmt.Errorf("AddPattern(%d): %w", pattern, ole.NewError(hr))
	}
	return nil
}

func (r *iUIAutomationCacheRequest) SetTreeScope(scope int) error {
	hr, _, _ := syscall.SyscallN(r.vtbl.putTreeScope,
		uintptr(unsafe.Pointer(r)), uintptr(scope))
	if int32(hr) < 0 {
		return fmt.Errorf("put_TreeScope(%d): %w", scope, ole.NewError(hr))
	}
	return nil
}

type iUIAutomationElement struct {
	vtbl *iUIAutomationElementVtbl
}

type iUIAutomationElementVtbl struct {
	queryInterface          uintptr
	addRef                  uintptr
	release                 uintptr
	setFocus                uintptr
	getRuntimeId            uintptr
	findFirst               uintptr
	findAll                 uintptr
	findFirstBuildCache     uintptr
	findAllBuildCache       uintptr
	buildUpdatedCache       uintptr
	getCurrentPropertyValue uintptr
	getCurrentPropertyValEx uintptr
	getCachedPropertyValue  uintptr
	getCachedPropertyValEx  uintptr
	getCurrentPatternAs     uintptr
	getCachedPatternAs      uintptr
	getCurrentPattern       uintptr
	getCachedPattern        uintptr
	getCachedParent         uintptr
	getCachedChildren       uintptr
}

func (e *iUIAutomationElement) Release() {
	syscall.SyscallN(e.vtbl.release, uintptr(unsafe.Pointer(e)))
}

func (e *iUIAutomationElement) BuildUpdatedCache(req *iUIAutomationCacheRequest) (*iUIAutomationElement, error) {
	var out *iUIAutomationElement
	hr, _, _ := syscall.SyscallN(e.vtbl.buildUpdatedCache,
		uintptr(unsafe.Pointer(e)),
		uintptr(unsafe.Pointer(req)), uintptr(unsafe.Pointer(&out)))
	if int32(hr) < 0 || out == nil {
		return nil, fmt.Errorf("BuildUpdatedCache: %w", ole.NewError(hr))
	}
	return out, nil
}

func (e *iUIAutomationElement) GetCachedPropertyValue(prop int) (*ole.VARIANT, error) {
	var v ole.VARIANT
	ole.VariantInit(&v)
	hr, _, _ := syscall.SyscallN(e.vtbl.getCachedPropertyValue,
		uintptr(unsafe.Pointer(e)), uintptr(prop), uintptr(unsafe.Pointer(&v)))
	if int32(hr) < 0 {
		return nil, fmt.Errorf("GetCachedPropertyValue(%d): %w", prop, ole.NewError(hr))
	}
	return &v, nil
}

func (e *iUIAutomationElement) GetCurrentPropertyValue(prop int) (*ole.VARIANT, error) {
	var v ole.VARIANT
	ole.VariantInit(&v)
	hr, _, _ := syscall.SyscallN(e.vtbl.getCurrentPropertyValue,
		uintptr(unsafe.Pointer(e)), uintptr(prop), uintptr(unsafe.Pointer(&v)))
	if int32(hr) < 0 {
		return nil, fmt.Errorf("GetCurrentPropertyValue(%d): %w", prop, ole.NewError(hr))
	}
	return &v, nil
}

func (e *iUIAutomationElement) GetCachedChildren() (*iUIAutomationElementArray, error) {
	var arr *iUIAutomationElementArray
	hr, _, _ := syscall.SyscallN(e.vtbl.getCachedChildren,
		uintptr(unsafe.Pointer(e)), uintptr(unsafe.Pointer(&arr)))
	if int32(hr) < 0 {
		return nil, fmt.Errorf("GetCachedChildren: %w", ole.NewError(hr))
	}
	return arr, nil
}

func (e *iUIAutomationElement) GetCurrentPattern(pattern int) (*ole.IUnknown, error) {
	var unk *ole.IUnknown
	hr, _, _ := syscall.SyscallN(e.vtbl.getCurrentPattern,
		uintptr(unsafe.Pointer(e)), uintptr(pattern), uintptr(unsafe.Pointer(&unk)))
	if int32(hr) < 0 {
		return nil, fmt.Errorf("GetCurrentPattern(%d): %w", pattern, ole.NewError(hr))
	}
	return unk, nil
}

type iUIAutomationElementArray struct {
	vtbl *iUIAutomationElementArrayVtbl
}

type iUIAutomationElementArrayVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
	getLength      uintptr
	getElement     uintptr
}

func (a *iUIAutomationElementArray) Release() {
	syscall.SyscallN(a.vtbl.release, uintptr(unsafe.Pointer(a)))
}

func (a *iUIAutomationElementArray) Length() (int, error) {
	var n int32
	hr, _, _ := syscall.SyscallN(a.vtbl.getLength,
		uintptr(unsafe.Pointer(a)), uintptr(unsafe.Pointer(&n)))
	if int32(hr) < 0 {
		return 0, fmt.Errorf("get_Length: %w", ole.NewError(hr))
	}
	return int(n), nil
}

func (a *iUIAutomationElementArray) Element(i int) (*iUIAutomationElement, error) {
	var el *iUIAutomationElement
	hr, _, _ := syscall.SyscallN(a.vtbl.getElement,
		uintptr(unsafe.Pointer(a)), uintptr(i), uintptr(unsafe.Pointer(&el)))
	if int32(hr) < 0 || el == nil {
		return nil, fmt.Errorf("GetElement(%d): %w", i, ole.NewError(hr))
	}
	return el, nil
}

// iUIAutomationScrollPattern is used on the per-node fallback path; the
// batched path reads the scroll properties from the cache instead.
type iUIAutomationScrollPattern struct {
	vtbl *iUIAutomationScrollPatternVtbl
}

type iUIAutomationScrollPatternVtbl struct {
	queryInterface                 uintptr
	addRef                         uintptr
	release                        uintptr
	scroll                         uintptr
	setScrollPercent               uintptr
	getCurrentHorizontalPercent    uintptr
	getCurrentVerticalPercent      uintptr
	getCurrentHorizontalViewSize   uintptr
	getCurrentVerticalViewSize     uintptr
	getCurrentHorizontalScrollable uintptr
	getCurrentVerticalScrollable   uintptr
}

func (p *iUIAutomationScrollPattern) Release() {
	syscall.SyscallN(p.vtbl.release, uintptr(unsafe.Pointer(p)))
}

func (p *iUIAutomationScrollPattern) horizontalPercent() float64 {
	var v float64
	syscall.SyscallN(p.vtbl.getCurrentHorizontalPercent,
		uintptr(unsafe.Pointer(p)), uintptr(unsafe.Pointer(&v)))
	return v
}

func (p *iUIAutomationScrollPattern) verticalPercent() float64 {
	var v float64
	syscall.SyscallN(p.vtbl.getCurrentVerticalPercent,
		uintptr(unsafe.Pointer(p)), uintptr(unsafe.Pointer(&v)))
	return v
}

func (p *iUIAutomationScrollPattern) horizontallyScrollable() bool {
	var v int32
	syscall.SyscallN(p.vtbl.getCurrentHorizontalScrollable,
		uintptr(unsafe.Pointer(p)), uintptr(unsafe.Pointer(&v)))
	return v != 0
}

func (p *iUIAutomationScrollPattern) verticallyScrollable() bool {
	var v int32
	syscall.SyscallN(p.vtbl.getCurrentVerticalScrollable,
		uintptr(unsafe.Pointer(p)), uintptr(unsafe.Pointer(&v)))
	return v != 0
}

// Variant readers. Cached UIA properties come back as VARIANTs; missing
// values are VT_EMPTY rather than errors.

func variantString(v *ole.VARIANT) string {
	defer v.Clear()
	if v.VT == ole.VT_BSTR {
		return v.ToString()
	}
	return ""
}

func variantBool(v *ole.VARIANT) bool {
	defer v.Clear()
	if v.VT == ole.VT_BOOL {
		return v.Value().(bool)
	}
	return false
}

func variantInt(v *ole.VARIANT) int {
	defer v.Clear()
	switch val := v.Value().(type) {
	case int32:
		return int(val)
	case int64:
		return int(val)
	case int:
		return val
	}
	return 0
}

func variantFloat(v *ole.VARIANT) float64 {
	defer v.Clear()
	switch val := v.Value().(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	}
	return 0
}

// variantRect reads a UIA bounding rectangle: a VT_ARRAY|VT_R8 of
// [left, top, width, height].
func variantRect(v *ole.VARIANT) (left, top, width, height float64) {
	defer v.Clear()
	arr := v.ToArray()
	if arr == nil {
		return 0, 0, 0, 0
	}
	vals := arr.ToValueArray()
	if len(vals) != 4 {
		return 0, 0, 0, 0
	}
	f := func(x interface{}) float64 {
		if d, ok := x.(float64); ok {
			return d
		}
		return 0
	}
	return f(vals[0]), f(vals[1]), f(vals[2]), f(vals[3])
}

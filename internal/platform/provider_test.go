package platform

import (
	"errors"
	"testing"
)

func TestNewConn_UnsupportedPlatform(t *testing.T) {
	// Temporarily clear the registered backend to simulate an unsupported
	// platform.
	orig := NewConnFunc
	NewConnFunc = nil
	defer func() { NewConnFunc = orig }()

	_, err := NewConn()
	if err == nil {
		t.Fatal("expected an error without a registered backend")
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestNewConn_UsesRegisteredBackend(t *testing.T) {
	orig := NewConnFunc
	called := false
	NewConnFunc = func() (Conn, error) {
		called = true
		return nil, errors.New("probe")
	}
	defer func() { NewConnFunc = orig }()

	_, err := NewConn()
	if !called {
		t.Error("NewConn must delegate to the registered backend")
	}
	if err == nil || err.Error() != "probe" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRawNodeScrollMemoization(t *testing.T) {
	n := &RawNode{HasScrollPattern: true}
	if n.ScrollResolved() {
		t.Error("fresh node must not report a resolved scroll state")
	}
	n.SetScroll(nil)
	if !n.ScrollResolved() {
		t.Error("a nil resolution still counts as resolved")
	}
	if n.Scroll != nil {
		t.Error("nil resolution must leave Scroll nil")
	}
}

package platform

import (
	"fmt"
	"runtime"
)

// ErrUnsupported is returned on platforms without an accessibility backend.
var ErrUnsupported = fmt.Errorf("uitree is not supported on %s/%s; supported: windows/amd64, windows/arm64", runtime.GOOS, runtime.GOARCH)

// NewConnFunc is set by platform-specific packages via init().
// See internal/platform/uiawin/init.go for the Windows registration.
//
// The returned Conn is bound to the calling goroutine's OS thread. Callers
// must invoke NewConnFunc on the goroutine that will use the connection and
// must not hand the Conn to any other goroutine.
var NewConnFunc func() (Conn, error)

// NewConn acquires an accessibility connection for the calling goroutine.
func NewConn() (Conn, error) {
	if NewConnFunc == nil {
		return nil, ErrUnsupported
	}
	return NewConnFunc()
}

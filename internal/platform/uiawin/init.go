//go:build windows

package uiawin

import "github.com/mj1618/uitree/internal/platform"

func init() {
	platform.NewConnFunc = NewConn
}

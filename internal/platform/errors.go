package platform

import "errors"

// ErrConnectionUnavailable means the accessibility provider could not be
// constructed. It is fatal only to the window whose worker requested the
// connection.
var ErrConnectionUnavailable = errors.New("accessibility connection unavailable")

// ErrElementStale means an element vanished between enumeration and fetch.
// Callers retry a bounded number of times, then skip the element's subtree.
var ErrElementStale = errors.New("element became stale")

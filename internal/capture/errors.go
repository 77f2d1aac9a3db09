package capture

import "errors"

// ErrInvalidInput is a caller-contract violation, the only error class that
// fails a whole Capture call.
var ErrInvalidInput = errors.New("invalid capture input")

// ErrFetchTimeout means a window's worker did not finish before the capture
// deadline. The window gets an error record; its partial fragment is
// discarded.
var ErrFetchTimeout = errors.New("capture timed out")

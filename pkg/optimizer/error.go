package optimizer

import "errors"

// ErrInvalidLimits is wrapped by every limit validation failure.
var ErrInvalidLimits = errors.New("invalid capacity limits")

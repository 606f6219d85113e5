package eventstream

import "errors"

// ErrNilEvent indicates a nil optimization event payload was provided to a publisher.
var ErrNilEvent = errors.New("nil optimization event")

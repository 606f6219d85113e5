package memory

import "errors"

// ErrNotFound is returned when a record with the requested ID does not exist.
var ErrNotFound = errors.New("memory not found")

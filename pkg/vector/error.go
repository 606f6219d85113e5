package vector

import "errors"

var (
	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")

	// ErrConfig is returned for invalid driver configuration.
	ErrConfig = errors.New("invalid vector store config")
)

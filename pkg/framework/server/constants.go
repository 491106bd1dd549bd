package server

import "time"

const (
	// DefaultShutdownTimeout is the default timeout for graceful server shutdown
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultFetchTimeout bounds a single reachability request regardless of
	// the validator's race timeout.
	DefaultFetchTimeout = 30 * time.Second

	DefaultReadHeaderTimeout = 10 * time.Second
)

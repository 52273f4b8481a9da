// Package providers contains dependency injection providers for the omara server.
package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 5 * time.Second
)

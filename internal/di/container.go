// Package di provides dependency injection configuration for the omara server.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/erazemk/omara/internal/config"
	"github.com/erazemk/omara/internal/di/providers"
	"github.com/erazemk/omara/internal/jobs"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideMetrics)

	// Storage layer
	do.Provide(injector, providers.ProvideDatabase)
	do.Provide(injector, providers.ProvideImageStore)

	// Services
	do.Provide(injector, providers.ProvideCloset)
	do.Provide(injector, providers.ProvideVerifier)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Workers
	do.Provide(injector, providers.ProvideScheduler)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap eagerly builds the services that do work on their own: the
// maintenance scheduler and the HTTP server with everything it depends on.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*jobs.Scheduler](injector); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return fmt.Errorf("building http server: %w", err)
	}
	return nil
}

// Package http holds the pieces the router needs from the composition root.
package http

import (
	"context"

	"bighome_hub/platform/config"
	"bighome_hub/platform/logger"
)

// RouterConfig is the slice of configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	config.FeatureConfig
	config.AgingConfig
}

// HealthChecker backs the health endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled by cmd/api and handed to router.New.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}

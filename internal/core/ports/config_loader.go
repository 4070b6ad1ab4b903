// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/memo/internal/core/domain"

// ConfigLoader discovers and loads the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves the configuration for the given working directory.
	// When explicitPath is empty the loader walks upward from cwd looking
	// for the configuration file; otherwise explicitPath wins.
	Load(cwd, explicitPath string) (*domain.Config, error)
}

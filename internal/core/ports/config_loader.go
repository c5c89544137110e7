package ports

import "go.trai.ch/cargonode/internal/core/domain"

// ConfigLoader defines the interface for loading the project job table.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the project config. When path is empty the loader discovers a
	// config file in cwd and returns an empty config if none exists.
	Load(cwd, path string) (*domain.ProjectConfig, error)
}

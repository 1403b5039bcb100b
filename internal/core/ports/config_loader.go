package ports

import "go.trai.ch/polybuild/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the configuration starting at cwd and returns the loaded workspace.
	Load(cwd string) (*domain.Workspace, error)
}

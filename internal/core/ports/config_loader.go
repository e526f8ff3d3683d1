package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading settings.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load merges defaults, the optional config file at path and KILN_* environment overrides.
	// An empty path loads kiln.yaml from the current directory if it exists.
	Load(path string) (domain.Settings, error)
}

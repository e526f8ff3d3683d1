package ports

import "go.trai.ch/kiln/internal/core/domain"

// ManifestStore defines the interface for storing and retrieving run manifests.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ManifestStore interface {
	// Get retrieves the manifest of the last run in workDir.
	// Returns nil, nil if not found.
	Get(workDir string) (*domain.Manifest, error)

	// Put stores the manifest.
	Put(workDir string, manifest domain.Manifest) error
}

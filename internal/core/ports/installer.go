package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// BinaryInstaller places a prebuilt distribution into its target directory.
//
//go:generate go run go.uber.org/mock/mockgen -source=installer.go -destination=mocks/mock_installer.go -package=mocks
type BinaryInstaller interface {
	// InstallBinary returns the installed path. Failures are *domain.StageError.
	InstallBinary(ctx context.Context, cfg domain.RunConfig, spec domain.DependencySpec) (string, error)
}

// SourceInstaller builds a dependency from source into its target directory.
type SourceInstaller interface {
	// InstallFromSource returns the installed path. Failures are *domain.StageError.
	InstallFromSource(ctx context.Context, cfg domain.RunConfig, spec domain.DependencySpec) (string, error)
}

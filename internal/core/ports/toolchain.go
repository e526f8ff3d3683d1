package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// BuildRequest carries everything the host build toolchain needs for one source tree.
type BuildRequest struct {
	Dependency string
	SourceDir  string
	Prefix     string
	Options    domain.BuildOptions
	Jobs       int
	Env        []string
}

// BuildToolchain is the host's configure, compile and install capability.
// Only the exit status of each step is inspected.
//
//go:generate go run go.uber.org/mock/mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type BuildToolchain interface {
	// Configure prepares the source tree with the fixed option set.
	Configure(ctx context.Context, req BuildRequest) error

	// Compile builds the source tree using req.Jobs parallel jobs.
	Compile(ctx context.Context, req BuildRequest) error

	// Install places the build artifacts under req.Prefix.
	Install(ctx context.Context, req BuildRequest) error
}

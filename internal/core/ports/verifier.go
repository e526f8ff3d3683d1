package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// VerifyRequest names the executable to check and how to ask it for its version.
type VerifyRequest struct {
	Dependency string
	Executable string
	Flag       string
	Env        []string
}

// Verifier runs an installed tool's self-report command.
//
//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type Verifier interface {
	// Verify never fails the run. A failing tool yields domain.VerificationWarning.
	Verify(ctx context.Context, req VerifyRequest) domain.Verification
}

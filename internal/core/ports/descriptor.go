package ports

import "go.trai.ch/kiln/internal/core/domain"

// DescriptorStore persists the environment descriptor.
//
//go:generate go run go.uber.org/mock/mockgen -source=descriptor.go -destination=mocks/mock_descriptor.go -package=mocks
type DescriptorStore interface {
	// Write replaces the descriptor at path atomically.
	// Either the complete descriptor exists afterwards or an error wrapping
	// domain.ErrDescriptorWriteFailed is returned.
	Write(path string, d domain.EnvironmentDescriptor) error

	// Read returns the rendered descriptor at path.
	// It returns an error wrapping domain.ErrDescriptorNotFound if none exists.
	Read(path string) ([]byte, error)
}

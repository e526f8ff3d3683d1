package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// FetchRequest describes one artifact retrieval.
type FetchRequest struct {
	// Dependency labels log lines and errors.
	Dependency  string
	URL         string
	Destination string
	Policy      domain.RetryPolicy
	// S3 locates the object store for s3:// URLs.
	S3 domain.S3Settings
}

// Fetcher retrieves remote artifacts with bounded retry.
//
//go:generate go run go.uber.org/mock/mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	// Fetch writes the artifact at req.URL to req.Destination.
	//
	// Every failure is retried until req.Policy.MaxAttempts attempts were made.
	// On exhaustion it returns an error wrapping domain.ErrFetchExhausted and
	// leaves no file at req.Destination.
	Fetch(ctx context.Context, req FetchRequest) (domain.FetchResult, error)
}

// Transport performs a single transfer attempt for the URL schemes it supports.
type Transport interface {
	// Schemes lists the URL schemes the transport handles.
	Schemes() []string

	// Get copies the artifact at req.URL into w.
	Get(ctx context.Context, req FetchRequest, w io.Writer) error
}

package ports

import "context"

// ExtractRequest describes one archive extraction.
type ExtractRequest struct {
	Archive     string
	Destination string
	// StripComponents drops that many leading path elements from every entry.
	StripComponents int
}

// Extractor unpacks archives.
//
//go:generate go run go.uber.org/mock/mockgen -source=extractor.go -destination=mocks/mock_extractor.go -package=mocks
type Extractor interface {
	// Extract unpacks req.Archive into req.Destination, replacing existing entries.
	//
	// The format is detected from the archive contents. Entries that would land
	// outside req.Destination are rejected. Failures wrap domain.ErrExtractionFailed.
	Extract(ctx context.Context, req ExtractRequest) error
}

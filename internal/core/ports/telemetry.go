package ports

import (
	"context"
	"io"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// Shutdown flushes and releases pending spans.
	Shutdown(ctx context.Context) error
}

// Span represents a unit of work.
// Writes are recorded as log events on the span.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	Dependency string
	Stage      string
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithStage labels the span with the dependency and stage it covers.
func WithStage(dependency, stage string) SpanOption {
	return func(c *SpanConfig) {
		c.Dependency = dependency
		c.Stage = stage
	}
}

// NewSpanConfig applies opts to an empty config.
func NewSpanConfig(opts ...SpanOption) SpanConfig {
	var c SpanConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

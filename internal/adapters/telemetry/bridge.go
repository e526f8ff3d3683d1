package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge implements sdktrace.SpanProcessor to report finished stage spans to the logger.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing. Stage starts are logged by the orchestrator.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span's stage and duration.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	dependency, stage := labels(s.Attributes())
	if stage == "" {
		return
	}
	if dependency == "" {
		dependency = domain.RunScope
	}

	prefix := domain.LogPrefix(dependency, domain.Stage(stage))
	elapsed := s.EndTime().Sub(s.StartTime()).Round(time.Millisecond)

	if s.Status().Code == codes.Error {
		b.logger.Warn(fmt.Sprintf("%s failed after %s", prefix, elapsed))
		return
	}
	b.logger.Info(fmt.Sprintf("%s finished in %s", prefix, elapsed))
}

func labels(attrs []attribute.KeyValue) (dependency, stage string) {
	for _, kv := range attrs {
		switch kv.Key {
		case AttrDependency:
			dependency = kv.Value.AsString()
		case AttrStage:
			stage = kv.Value.AsString()
		}
	}
	return dependency, stage
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

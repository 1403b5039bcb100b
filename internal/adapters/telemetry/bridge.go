package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/polybuild/internal/core/ports"
)

// KindKey is the span attribute carrying ports.SpanConfig.Kind.
const KindKey = attribute.Key("polybuild.kind")

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge forwards target span lifecycles to a renderer.
// Group spans only structure the trace and are not rendered.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge creates a Bridge over renderer.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart reports a started target.
func (b *Bridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if isGroup(s.Attributes()) {
		return
	}

	parentID := ""
	if parent := s.Parent(); parent.IsValid() {
		parentID = parent.SpanID().String()
	}
	b.renderer.OnTaskStart(s.SpanContext().SpanID().String(), parentID, s.Name(), s.StartTime())
}

// OnEnd reports a finished target with the error recorded on it, if any.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if isGroup(s.Attributes()) {
		return
	}

	var err error
	if status := s.Status(); status.Code == codes.Error {
		err = errors.New(status.Description)
	}
	b.renderer.OnTaskComplete(s.SpanContext().SpanID().String(), s.EndTime(), err, isCached(s.Attributes()))
}

// Shutdown is a no-op; the renderer is stopped by its owner.
func (b *Bridge) Shutdown(context.Context) error { return nil }

// ForceFlush is a no-op.
func (b *Bridge) ForceFlush(context.Context) error { return nil }

func isGroup(attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		if kv.Key == KindKey {
			return kv.Value.AsString() == ports.SpanKindGroup
		}
	}
	return false
}

func isCached(attrs []attribute.KeyValue) bool {
	cached := false
	for _, kv := range attrs {
		if kv.Key == ports.AttrCached {
			cached = kv.Value.AsBool()
		}
	}
	return cached
}

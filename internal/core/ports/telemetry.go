package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals the groups that are about to execute.
	EmitPlan(ctx context.Context, groups [][]string, targets []string)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// Span attribute keys set on target spans.
const (
	AttrCached   = "polybuild.cached"
	AttrPlugin   = "polybuild.plugin"
	AttrCacheKey = "polybuild.cache_key"
)

// Span kinds set by the orchestrator.
const (
	SpanKindGroup  = "group"
	SpanKindTarget = "target"
)

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Kind distinguishes group spans from target spans for renderers.
	Kind string
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithSpanKind sets the kind of the span.
func WithSpanKind(kind string) SpanOption {
	return func(c *SpanConfig) {
		c.Kind = kind
	}
}

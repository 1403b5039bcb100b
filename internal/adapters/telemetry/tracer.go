package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/polybuild/internal/core/ports"
)

var _ ports.Tracer = (*OTelTracer)(nil)

// OTelTracer implements ports.Tracer on an SDK tracer provider whose only
// processor is a Bridge to the renderer.
type OTelTracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	renderer ports.Renderer
}

// NewOTelTracer creates a tracer with the given instrumentation name. A nil
// renderer yields spans that are recorded but never displayed.
func NewOTelTracer(name string, renderer ports.Renderer) *OTelTracer {
	var opts []sdktrace.TracerProviderOption
	if renderer != nil {
		opts = append(opts, sdktrace.WithSpanProcessor(NewBridge(renderer)))
	}
	provider := sdktrace.NewTracerProvider(opts...)

	return &OTelTracer{
		provider: provider,
		tracer:   provider.Tracer(name),
		renderer: renderer,
	}
}

// Shutdown ends the provider. Spans started afterwards are not recorded.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := ports.SpanConfig{Kind: ports.SpanKindTarget}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(KindKey.String(cfg.Kind)))

	var out *Batcher
	if t.renderer != nil && cfg.Kind == ports.SpanKindTarget {
		spanID := span.SpanContext().SpanID().String()
		out = NewBatcher(0, 0, func(chunk []byte) {
			t.renderer.OnTaskLog(spanID, chunk)
		})
	}

	return ctx, &OTelSpan{span: span, out: out}
}

// EmitPlan records the plan on the current span and hands it to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, groups [][]string, targets []string) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("plan", trace.WithAttributes(
			attribute.Int("groups", len(groups)),
			attribute.StringSlice("targets", targets),
		))
	}
	if t.renderer != nil {
		t.renderer.OnPlanEmit(groups, targets)
	}
}

// OTelSpan implements ports.Span.
type OTelSpan struct {
	span trace.Span
	out  *Batcher
}

// End flushes pending output, then completes the span.
func (s *OTelSpan) End() {
	if s.out != nil {
		_ = s.out.Close()
	}
	s.span.End()
}

// RecordError records err and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	case fmt.Stringer:
		s.span.SetAttributes(attribute.String(key, v.String()))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprint(v)))
	}
}

// Write sends command output to the renderer, or records it as a span event
// when nothing displays it.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.out != nil {
		return s.out.Write(p)
	}
	s.span.AddEvent("output", trace.WithAttributes(attribute.String("data", string(p))))
	return len(p), nil
}

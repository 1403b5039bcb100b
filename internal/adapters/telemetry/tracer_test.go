package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polybuild/internal/adapters/telemetry"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestOTelTracer_TargetSpan(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := telemetry.NewOTelTracer("test", renderer)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	var spanID string
	gomock.InOrder(
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "api", gomock.Any()).
			Do(func(id, _, _ string, _ any) { spanID = id }),
		renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("compiling\n")).
			Do(func(id string, _ []byte) { assert.Equal(t, spanID, id) }),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil, false),
	)

	_, span := tracer.Start(context.Background(), "api", ports.WithSpanKind(ports.SpanKindTarget))
	_, err := span.Write([]byte("compiling\n"))
	require.NoError(t, err)
	span.SetAttribute(ports.AttrCached, false)
	span.End()

	_, err = span.Write([]byte("late"))
	require.ErrorIs(t, err, domain.ErrSpanClosed)
}

func TestOTelTracer_GroupSpanNotRendered(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := telemetry.NewOTelTracer("test", renderer)

	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "api", gomock.Any())
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil, false)

	ctx, group := tracer.Start(context.Background(), "group 1", ports.WithSpanKind(ports.SpanKindGroup))
	group.RecordError(errors.New("group failed"))
	_, target := tracer.Start(ctx, "api")
	target.End()
	group.End()
}

func TestOTelTracer_ChildCarriesParentID(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := telemetry.NewOTelTracer("test", renderer)

	var outerID string
	renderer.EXPECT().OnTaskStart(gomock.Any(), "", "outer", gomock.Any()).
		Do(func(id, _, _ string, _ any) { outerID = id })
	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "inner", gomock.Any()).
		Do(func(_, parent, _ string, _ any) { assert.Equal(t, outerID, parent) })
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(2)

	ctx, outer := tracer.Start(context.Background(), "outer")
	_, inner := tracer.Start(ctx, "inner")
	inner.End()
	outer.End()
}

func TestOTelTracer_ErrorAndCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := telemetry.NewOTelTracer("test", renderer)

	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any(), false).
		Do(func(_ string, _ any, err error, _ bool) {
			require.Error(t, err)
			assert.Equal(t, "exit status 1", err.Error())
		})
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil, true)

	_, failing := tracer.Start(context.Background(), "api")
	failing.RecordError(errors.New("exit status 1"))
	failing.End()

	_, cached := tracer.Start(context.Background(), "web")
	cached.SetAttribute(ports.AttrCached, true)
	cached.End()
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := telemetry.NewOTelTracer("test", renderer)

	groups := [][]string{{"proto"}, {"api"}}
	renderer.EXPECT().OnPlanEmit(groups, []string{"api"})

	tracer.EmitPlan(context.Background(), groups, []string{"api"})
}

func TestOTelTracer_NoRenderer(t *testing.T) {
	tracer := telemetry.NewOTelTracer("test", nil)

	_, span := tracer.Start(context.Background(), "api")
	n, err := span.Write([]byte("dropped"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	span.SetAttribute("count", 3)
	span.SetAttribute("other", struct{}{})
	span.End()
	tracer.EmitPlan(context.Background(), nil, nil)
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "api")
	assert.Equal(t, ctx, got)

	n, err := span.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	span.SetAttribute("k", "v")
	span.RecordError(errors.New("x"))
	span.End()
	tracer.EmitPlan(ctx, nil, nil)
}

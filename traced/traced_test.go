package traced

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTraced(t *testing.T) (*TracedLogger, *tracetest.SpanRecorder, *logrustest.Hook) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	return New(logger, tp.Tracer("test-scope")), sr, hook
}

func TestSpanNestsUnderActiveSpan(t *testing.T) {
	tl, sr, _ := newTestTraced(t)

	parentCtx, parent := tl.Span(context.Background(), "parent")
	childCtx, child := tl.Span(parentCtx, "child")

	assert.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())
	assert.Equal(t, child.SpanContext(), trace.SpanContextFromContext(childCtx))

	child.End()

	// The parent context still carries the parent span after the child ends.
	assert.Equal(t, parent.SpanContext(), trace.SpanContextFromContext(parentCtx))
	parent.End()

	ended := sr.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "child", ended[0].Name())
	assert.Equal(t, parent.SpanContext().SpanID(), ended[0].Parent().SpanID())
	assert.Equal(t, "parent", ended[1].Name())
}

func TestSpanToleratesNilContext(t *testing.T) {
	tl, _, _ := newTestTraced(t)

	//nolint:staticcheck
	ctx, span := tl.Span(nil, "rooted")
	defer span.End()

	require.NotNil(t, ctx)
	assert.True(t, span.SpanContext().IsValid())
}

func TestSpanAppliesAttributes(t *testing.T) {
	tl, sr, _ := newTestTraced(t)

	_, span := tl.Span(context.Background(), "attributed", attribute.String("product.id", "p-1"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.String("product.id", "p-1"))
}

func TestWithSpanSuccessLeavesStatusUnset(t *testing.T) {
	tl, sr, _ := newTestTraced(t)

	err := tl.WithSpan(context.Background(), "ok", func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Empty(t, ended[0].Events())
}

func TestWithSpanRecordsAndReturnsError(t *testing.T) {
	tl, sr, _ := newTestTraced(t)

	boom := errors.New("boom")
	err := tl.WithSpan(context.Background(), "failing", func(ctx context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)

	events := ended[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "exception", events[0].Name)
}

func TestWithSpanRepanicsAfterRecording(t *testing.T) {
	tl, sr, _ := newTestTraced(t)

	require.PanicsWithValue(t, "kaboom", func() {
		_ = tl.WithSpan(context.Background(), "panicking", func(ctx context.Context) error {
			panic("kaboom")
		})
	})

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Status().Description, "kaboom")
	require.Len(t, ended[0].Events(), 1)
}

func TestWithSpanPassesChildContext(t *testing.T) {
	tl, sr, _ := newTestTraced(t)

	var inner trace.SpanContext
	err := tl.WithSpan(context.Background(), "outer", func(ctx context.Context) error {
		inner = trace.SpanContextFromContext(ctx)
		return nil
	})
	require.NoError(t, err)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, ended[0].SpanContext().SpanID(), inner.SpanID())
}

func TestWrapDefaultsToFunctionName(t *testing.T) {
	tl, sr, _ := newTestTraced(t)

	wrapped := tl.Wrap("", func(ctx context.Context) error { return nil })
	require.NoError(t, wrapped(context.Background()))

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Name(), "traced.")
}

func TestWrapKeepsExplicitName(t *testing.T) {
	tl, sr, _ := newTestTraced(t)

	boom := errors.New("boom")
	wrapped := tl.Wrap("fetch-products", func(ctx context.Context) error { return boom })
	require.ErrorIs(t, wrapped(context.Background()), boom)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "fetch-products", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestWrapFuncCarriesResult(t *testing.T) {
	tl, sr, _ := newTestTraced(t)

	wrapped := WrapFunc(tl, "lookup", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	got, err := wrapped(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	failing := WrapFunc(tl, "lookup-fail", func(ctx context.Context) (int, error) {
		return 0, errors.New("missing")
	})
	_, err = failing(context.Background())
	require.Error(t, err)

	require.Len(t, sr.Ended(), 2)
}

func TestLoggingProxiesCarryContext(t *testing.T) {
	tl, _, hook := newTestTraced(t)

	ctx, span := tl.Span(context.Background(), "request")
	tl.Info(ctx, "handling request")
	tl.Error(ctx, "something failed")
	tl.Critical(ctx, "really failed")
	span.End()

	entries := hook.AllEntries()
	require.Len(t, entries, 3)

	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, logrus.FatalLevel, entries[2].Level)

	for _, entry := range entries {
		require.NotNil(t, entry.Context)
		got := trace.SpanContextFromContext(entry.Context)
		assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())
	}
}

func TestLogProxiesArbitraryLevel(t *testing.T) {
	tl, _, hook := newTestTraced(t)

	tl.Log(context.Background(), logrus.DebugLevel, "verbose detail")

	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "verbose detail", entries[0].Message)
}

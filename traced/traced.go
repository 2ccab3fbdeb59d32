// Package traced unifies logging and tracing ergonomics: a TracedLogger
// proxies logrus calls, opens spans as children of whatever span is active
// in the context, and wraps functions so their failures are recorded on a
// span before propagating.
//
// The active span travels in the context.Context, never in thread-local
// state, so correlation follows logical call chains across goroutines.
package traced

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/brenordv/log-factory-package-ext-otel/instrument"
)

// TracedLogger wraps a logrus logger and an OTel tracer. Logs emitted
// through it carry the context's active span, so the log pipeline stamps
// them with the matching trace and span IDs.
type TracedLogger struct {
	logger *logrus.Logger
	tracer trace.Tracer
}

// New creates a TracedLogger proxying to logger and creating spans with
// tracer.
func New(logger *logrus.Logger, tracer trace.Tracer) *TracedLogger {
	return &TracedLogger{logger: logger, tracer: tracer}
}

// Logger returns the underlying logrus logger.
func (t *TracedLogger) Logger() *logrus.Logger {
	return t.logger
}

// Tracer returns the underlying tracer.
func (t *TracedLogger) Tracer() trace.Tracer {
	return t.tracer
}

// Debug proxies to the host logger with the given context attached.
func (t *TracedLogger) Debug(ctx context.Context, args ...any) {
	t.logger.WithContext(ctx).Debug(args...)
}

// Info proxies to the host logger with the given context attached.
func (t *TracedLogger) Info(ctx context.Context, args ...any) {
	t.logger.WithContext(ctx).Info(args...)
}

// Warn proxies to the host logger with the given context attached.
func (t *TracedLogger) Warn(ctx context.Context, args ...any) {
	t.logger.WithContext(ctx).Warn(args...)
}

// Error proxies to the host logger with the given context attached.
func (t *TracedLogger) Error(ctx context.Context, args ...any) {
	t.logger.WithContext(ctx).Error(args...)
}

// Critical logs at fatal severity without terminating the process.
func (t *TracedLogger) Critical(ctx context.Context, args ...any) {
	t.logger.WithContext(ctx).Log(logrus.FatalLevel, args...)
}

// Log proxies to the host logger at an arbitrary level.
func (t *TracedLogger) Log(ctx context.Context, level logrus.Level, args ...any) {
	t.logger.WithContext(ctx).Log(level, args...)
}

// Span opens a new span as a child of the span active in ctx and returns
// the context carrying it as the new active span. The caller ends the span;
// dropping back to the parent context restores the previous active span.
func (t *TracedLogger) Span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// WithSpan runs fn inside a new span. An error return is recorded on the
// span and sets its status to error before being handed back unchanged; a
// panic is recorded the same way and re-raised. The span always ends,
// whatever the exit path.
func (t *TracedLogger) WithSpan(ctx context.Context, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) (err error) {
	ctx, span := t.Span(ctx, name, attrs...)
	defer func() {
		if r := recover(); r != nil {
			perr := fmt.Errorf("panic: %v", r)
			span.RecordError(perr)
			span.SetStatus(codes.Error, perr.Error())
			span.End()
			panic(r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	return fn(ctx)
}

// InstrumentDatabase activates instrumentation for the given database
// drivers. See instrument.Database.
func (t *TracedLogger) InstrumentDatabase(drivers []string, enableCommenter bool) ([]string, error) {
	return instrument.Database(drivers, enableCommenter)
}

// InstrumentHTTPClient activates instrumentation for the default HTTP
// client transport. See instrument.HTTPClient.
func (t *TracedLogger) InstrumentHTTPClient(excludedURLs string) error {
	return instrument.HTTPClient(excludedURLs)
}

// InstrumentFiber activates instrumentation for a fiber app. See
// instrument.FiberApp.
func (t *TracedLogger) InstrumentFiber(app *fiber.App, excludedURLs string) error {
	return instrument.FiberApp(app, excludedURLs)
}

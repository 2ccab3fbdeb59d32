package provider

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/brenordv/log-factory-package-ext-otel/config"
	"github.com/brenordv/log-factory-package-ext-otel/exporter"
	"github.com/brenordv/log-factory-package-ext-otel/processor"
	"github.com/brenordv/log-factory-package-ext-otel/shutdown"
)

// TraceProvider manages the trace pipeline. It mirrors LogProvider in
// structure so both signals can be configured and torn down consistently.
type TraceProvider struct {
	res  *sdkresource.Resource
	proc *processor.Spans
	sdk  *sdktrace.TracerProvider

	unregister   func()
	closed       atomic.Bool
	shutdownOnce sync.Once
}

// NewTraceProvider builds a trace provider around a pre-built exporter.
func NewTraceProvider(cfg *config.Config, res *sdkresource.Resource, exp sdktrace.SpanExporter) *TraceProvider {
	proc := processor.NewSpans(exp,
		processor.WithExportInterval(cfg.ExportInterval),
		processor.WithExportTimeout(cfg.ExportTimeout),
		processor.WithMaxBatchSize(cfg.MaxBatchSize),
	)

	p := &TraceProvider{
		res:  res,
		proc: proc,
		sdk: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
			sdktrace.WithSpanProcessor(proc),
		),
	}
	p.unregister = shutdown.Register(p.Shutdown)

	logrus.WithField("service", serviceName(res)).Debug("Trace provider configured")
	return p
}

// NewOTLPTraceProvider builds a trace provider with an OTLP exporter created
// from cfg.
func NewOTLPTraceProvider(ctx context.Context, cfg *config.Config, res *sdkresource.Resource) (*TraceProvider, error) {
	exp, err := exporter.NewSpanExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("trace provider: %w", err)
	}
	return NewTraceProvider(cfg, res, exp), nil
}

// Tracer returns a tracer from the managed provider for the given
// instrumentation scope.
func (p *TraceProvider) Tracer(name string) trace.Tracer {
	return p.sdk.Tracer(name)
}

// Provider exposes the underlying TracerProvider for global registration
// and advanced use cases.
func (p *TraceProvider) Provider() *sdktrace.TracerProvider {
	return p.sdk
}

// Resource exposes the shared identity descriptor.
func (p *TraceProvider) Resource() *sdkresource.Resource {
	return p.res
}

// Processor exposes the batching processor for diagnostics.
func (p *TraceProvider) Processor() *processor.Spans {
	return p.proc
}

// Flush force-flushes buffered spans. No-op after shutdown.
func (p *TraceProvider) Flush(ctx context.Context) error {
	if p.closed.Load() {
		return nil
	}
	return p.sdk.ForceFlush(ctx)
}

// Shutdown drains and tears down the pipeline exactly once.
func (p *TraceProvider) Shutdown(ctx context.Context) error {
	var err error
	p.shutdownOnce.Do(func() {
		p.closed.Store(true)
		p.unregister()
		err = p.sdk.Shutdown(ctx)
		if err != nil {
			logrus.WithError(err).Error("Error shutting down trace provider")
		} else {
			logrus.Debug("Trace provider shutdown complete")
		}
	})
	return err
}

// Close is an alias for Shutdown.
func (p *TraceProvider) Close(ctx context.Context) error {
	return p.Shutdown(ctx)
}

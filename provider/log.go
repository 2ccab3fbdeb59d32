// Package provider owns the lifecycle of the log and trace pipelines: each
// provider holds the shared resource and one batching processor, flushes on
// demand, and tears down exactly once no matter how many callers race on
// shutdown.
package provider

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"

	"github.com/brenordv/log-factory-package-ext-otel/config"
	"github.com/brenordv/log-factory-package-ext-otel/exporter"
	"github.com/brenordv/log-factory-package-ext-otel/processor"
	"github.com/brenordv/log-factory-package-ext-otel/shutdown"
)

// LogProvider manages the log pipeline: resource, batching processor, and
// the SDK LoggerProvider the bridge obtains loggers from.
type LogProvider struct {
	res  *sdkresource.Resource
	proc *processor.Logs
	sdk  *sdklog.LoggerProvider

	unregister   func()
	closed       atomic.Bool
	shutdownOnce sync.Once
}

// NewLogProvider builds a log provider around a pre-built exporter. The
// resource is shared, not owned: the same pointer may back the trace
// provider.
func NewLogProvider(cfg *config.Config, res *sdkresource.Resource, exp sdklog.Exporter) *LogProvider {
	proc := processor.NewLogs(exp,
		processor.WithExportInterval(cfg.ExportInterval),
		processor.WithExportTimeout(cfg.ExportTimeout),
		processor.WithMaxBatchSize(cfg.MaxBatchSize),
	)

	p := &LogProvider{
		res:  res,
		proc: proc,
		sdk: sdklog.NewLoggerProvider(
			sdklog.WithResource(res),
			sdklog.WithProcessor(proc),
		),
	}
	p.unregister = shutdown.Register(p.Shutdown)

	logrus.WithField("service", serviceName(res)).Debug("Log provider configured")
	return p
}

// NewOTLPLogProvider builds a log provider with an OTLP exporter created
// from cfg.
func NewOTLPLogProvider(ctx context.Context, cfg *config.Config, res *sdkresource.Resource) (*LogProvider, error) {
	exp, err := exporter.NewLogExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("log provider: %w", err)
	}
	return NewLogProvider(cfg, res, exp), nil
}

// Logger returns a logger from the managed provider for the given
// instrumentation scope.
func (p *LogProvider) Logger(name string) log.Logger {
	return p.sdk.Logger(name)
}

// Resource exposes the shared identity descriptor.
func (p *LogProvider) Resource() *sdkresource.Resource {
	return p.res
}

// Processor exposes the batching processor for diagnostics (failure and
// drop counters).
func (p *LogProvider) Processor() *processor.Logs {
	return p.proc
}

// Flush force-flushes buffered records. After shutdown there is nothing
// left to flush, so it is a no-op, not a failure.
func (p *LogProvider) Flush(ctx context.Context) error {
	if p.closed.Load() {
		return nil
	}
	return p.sdk.ForceFlush(ctx)
}

// Shutdown drains and tears down the pipeline. Concurrent and repeated
// calls execute the underlying teardown exactly once.
func (p *LogProvider) Shutdown(ctx context.Context) error {
	var err error
	p.shutdownOnce.Do(func() {
		p.closed.Store(true)
		p.unregister()
		err = p.sdk.Shutdown(ctx)
		if err != nil {
			logrus.WithError(err).Error("Error shutting down log provider")
		} else {
			logrus.Debug("Log provider shutdown complete")
		}
	})
	return err
}

// Close is an alias for Shutdown.
func (p *LogProvider) Close(ctx context.Context) error {
	return p.Shutdown(ctx)
}

func serviceName(res *sdkresource.Resource) string {
	for _, kv := range res.Attributes() {
		if string(kv.Key) == "service.name" {
			return kv.Value.AsString()
		}
	}
	return ""
}

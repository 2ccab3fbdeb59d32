package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/brenordv/log-factory-package-ext-otel/bridge"
	"github.com/brenordv/log-factory-package-ext-otel/config"
	"github.com/brenordv/log-factory-package-ext-otel/provider"
	"github.com/brenordv/log-factory-package-ext-otel/resource"
	"github.com/brenordv/log-factory-package-ext-otel/traced"
)

// scopeName is the instrumentation scope for loggers and tracers created by
// Setup.
const scopeName = "github.com/brenordv/log-factory-package-ext-otel"

// Telemetry bundles the pieces Setup wires together: both providers sharing
// one resource, and the logrus bridge hook feeding the log pipeline.
type Telemetry struct {
	Logs   *provider.LogProvider
	Traces *provider.TraceProvider
	Hook   *bridge.Hook

	cfg *config.Config
}

// Setup is the one-call entry point: it builds a shared resource, wires a
// log provider and a trace provider to it, registers the tracer provider
// and a TraceContext+Baggage propagator globally (so auto-instrumentation
// shares them), and returns the bundle. Configuration problems fail here,
// loudly; nothing is retried.
func Setup(ctx context.Context, serviceName string, opts ...config.Option) (*Telemetry, error) {
	cfg, err := config.New(serviceName, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry configuration: %w", err)
	}
	cfg.Log()

	res, err := resource.New(ctx, cfg.ServiceName, cfg.ResourceAttributes)
	if err != nil {
		return nil, err
	}

	logs, err := provider.NewOTLPLogProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}

	traces, err := provider.NewOTLPTraceProvider(ctx, cfg, res)
	if err != nil {
		if shutdownErr := logs.Shutdown(ctx); shutdownErr != nil {
			logrus.WithError(shutdownErr).Warn("Cleanup after failed setup also failed")
		}
		return nil, err
	}

	otel.SetTracerProvider(traces.Provider())
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	hook := bridge.NewHook(logs,
		bridge.WithMinLevel(cfg.MinLogLevel),
		bridge.WithScope(scopeName),
	)

	logrus.WithField("service", cfg.ServiceName).Info("Telemetry pipelines initialized")
	return &Telemetry{Logs: logs, Traces: traces, Hook: hook, cfg: cfg}, nil
}

// TracedLogger attaches the bridge hook to logger (the standard logger when
// nil) and returns a TracedLogger creating spans on the trace pipeline.
func (t *Telemetry) TracedLogger(logger *logrus.Logger) *traced.TracedLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.AddHook(t.Hook)
	return traced.New(logger, t.Traces.Tracer(scopeName))
}

// Flush force-flushes both pipelines.
func (t *Telemetry) Flush(ctx context.Context) error {
	return errors.Join(t.Logs.Flush(ctx), t.Traces.Flush(ctx))
}

// Shutdown tears both pipelines down. Safe to call multiple times.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.Logs.Shutdown(ctx), t.Traces.Shutdown(ctx))
}

// Close is an alias for Shutdown.
func (t *Telemetry) Close(ctx context.Context) error {
	return t.Shutdown(ctx)
}

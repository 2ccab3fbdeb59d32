// Package exporter builds the transport-specific OTLP senders used by the
// batching processors. Exactly two transports are supported: gRPC and HTTP.
// Any other protocol value is rejected at construction.
package exporter

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"

	"github.com/brenordv/log-factory-package-ext-otel/config"
)

// InvalidProtocolError reports a transport protocol outside the supported
// set.
type InvalidProtocolError struct {
	Protocol string
}

func (e *InvalidProtocolError) Error() string {
	return fmt.Sprintf("invalid protocol %q: must be one of %v", e.Protocol, config.ValidProtocols)
}

// NewLogExporter creates the OTLP log exporter for the configured transport.
func NewLogExporter(ctx context.Context, cfg *config.Config) (sdklog.Exporter, error) {
	endpoint := cfg.ResolvedEndpoint()

	switch cfg.Protocol {
	case config.ProtocolGRPC:
		opts := []otlploggrpc.Option{
			otlploggrpc.WithEndpoint(endpoint),
			otlploggrpc.WithTimeout(cfg.ExportTimeout),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlploggrpc.WithHeaders(cfg.Headers))
		}
		if cfg.Insecure {
			opts = append(opts, otlploggrpc.WithInsecure())
		} else {
			opts = append(opts, otlploggrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
		}
		exp, err := otlploggrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC log exporter (endpoint: %s): %w", endpoint, err)
		}
		logExporterCreated(endpoint, cfg)
		return exp, nil

	case config.ProtocolHTTP:
		// The HTTP exporter appends the /v1/logs signal path itself; the
		// insecure flag is a gRPC-only concern and is ignored here.
		opts := []otlploghttp.Option{
			otlploghttp.WithEndpoint(endpoint),
			otlploghttp.WithTimeout(cfg.ExportTimeout),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlploghttp.WithHeaders(cfg.Headers))
		}
		exp, err := otlploghttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP log exporter (endpoint: %s): %w", endpoint, err)
		}
		logExporterCreated(endpoint, cfg)
		return exp, nil

	default:
		return nil, &InvalidProtocolError{Protocol: cfg.Protocol}
	}
}

// NewSpanExporter creates the OTLP span exporter for the configured
// transport.
func NewSpanExporter(ctx context.Context, cfg *config.Config) (sdktrace.SpanExporter, error) {
	endpoint := cfg.ResolvedEndpoint()

	switch cfg.Protocol {
	case config.ProtocolGRPC:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithTimeout(cfg.ExportTimeout),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
		}
		exp, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC trace exporter (endpoint: %s): %w", endpoint, err)
		}
		spanExporterCreated(endpoint, cfg)
		return exp, nil

	case config.ProtocolHTTP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithTimeout(cfg.ExportTimeout),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP trace exporter (endpoint: %s): %w", endpoint, err)
		}
		spanExporterCreated(endpoint, cfg)
		return exp, nil

	default:
		return nil, &InvalidProtocolError{Protocol: cfg.Protocol}
	}
}

func logExporterCreated(endpoint string, cfg *config.Config) {
	logrus.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"protocol": cfg.Protocol,
		"insecure": cfg.Insecure,
	}).Debug("OTLP log exporter created")
}

func spanExporterCreated(endpoint string, cfg *config.Config) {
	logrus.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"protocol": cfg.Protocol,
		"insecure": cfg.Insecure,
	}).Debug("OTLP trace exporter created")
}

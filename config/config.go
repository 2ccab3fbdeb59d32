package config

import (
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Transport protocols accepted by the exporter factory.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"

	DefaultProtocol = ProtocolGRPC

	// Default OTLP collector endpoints, one per transport.
	DefaultGRPCEndpoint = "localhost:4317"
	DefaultHTTPEndpoint = "localhost:4318"

	DefaultExportTimeout  = 30 * time.Second
	DefaultExportInterval = 5 * time.Second
	DefaultMaxBatchSize   = 512
)

// ValidProtocols is the closed set of supported transport protocols.
var ValidProtocols = []string{ProtocolGRPC, ProtocolHTTP}

// Config holds every knob for the telemetry pipelines. Build one with New
// and the With* options; an invalid combination fails at construction, never
// at export time.
type Config struct {
	// Service information
	ServiceName string

	// Exporter transport
	Endpoint string
	Protocol string
	Insecure bool
	Headers  map[string]string

	// Extra attributes merged into the shared resource after service.name.
	ResourceAttributes map[string]string

	// Batching
	ExportTimeout  time.Duration
	ExportInterval time.Duration
	MaxBatchSize   int

	// Minimum severity forwarded to the OTel log pipeline. Applies to logs
	// only; spans are not severity-gated.
	MinLogLevel logrus.Level
}

// New creates a validated Config for serviceName with the provided options
// applied over the defaults.
func New(serviceName string, opts ...Option) (*Config, error) {
	c := &Config{
		ServiceName:    serviceName,
		Protocol:       DefaultProtocol,
		Insecure:       true,
		ExportTimeout:  DefaultExportTimeout,
		ExportInterval: DefaultExportInterval,
		MaxBatchSize:   DefaultMaxBatchSize,
		MinLogLevel:    logrus.TraceLevel,
	}

	for _, opt := range opts {
		opt(c)
	}

	if errs := c.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Validate checks the configuration and returns every violation found.
func (c *Config) Validate() []error {
	v := NewValidator()

	v.RequireNonEmpty("ServiceName", strings.TrimSpace(c.ServiceName))
	v.RequireOneOf("Protocol", c.Protocol, ValidProtocols)
	RequireInRange(v, "MaxBatchSize", c.MaxBatchSize, 1, 1<<16)
	RequireInRange(v, "ExportTimeout", c.ExportTimeout, time.Millisecond, time.Hour)
	RequireInRange(v, "ExportInterval", c.ExportInterval, time.Millisecond, time.Hour)

	return v.Errors()
}

// ResolvedEndpoint returns the configured endpoint, or the default endpoint
// for the configured protocol when none was set.
func (c *Config) ResolvedEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.Protocol == ProtocolHTTP {
		return DefaultHTTPEndpoint
	}
	return DefaultGRPCEndpoint
}

// Log logs the effective configuration at debug level.
func (c *Config) Log() {
	logrus.WithFields(logrus.Fields{
		"service_name":    c.ServiceName,
		"endpoint":        c.ResolvedEndpoint(),
		"protocol":        c.Protocol,
		"insecure":        c.Insecure,
		"export_timeout":  c.ExportTimeout,
		"export_interval": c.ExportInterval,
		"max_batch_size":  c.MaxBatchSize,
		"min_log_level":   c.MinLogLevel.String(),
	}).Debug("Telemetry configuration resolved")
}

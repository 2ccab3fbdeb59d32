package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Option is a function that configures a Config.
type Option func(*Config)

// WithEndpoint sets the OTLP collector endpoint (host:port).
func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

// WithProtocol sets the exporter transport protocol ("grpc" or "http").
func WithProtocol(protocol string) Option {
	return func(c *Config) {
		c.Protocol = protocol
	}
}

// WithInsecure sets whether the gRPC transport uses a plaintext connection.
// The HTTP transport ignores this flag.
func WithInsecure(insecure bool) Option {
	return func(c *Config) {
		c.Insecure = insecure
	}
}

// WithHeaders sets the metadata headers sent with every export request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) {
		c.Headers = headers
	}
}

// WithHeader adds a single export request header.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[key] = value
	}
}

// WithResourceAttributes sets extra key/value pairs merged into the shared
// resource alongside service.name.
func WithResourceAttributes(attrs map[string]string) Option {
	return func(c *Config) {
		c.ResourceAttributes = attrs
	}
}

// WithResourceAttribute adds a single extra resource attribute.
func WithResourceAttribute(key, value string) Option {
	return func(c *Config) {
		if c.ResourceAttributes == nil {
			c.ResourceAttributes = make(map[string]string)
		}
		c.ResourceAttributes[key] = value
	}
}

// WithExportTimeout bounds each export call.
func WithExportTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ExportTimeout = d
	}
}

// WithExportTimeoutMillis bounds each export call, in milliseconds.
func WithExportTimeoutMillis(ms int) Option {
	return func(c *Config) {
		c.ExportTimeout = time.Duration(ms) * time.Millisecond
	}
}

// WithExportInterval sets how often buffered records are flushed when the
// batch-size trigger does not fire first.
func WithExportInterval(d time.Duration) Option {
	return func(c *Config) {
		c.ExportInterval = d
	}
}

// WithMaxBatchSize sets the buffer size that triggers an early flush.
func WithMaxBatchSize(n int) Option {
	return func(c *Config) {
		c.MaxBatchSize = n
	}
}

// WithMinLogLevel sets the minimum severity forwarded to the OTel log
// pipeline.
func WithMinLogLevel(level logrus.Level) Option {
	return func(c *Config) {
		c.MinLogLevel = level
	}
}

package config

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Environment variable keys honored by WithEnv. They follow the OTel SDK
// conventions where one exists.
const (
	envServiceName     = "OTEL_SERVICE_NAME"
	envEndpoint        = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envProtocol        = "OTEL_EXPORTER_OTLP_PROTOCOL"
	envInsecure        = "OTEL_EXPORTER_INSECURE"
	envExportTimeoutMS = "OTEL_EXPORTER_OTLP_TIMEOUT"
	envLogLevel        = "LOG_LEVEL"
)

// WithEnv overlays configuration from environment variables onto c. Unset
// variables leave the current value untouched; unparsable ones are skipped
// with a warning rather than failing startup.
func (c *Config) WithEnv() *Config {
	v := viper.New()
	v.AutomaticEnv()

	if s := v.GetString(envServiceName); s != "" {
		c.ServiceName = s
	}
	if s := v.GetString(envEndpoint); s != "" {
		c.Endpoint = s
	}
	if s := v.GetString(envProtocol); s != "" {
		c.Protocol = s
	}
	if s := v.GetString(envInsecure); s != "" {
		c.Insecure = strings.EqualFold(s, "true")
	}
	if ms := v.GetInt(envExportTimeoutMS); ms > 0 {
		c.ExportTimeout = time.Duration(ms) * time.Millisecond
	}
	if s := v.GetString(envLogLevel); s != "" {
		if level, err := logrus.ParseLevel(s); err == nil {
			c.MinLogLevel = level
		} else {
			logrus.WithField("value", s).Warn("Ignoring unparsable " + envLogLevel)
		}
	}

	return c
}

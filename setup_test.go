package telemetry

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/brenordv/log-factory-package-ext-otel/config"
)

func TestSetupRejectsEmptyServiceName(t *testing.T) {
	_, err := Setup(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ServiceName")
}

func TestSetupRejectsInvalidProtocol(t *testing.T) {
	_, err := Setup(context.Background(), "svc-a", config.WithProtocol("udp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ProtocolGRPC)
	assert.Contains(t, err.Error(), config.ProtocolHTTP)
}

func TestSetupSharesOneResourceAcrossSignals(t *testing.T) {
	tel, err := Setup(context.Background(), "svc-a",
		config.WithResourceAttribute("deployment.environment", "test"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	require.Same(t, tel.Logs.Resource(), tel.Traces.Resource())

	attrs := tel.Logs.Resource().Attributes()
	assert.Contains(t, attrs, semconv.ServiceNameKey.String("svc-a"))
}

func TestTracedLoggerAttachesBridgeHook(t *testing.T) {
	tel, err := Setup(context.Background(), "svc-a")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tl := tel.TracedLogger(logger)
	require.NotNil(t, tl)
	require.Same(t, logger, tl.Logger())

	attached := false
	for _, hooks := range logger.Hooks {
		for _, h := range hooks {
			if h == tel.Hook {
				attached = true
			}
		}
	}
	assert.True(t, attached)
}

func TestShutdownIsIdempotent(t *testing.T) {
	tel, err := Setup(context.Background(), "svc-a")
	require.NoError(t, err)

	require.NoError(t, tel.Shutdown(context.Background()))
	require.NoError(t, tel.Shutdown(context.Background()))
	require.NoError(t, tel.Close(context.Background()))

	// Nothing left to flush after teardown.
	require.NoError(t, tel.Flush(context.Background()))
}

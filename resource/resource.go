// Package resource builds the shared service-identity descriptor attached to
// every exported record.
package resource

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// New creates an OTel Resource carrying service.name plus the optional extra
// attributes. Extra keys are applied after service.name, so a duplicate key
// wins over the earlier value. The returned Resource is immutable and is
// meant to be shared by reference between the log and trace providers.
func New(ctx context.Context, serviceName string, extra map[string]string) (*resource.Resource, error) {
	attrs := make([]attribute.KeyValue, 0, len(extra)+1)
	attrs = append(attrs, semconv.ServiceNameKey.String(serviceName))

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, extra[k]))
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTel resource: %w", err)
	}
	return res, nil
}

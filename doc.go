// Package telemetry ships application logs and trace spans to an
// OpenTelemetry collector over OTLP (gRPC or HTTP), correlated by the span
// active in the calling context.
//
// Setup wires everything in one call:
//
//	tel, err := telemetry.Setup(ctx, "my-service",
//		config.WithEndpoint("collector:4317"),
//		config.WithHeader("x-api-key", key),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer tel.Shutdown(ctx)
//
//	tl := tel.TracedLogger(logrus.StandardLogger())
//	ctx, span := tl.Span(ctx, "handle-order")
//	tl.Info(ctx, "order received") // carries the span's trace/span IDs
//	span.End()
//
// Both pipelines buffer records in a batching processor and export from a
// single background worker per signal, so application calls never block on
// network I/O. Providers register with the shutdown registry for a
// best-effort flush at process exit; long-running services should still call
// Shutdown explicitly.
package telemetry

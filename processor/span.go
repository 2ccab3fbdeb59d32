package processor

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Spans adapts the generic Engine to the sdktrace.SpanProcessor interface so
// it can be installed in a TracerProvider. Only finished spans enter the
// buffer.
type Spans struct {
	engine *Engine[sdktrace.ReadOnlySpan]
}

var _ sdktrace.SpanProcessor = (*Spans)(nil)

// NewSpans creates a running span batch processor exporting through exp.
func NewSpans(exp sdktrace.SpanExporter, opts ...Option) *Spans {
	return &Spans{
		engine: NewEngine[sdktrace.ReadOnlySpan](spanExporter{exp}, opts...),
	}
}

// OnStart is a no-op; spans are buffered when they end.
func (p *Spans) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd enqueues the finished span.
func (p *Spans) OnEnd(span sdktrace.ReadOnlySpan) {
	p.engine.Enqueue(span)
}

// ForceFlush synchronously drains the buffer through the exporter.
func (p *Spans) ForceFlush(ctx context.Context) error {
	return p.engine.ForceFlush(ctx)
}

// Shutdown drains remaining spans and shuts the exporter down. Idempotent.
func (p *Spans) Shutdown(ctx context.Context) error {
	return p.engine.Shutdown(ctx)
}

// ExportFailures reports how many batches were discarded after a failed
// export.
func (p *Spans) ExportFailures() uint64 {
	return p.engine.ExportFailures()
}

// Dropped reports how many spans arrived after shutdown began.
func (p *Spans) Dropped() uint64 {
	return p.engine.Dropped()
}

// spanExporter narrows sdktrace.SpanExporter to the engine's Exporter shape.
type spanExporter struct {
	exp sdktrace.SpanExporter
}

func (x spanExporter) Export(ctx context.Context, batch []sdktrace.ReadOnlySpan) error {
	return x.exp.ExportSpans(ctx, batch)
}

func (x spanExporter) Shutdown(ctx context.Context) error {
	return x.exp.Shutdown(ctx)
}
